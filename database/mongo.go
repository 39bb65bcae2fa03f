package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sahilchouksey/degreefyd-api/model"
)

const (
	collegesCollection = "colleges"
	usersCollection    = "users"
)

// MongoStore keeps colleges as documents with their nested arrays inline
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	colleges *mongoColleges
	users    *mongoUsers
}

// StartMongo connects and pings the primary
func StartMongo(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info().Str("database", database).Msg("connected to MongoDB")
	return NewMongoStore(client, database), nil
}

// NewMongoStore wraps a connected client
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		db:       db,
		colleges: &mongoColleges{coll: db.Collection(collegesCollection)},
		users:    &mongoUsers{coll: db.Collection(usersCollection)},
	}
}

// Init creates the unique indexes slug and email uniqueness rely on
func (s *MongoStore) Init(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collegesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "ranking", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	log.Info().Msg("closing MongoDB connection")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Database exposes the underlying database for tests
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

func (s *MongoStore) Colleges() CollegeStore { return s.colleges }
func (s *MongoStore) Users() UserStore       { return s.users }

type mongoUsers struct {
	coll *mongo.Collection
}

func (m *mongoUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (m *mongoUsers) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := m.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateMongoError(err, ErrDuplicateEmail)
	}
	return &user, nil
}

func (m *mongoUsers) Create(ctx context.Context, user *model.User) error {
	user.EnsureID()
	_, err := m.coll.InsertOne(ctx, user)
	return translateMongoError(err, ErrDuplicateEmail)
}

func (m *mongoUsers) Update(ctx context.Context, user *model.User) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translateMongoError(err, ErrDuplicateEmail)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.M{"role": role})
}

func translateMongoError(err error, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return duplicate
	default:
		return err
	}
}
