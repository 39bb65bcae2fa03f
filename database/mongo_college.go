package database

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

type mongoColleges struct {
	coll *mongo.Collection
}

// mongoFilter translates catalog predicates into a query document
func mongoFilter(filter catalog.Filter) (bson.M, error) {
	and := []bson.M{}
	for _, p := range filter {
		switch p := p.(type) {
		case catalog.StatusIs:
			and = append(and, bson.M{"status": p.Status})
		case catalog.Search:
			re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Term), Options: "i"}
			and = append(and, bson.M{"$or": []bson.M{
				{"name": re},
				{"city": re},
				{"state": re},
			}})
		case catalog.CityIn:
			in := make([]primitive.Regex, len(p.Cities))
			for i, city := range p.Cities {
				in[i] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i"}
			}
			and = append(and, bson.M{"city": bson.M{"$in": in}})
		case catalog.TypeIn:
			and = append(and, bson.M{"type": bson.M{"$in": p.Types}})
		case catalog.FeeAtLeast:
			and = append(and, bson.M{"courses.fees": bson.M{"$gte": p.Fee}})
		case catalog.FeeAtMost:
			and = append(and, bson.M{"courses.fees": bson.M{"$lte": p.Fee}})
		case catalog.SlugIs:
			and = append(and, bson.M{"slug": p.Slug})
		default:
			return nil, fmt.Errorf("mongo: unsupported predicate %T", p)
		}
	}
	if len(and) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": and}, nil
}

var canonicalSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// mongoSort renders a sort key. Fee keys sort on fields computed by
// feeStages and must run as an aggregation.
func mongoSort(key catalog.SortKey) bson.D {
	var head bson.D
	switch key {
	case catalog.SortRating:
		head = bson.D{{Key: "rating", Value: -1}}
	case catalog.SortFeesLow:
		head = bson.D{{Key: "_noFee", Value: 1}, {Key: "_minFee", Value: 1}}
	case catalog.SortFeesHigh:
		head = bson.D{{Key: "_noFee", Value: 1}, {Key: "_minFee", Value: -1}}
	case catalog.SortPlacement:
		head = bson.D{{Key: "placement.percentage", Value: -1}}
	case catalog.SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	default:
		head = bson.D{{Key: "ranking", Value: 1}}
	}
	return append(head, canonicalSort...)
}

func needsFeeStages(key catalog.SortKey) bool {
	return key == catalog.SortFeesLow || key == catalog.SortFeesHigh
}

// mongoPipeline builds the aggregation used for fee sorts
func mongoPipeline(match bson.M, key catalog.SortKey, window catalog.Window) mongo.Pipeline {
	courses := bson.M{"$ifNull": bson.A{"$courses", bson.A{}}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"_minFee": bson.M{"$min": "$courses.fees"},
			"_noFee":  bson.M{"$eq": bson.A{bson.M{"$size": courses}, 0}},
		}}},
		{{Key: "$sort", Value: mongoSort(key)}},
	}
	if window.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(window.Offset)}})
	}
	if window.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(window.Limit)}})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: bson.M{"_minFee": 0, "_noFee": 0}}})
}

func (m *mongoColleges) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	match, err := mongoFilter(filter)
	if err != nil {
		return 0, err
	}
	return m.coll.CountDocuments(ctx, match)
}

func (m *mongoColleges) Find(ctx context.Context, filter catalog.Filter, key catalog.SortKey, window catalog.Window) ([]model.College, error) {
	match, err := mongoFilter(filter)
	if err != nil {
		return nil, err
	}

	var cursor *mongo.Cursor
	if needsFeeStages(key) {
		cursor, err = m.coll.Aggregate(ctx, mongoPipeline(match, key, window))
	} else {
		opts := options.Find().SetSort(mongoSort(key)).SetSkip(int64(window.Offset))
		if window.Limit > 0 {
			opts.SetLimit(int64(window.Limit))
		}
		cursor, err = m.coll.Find(ctx, match, opts)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	colleges := []model.College{}
	if err := cursor.All(ctx, &colleges); err != nil {
		return nil, err
	}
	return colleges, nil
}

func (m *mongoColleges) GetByID(ctx context.Context, id string) (*model.College, error) {
	var college model.College
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&college); err != nil {
		return nil, translateMongoError(err, ErrDuplicateSlug)
	}
	return &college, nil
}

func (m *mongoColleges) Create(ctx context.Context, college *model.College) error {
	college.EnsureID()
	_, err := m.coll.InsertOne(ctx, college)
	return translateMongoError(err, ErrDuplicateSlug)
}

func (m *mongoColleges) Update(ctx context.Context, college *model.College) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": college.ID}, college)
	if err != nil {
		return translateMongoError(err, ErrDuplicateSlug)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoColleges) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoColleges) Stats(ctx context.Context) (model.DashboardStats, error) {
	cursor, err := m.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalColleges": bson.M{"$sum": 1},
			"published": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", model.CollegeStatusPublished}}, 1, 0},
			}},
			"totalCourses": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$courses", bson.A{}}}}},
		}}},
	})
	if err != nil {
		return model.DashboardStats{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalColleges int64 `bson:"totalColleges"`
		Published     int64 `bson:"published"`
		TotalCourses  int64 `bson:"totalCourses"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return model.DashboardStats{}, err
	}

	var stats model.DashboardStats
	if len(rows) > 0 {
		stats.TotalColleges = rows[0].TotalColleges
		stats.Published = rows[0].Published
		stats.Drafts = rows[0].TotalColleges - rows[0].Published
		stats.TotalCourses = rows[0].TotalCourses
	}
	return stats, nil
}
