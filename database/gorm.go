package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sahilchouksey/degreefyd-api/config"
	"github.com/sahilchouksey/degreefyd-api/model"
)

type GORMStore struct {
	db       *gorm.DB
	colleges *gormColleges
	users    *gormUsers
}

// PostgresDSN builds the connection string from the environment
func PostgresDSN(env *config.EnvironmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnvironmentVariable) (*GORMStore, error) {
	return OpenGORM(PostgresDSN(env), env.GO_ENV)
}

// OpenGORM connects to the given DSN
func OpenGORM(dsn string, goEnv string) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if goEnv == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Error().Err(err).Msg("unable to connect to PostgreSQL with GORM")
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Msg("connected to PostgreSQL with GORM")

	return NewGORMStore(db), nil
}

// NewGORMStore wraps an open connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:       db,
		colleges: &gormColleges{db: db},
		users:    &gormUsers{db: db},
	}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init(ctx context.Context) error {
	log.Info().Msg("running GORM AutoMigrate")

	if err := s.db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.College{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info().Msg("closing GORM PostgreSQL connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB exposes the connection for tests and maintenance jobs
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

func (s *GORMStore) Colleges() CollegeStore { return s.colleges }
func (s *GORMStore) Users() UserStore       { return s.users }

// isUUID reports whether id can match a uuid primary key. Postgres rejects
// malformed values with an error rather than returning no rows.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type gormUsers struct {
	db *gorm.DB
}

func (g *gormUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var user model.User
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGORMError(err, ErrDuplicateEmail)
	}
	return &user, nil
}

func (g *gormUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := g.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translateGORMError(err, ErrDuplicateEmail)
	}
	return &user, nil
}

func (g *gormUsers) Create(ctx context.Context, user *model.User) error {
	return translateGORMError(g.db.WithContext(ctx).Create(user).Error, ErrDuplicateEmail)
}

func (g *gormUsers) Update(ctx context.Context, user *model.User) error {
	if !isUUID(user.ID) {
		return ErrNotFound
	}
	result := g.db.WithContext(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user)
	if result.Error != nil {
		return translateGORMError(result.Error, ErrDuplicateEmail)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *gormUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// translateGORMError maps driver errors onto the package sentinels
func translateGORMError(err error, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	default:
		return err
	}
}
