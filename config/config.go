package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// LoadENV loads the environment variables from .env when GO_ENV is unset or
// development. A missing .env file is not an error.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	PORT         int
	STORE_DRIVER string
	LOG_LEVEL    string
	// Postgres
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// MongoDB
	MONGO_URI string
	MONGO_DB  string
	// JWT Configuration
	JWT_SECRET         string
	JWT_ISSUER         string
	JWT_EXPIRY         time.Duration
	JWT_REFRESH_EXPIRY time.Duration
	// Redis Configuration
	REDIS_URL string
	CACHE_TTL time.Duration
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	RATE_LIMIT_WINDOW   time.Duration
	REQUEST_TIMEOUT     time.Duration
	// Features
	ALLOW_ADMIN_SIGNUP bool
	CRON_ENABLED       bool
	// Bootstrap admin
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	// S3 compatible media storage
	S3_BUCKET     string
	S3_REGION     string
	S3_ENDPOINT   string
	S3_ACCESS_KEY string
	S3_SECRET_KEY string
	S3_PUBLIC_URL string
}

func Get() (*EnvironmentVariable, error) {
	env := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		PORT:         intOr("PORT", 8080),
		STORE_DRIVER: strings.ToLower(stringOr("STORE_DRIVER", DriverPostgres)),
		LOG_LEVEL:    stringOr("LOG_LEVEL", "info"),

		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      stringOr("DB_HOST", "localhost"),
		DB_PORT:      stringOr("DB_PORT", "5432"),
		DB_SSL_MODE:  stringOr("DB_SSL_MODE", "disable"),

		MONGO_URI: stringOr("MONGO_URI", "mongodb://localhost:27017"),
		MONGO_DB:  stringOr("MONGO_DB", "degreefyd"),

		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		JWT_ISSUER:         stringOr("JWT_ISSUER", "degreefyd-api"),
		JWT_EXPIRY:         durationOr("JWT_EXPIRY", 15*time.Minute),
		JWT_REFRESH_EXPIRY: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),

		REDIS_URL: os.Getenv("REDIS_URL"),
		CACHE_TTL: durationOr("CACHE_TTL", 5*time.Minute),

		ALLOWED_ORIGINS:     stringOr("ALLOWED_ORIGINS", "http://localhost:3000"),
		RATE_LIMIT_REQUESTS: intOr("RATE_LIMIT_REQUESTS", 100),
		RATE_LIMIT_WINDOW:   durationOr("RATE_LIMIT_WINDOW", time.Minute),
		REQUEST_TIMEOUT:     durationOr("REQUEST_TIMEOUT", 10*time.Second),

		ALLOW_ADMIN_SIGNUP: boolOr("ALLOW_ADMIN_SIGNUP", false),
		CRON_ENABLED:       boolOr("CRON_ENABLED", true),

		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),

		S3_BUCKET:     os.Getenv("S3_BUCKET"),
		S3_REGION:     stringOr("S3_REGION", "us-east-1"),
		S3_ENDPOINT:   os.Getenv("S3_ENDPOINT"),
		S3_ACCESS_KEY: os.Getenv("S3_ACCESS_KEY"),
		S3_SECRET_KEY: os.Getenv("S3_SECRET_KEY"),
		S3_PUBLIC_URL: os.Getenv("S3_PUBLIC_URL"),
	}

	switch env.STORE_DRIVER {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", env.STORE_DRIVER)
	}

	if env.JWT_SECRET == "" {
		if env.GO_ENV == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		env.JWT_SECRET = "development-secret-change-me"
	}

	return env, nil
}

// MediaEnabled reports whether uploads can be stored
func (e *EnvironmentVariable) MediaEnabled() bool {
	return e.S3_BUCKET != "" && e.S3_ACCESS_KEY != "" && e.S3_SECRET_KEY != ""
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func boolOr(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
