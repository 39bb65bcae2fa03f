package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/api"
	"github.com/sahilchouksey/degreefyd-api/config"
	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/fixtures"
	"github.com/sahilchouksey/degreefyd-api/router"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/services/cron"
	"github.com/sahilchouksey/degreefyd-api/services/media"
	"github.com/sahilchouksey/degreefyd-api/utils"
	"github.com/sahilchouksey/degreefyd-api/utils/auth"
	"github.com/sahilchouksey/degreefyd-api/utils/cache"
	"github.com/sahilchouksey/degreefyd-api/utils/middleware"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log.Logger = utils.SetupLogger(getEnv.GO_ENV, getEnv.LOG_LEVEL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, getEnv)
	if err != nil {
		log.Error().Err(err).Str("driver", getEnv.STORE_DRIVER).Msg("check whether the store is running")
		return err
	}

	// Redis is optional: without it caches and revocations stay in process
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, using in-process cache and disabling brute force protection")
			redisCache = nil
		}
	}

	mediaStore, err := openMedia(getEnv)
	if err != nil {
		return err
	}

	deps := BuildDependencies(getEnv, store, redisCache, mediaStore)

	if err := database.NewSeeder(store).SeedAdminUser(ctx, getEnv.ADMIN_EMAIL, getEnv.ADMIN_PASSWORD); err != nil {
		log.Warn().Err(err).Msg("failed to seed admin user")
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		pruner, _ := deps.Revoker.(cron.TokenPruner)
		cronManager = cron.NewCronManager(deps.Colleges, pruner)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn().Err(err).Msg("failed to start cron jobs")
			cronManager = nil
		}
	}

	// Defer closing the store and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			_ = redisCache.Close()
		}
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	router.SetupRoutes(server.GetEngine(), deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		if err := server.Shutdown(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	return server.Run()
}

// OpenStore connects the store selected by STORE_DRIVER and prepares its
// schema. The memory store is seeded with the sample catalog.
func OpenStore(ctx context.Context, env *config.EnvironmentVariable) (database.Storage, error) {
	var store database.Storage
	switch env.STORE_DRIVER {
	case config.DriverMongo:
		mongoStore, err := database.StartMongo(env.MONGO_URI, env.MONGO_DB)
		if err != nil {
			return nil, err
		}
		store = mongoStore
	case config.DriverMemory:
		store = database.NewMemoryStore()
	default:
		gormStore, err := database.StartGORM(env)
		if err != nil {
			return nil, err
		}
		store = gormStore
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize %s store: %w", env.STORE_DRIVER, err)
	}

	if env.STORE_DRIVER == config.DriverMemory {
		colleges, err := fixtures.Colleges()
		if err != nil {
			return nil, err
		}
		if _, err := database.NewSeeder(store).SeedColleges(ctx, colleges); err != nil {
			return nil, err
		}
	}

	log.Info().Str("driver", env.STORE_DRIVER).Msg("store ready")
	return store, nil
}

func openMedia(env *config.EnvironmentVariable) (media.Store, error) {
	if !env.MediaEnabled() {
		log.Info().Msg("media storage not configured, uploads disabled")
		return media.Disabled{}, nil
	}
	return media.NewS3Store(media.Config{
		AccessKey: env.S3_ACCESS_KEY,
		SecretKey: env.S3_SECRET_KEY,
		Bucket:    env.S3_BUCKET,
		Region:    env.S3_REGION,
		Endpoint:  env.S3_ENDPOINT,
		PublicURL: env.S3_PUBLIC_URL,
	})
}

// BuildDependencies wires services around the store. A nil redisCache
// selects the in-process cache and revoker.
func BuildDependencies(env *config.EnvironmentVariable, store database.Storage, redisCache *cache.RedisCache, mediaStore media.Store) router.Dependencies {
	var (
		listingCache services.ListingCache
		revoker      auth.Revoker
	)
	if redisCache != nil {
		listingCache = services.NewRedisListingCache(redisCache, env.CACHE_TTL)
		revoker = auth.NewRedisRevoker(redisCache)
	} else {
		listingCache = services.NewMemoryListingCache(env.CACHE_TTL)
		revoker = auth.NewMemoryRevoker()
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        env.JWT_EXPIRY,
		RefreshExpiry: env.JWT_REFRESH_EXPIRY,
		Issuer:        env.JWT_ISSUER,
	})

	return router.Dependencies{
		Store:      store,
		Colleges:   services.NewCollegeService(store.Colleges(), listingCache, mediaStore),
		Auth:       services.NewAuthService(store.Users(), jwtManager, revoker, env.JWT_EXPIRY, env.ALLOW_ADMIN_SIGNUP),
		JWTManager: jwtManager,
		Revoker:    revoker,
		BruteForce: middleware.NewBruteForceProtection(redisCache),
		Security: middleware.SecurityConfig{
			AllowedOrigins:    env.ALLOWED_ORIGINS,
			RateLimitRequests: env.RATE_LIMIT_REQUESTS,
			RateLimitWindow:   env.RATE_LIMIT_WINDOW,
			AccessLog:         env.GO_ENV != "test",
		},
		Timeout: env.REQUEST_TIMEOUT,
	}
}
