package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/app"
	"github.com/sahilchouksey/degreefyd-api/config"
	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/fixtures"
	"github.com/sahilchouksey/degreefyd-api/utils"
)

// seed loads the sample catalog and the bootstrap admin into the store
// selected by STORE_DRIVER. Colleges whose slug exists are left untouched.
func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}
	env, err := config.Get()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Logger = utils.SetupLogger(env.GO_ENV, env.LOG_LEVEL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer store.Close()

	seeder := database.NewSeeder(store)
	if err := seeder.SeedAdminUser(ctx, env.ADMIN_EMAIL, env.ADMIN_PASSWORD); err != nil {
		log.Fatal().Err(err).Msg("seeding admin failed")
	}

	if env.STORE_DRIVER == config.DriverMemory {
		log.Info().Msg("memory store is seeded on startup, nothing to persist")
		return
	}
	n, err := seeder.SeedColleges(ctx, fixtures.MustColleges())
	if err != nil {
		log.Fatal().Err(err).Msg("seeding colleges failed")
	}
	log.Info().Int("inserted", n).Str("driver", env.STORE_DRIVER).Msg("seeding completed")
}
