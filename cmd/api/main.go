// cmd/api/main.go
package main

import (
	"context"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/auth"
	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/cache"
	"github.com/minibnb/minibnb/internal/config"
	"github.com/minibnb/minibnb/internal/http/routes"
	"github.com/minibnb/minibnb/internal/listing"
	"github.com/minibnb/minibnb/internal/logging"
	"github.com/minibnb/minibnb/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || cfg.IsDevelopment(),
	})
	logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting api")

	// DB
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	db := store.New(pool)

	// Response cache. The redis client is shared across all requests;
	// multiplexing is its own concern.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis client")
		}
	}()
	responseCache := cache.NewStore(cache.NewRedisKeyStore(rdb))

	// Background jobs
	jobsClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			log.Warn().Err(err).Msg("close asynq client")
		}
	}()

	s := routes.New(routes.ServerOptions{
		Listings: listing.NewService(db),
		Bookings: booking.NewService(db),
		Profiles: db,
		Cache:    responseCache,
		Verifier: auth.Bearer{Secret: []byte(cfg.AuthSecret)},
		Jobs:     jobsClient,
		TTL:      cfg.Cache,
	})

	h := hlog.NewHandler(logger)(s.Router)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}
