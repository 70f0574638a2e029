package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/teamsn/socialnetwork/internal/realtime"
	"github.com/teamsn/socialnetwork/internal/router"
	"github.com/teamsn/socialnetwork/pkg/config"
	"github.com/teamsn/socialnetwork/pkg/token"
	"github.com/teamsn/socialnetwork/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.ConfigureLogger(cfg.Env)

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer config.CloseDB(db)

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	// Real-time fan-out: process-local hub, optionally bridged over Redis
	// Pub/Sub so pushes reach bindings on other instances.
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	if cfg.RedisURL != "" {
		options, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(options)
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		publisher = realtime.NewRedisBridge(context.Background(), client, cfg.RedisChannel, hub)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db, hub, publisher, tokens); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
