package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	PostgresConnStr string        `env:"POSTGRES_CONN_STR"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RedisURL        string        `env:"REDIS_URL"`
	RedisChannel    string        `env:"REDIS_CHANNEL" envDefault:"socialnetwork:pushes"`
}

// Load reads configuration from the environment, layering a .env file under
// it when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, assuming environment variables are set")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
