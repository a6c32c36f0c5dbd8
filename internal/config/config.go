// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres driver")

// Config holds every server setting.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`

	PrimaryUserName string `env:"PRIMARY_USER_NAME" env-default:"You" validate:"required,max=100"`

	Storage
	Redis
	AMQP
	Auth
	RateLimit
}

// Storage selects the ledger backend.
type Storage struct {
	Driver      string `env:"STORAGE_DRIVER" env-default:"sqlite" validate:"oneof=sqlite postgres memory"`
	DBPath      string `env:"DB_PATH" env-default:"./data/ledger.db"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// Redis configures the optional user cache. Empty RedisAddr disables it.
type Redis struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0" validate:"gte=0"`
	UserCacheTTL  time.Duration `env:"USER_CACHE_TTL" env-default:"5m" validate:"gt=0"`
}

// AMQP configures event publishing. Empty AMQPURL disables it.
type AMQP struct {
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" env-default:"splitledger.events" validate:"required"`
}

// Auth configures JWT verification. Tokens are issued by the identity
// service; the server only checks them. Empty JWTSecret disables it.
type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// RateLimit bounds request throughput per server.
type RateLimit struct {
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" env-default:"20" validate:"gt=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" env-default:"40" validate:"gt=0"`
}

// Load reads an optional .env file, then the process environment, and
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Driver == DriverPostgres && c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// AuthEnabled reports whether requests must carry a valid JWT.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
