package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBDriver          string        `envconfig:"DB_DRIVER" default:"mysql"`
	DBHost            string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string        `envconfig:"DB_PORT" default:"3306"`
	DBUser            string        `envconfig:"DB_USER" default:"society"`
	DBPassword        string        `envconfig:"DB_PASSWORD" default:"societypassword"`
	DBName            string        `envconfig:"DB_NAME" default:"society_committee"`
	DBSQLitePath      string        `envconfig:"DB_SQLITE_PATH" default:"committee.sqlite"`
	DBTracing         bool          `envconfig:"DB_TRACING" default:"false"`
	RedisHost         string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort         string        `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret     string        `envconfig:"SESSION_SECRET" default:"default-secret-key-change-me"`
	GinMode           string        `envconfig:"GIN_MODE" default:"debug"`
	HTTPPort          string        `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	CommitteeCacheTTL time.Duration `envconfig:"COMMITTEE_NUMBER_TTL" default:"8760h"`
	AMQPURL           string        `envconfig:"AMQP_URL"`
	AMQPQueue         string        `envconfig:"AMQP_QUEUE" default:"committee.events"`
	ConfirmationToken string        `envconfig:"CONFIRMATION_TOKEN" default:"CONFIRM"`
	CacheBackend      string        `envconfig:"CACHE_BACKEND" default:"redis"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

// RedisAddr returns the host:port pair for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// ListenAddr returns the HTTP bind address.
func (c *Config) ListenAddr() string {
	return ":" + c.HTTPPort
}

// UseRedisCache reports whether the committee number cache lives in Redis.
func (c *Config) UseRedisCache() bool {
	return c.CacheBackend == "redis"
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}
