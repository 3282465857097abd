package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	HTTP        struct {
		Port            string
		ShutdownTimeout time.Duration
	}
	Database struct {
		URL          string
		MaxOpenConns int
		SeedPath     string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}
	RabbitMQ struct {
		URL      string
		Exchange string
	}
	Assign struct {
		DefaultMinRestHours int
	}
}

// LoadDotEnv reads a .env file when present. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Get returns the environment value for key or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load builds the Config from the environment, applies defaults, and validates it.
func Load() (*Config, error) {
	var cfg Config
	var problems []string

	intVar := func(key string, dst *int) {
		raw := Get(key, "")
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be an integer", key))
			return
		}
		*dst = v
	}

	cfg.ServiceName = Get("SERVICE_NAME", "")
	cfg.HTTP.Port = Get("PORT", "")
	cfg.Database.URL = Get("DATABASE_URL", "")
	cfg.Database.SeedPath = Get("SEED_PATH", "")
	intVar("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	cfg.Redis.Addr = Get("REDIS_ADDR", "")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	intVar("REDIS_DB", &cfg.Redis.DB)

	var ttlSeconds, shutdownSeconds int
	intVar("CACHE_TTL_SECONDS", &ttlSeconds)
	intVar("SHUTDOWN_TIMEOUT_SECONDS", &shutdownSeconds)
	cfg.Redis.TTL = time.Duration(ttlSeconds) * time.Second
	cfg.HTTP.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	cfg.RabbitMQ.URL = Get("AMQP_URL", "")
	cfg.RabbitMQ.Exchange = Get("AMQP_EXCHANGE", "")
	intVar("DEFAULT_MIN_REST_HOURS", &cfg.Assign.DefaultMinRestHours)

	applyDefaults(&cfg)

	if err := cfg.validate(problems); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tanker-dispatch"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.SeedPath == "" {
		cfg.Database.SeedPath = "data/seeds/fleet.json"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}
	if cfg.RabbitMQ.Exchange == "" {
		cfg.RabbitMQ.Exchange = "dispatch.events"
	}
	if cfg.Assign.DefaultMinRestHours == 0 {
		cfg.Assign.DefaultMinRestHours = 12
	}
}

// validate checks required fields and basic ranges. Redis and RabbitMQ are
// optional: an empty address disables them.
func (c *Config) validate(problems []string) error {
	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if p, err := strconv.Atoi(c.HTTP.Port); err != nil || p <= 0 || p > 65535 {
		problems = append(problems, "PORT must be in 1..65535")
	}
	if c.Database.MaxOpenConns < 1 {
		problems = append(problems, "DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Redis.DB < 0 {
		problems = append(problems, "REDIS_DB must not be negative")
	}
	if c.Assign.DefaultMinRestHours < 8 || c.Assign.DefaultMinRestHours > 24 {
		problems = append(problems, "DEFAULT_MIN_REST_HOURS must be in 8..24")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
