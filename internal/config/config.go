// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env       string // APP_ENV (dev, test, prod)
	Port      string // APP_PORT
	DB        DatabaseConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Events    EventsConfig
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	User string // DB_USER
	Pass string // DB_PASS (empty allowed)
	Host string // DB_HOST
	Port string // DB_PORT
	Name string // DB_NAME
}

// DSN returns the go-sql-driver/mysql data source name.  parseTime makes
// DATETIME columns scan into time.Time and loc=UTC keeps them consistent.
func (d DatabaseConfig) DSN() string {
	auth := d.User
	if d.Pass != "" {
		auth = fmt.Sprintf("%s:%s", d.User, d.Pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, d.Host, d.Port, d.Name)
}

// AuthConfig holds token and password hashing parameters.
type AuthConfig struct {
	JWTSecret    string // JWT_SECRET
	AccessTTLMin int    // ACCESS_TOKEN_TTL_MIN
	BcryptCost   int    // BCRYPT_COST
}

// LoggingConfig selects the log level and output format (json or console).
type LoggingConfig struct {
	Level  string // LOG_LEVEL
	Format string // LOG_FORMAT
}

// EventsConfig controls the RabbitMQ publisher and the audit consumer.
type EventsConfig struct {
	Enabled bool   // EVENTS_ENABLED
	URL     string // RABBITMQ_URL, falling back to AMQP_URL
	LogPath string // EVENTS_LOG_PATH
}

// LoadDotEnv loads path into the environment when the file exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration.  Every missing or malformed required
// variable is reported in the returned error.
func Load() (Config, error) {
	r := &reader{}
	cfg := Config{
		Env:  r.must("APP_ENV"),
		Port: r.must("APP_PORT"),
		DB: DatabaseConfig{
			User: r.must("DB_USER"),
			Pass: os.Getenv("DB_PASS"),
			Host: r.must("DB_HOST"),
			Port: r.must("DB_PORT"),
			Name: r.must("DB_NAME"),
		},
		Auth: AuthConfig{
			JWTSecret:    r.must("JWT_SECRET"),
			AccessTTLMin: r.mustInt("ACCESS_TOKEN_TTL_MIN"),
			BcryptCost:   envInt("BCRYPT_COST", 12),
		},
		Logging: LoggingConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "json"),
		},
		Redis:     LoadRedisConfig(),
		RateLimit: LoadRateLimitConfig(),
		Cache:     LoadCacheConfig(),
		Events: EventsConfig{
			Enabled: envBool("EVENTS_ENABLED", true),
			URL:     envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
			LogPath: envStr("EVENTS_LOG_PATH", "logs/events.log"),
		},
	}
	if cfg.Auth.AccessTTLMin <= 0 && r.err() == nil {
		r.errs = append(r.errs, "ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader collects problems with required variables.
type reader struct{ errs []string }

func (r *reader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.errs = append(r.errs, "missing required env var: "+key)
	}
	return v
}

func (r *reader) mustInt(key string) int {
	s := r.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid int for %s: %q", key, s))
	}
	return n
}

func (r *reader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.errs, "; "))
}
