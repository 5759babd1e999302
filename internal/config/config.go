package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable named in its tag.
type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"dev"`          // application environment (dev/test/prod)
	Port           string        `env:"APP_PORT" envDefault:"8080"`        // HTTP port to listen on
	DBUser         string        `env:"DB_USER,notEmpty"`                  // database username
	DBPass         string        `env:"DB_PASS"`                           // database password (empty allowed)
	DBHost         string        `env:"DB_HOST" envDefault:"127.0.0.1"`    // database host address
	DBPort         string        `env:"DB_PORT" envDefault:"3306"`         // database port number
	DBName         string        `env:"DB_NAME,notEmpty"`                  // database name
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"` // apply schema.sql at startup
	JWTSecret      string        `env:"JWT_SECRET"`                        // HS256 secret for locally issued tokens
	JWKSURL        string        `env:"JWKS_URL"`                          // identity provider key set (RS256)
	JWKSRefresh    time.Duration `env:"JWKS_REFRESH" envDefault:"1h"`
	AccessTTLMin   int           `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
	RefreshTTLDays int           `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	RabbitMQURL    string        `env:"RABBITMQ_URL"`                      // booking events are disabled when empty
	BookingLogDir  string        `env:"BOOKING_LOG_DIR" envDefault:"logs"`
}

// Load reads .env (when present) and the environment into a Config.
// Invalid or missing required values cause the program to exit with a
// fatal log message.
func Load() Config {
	_ = godotenv.Load()
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse builds a Config from the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		return Config{}, errors.New("one of JWT_SECRET or JWKS_URL is required")
	}
	if cfg.AccessTTLMin < 1 || cfg.RefreshTTLDays < 1 {
		return Config{}, errors.New("token TTLs must be positive")
	}
	return cfg, nil
}

// AccessTTL returns the access token lifetime.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL returns the refresh token lifetime.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}
