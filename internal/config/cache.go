package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  KeyStrategy determines which parts of the request contribute
// to the cache key.  Responses larger than MaxBodyBytes are not cached.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Methods      []string      `env:"CACHE_METHODS" envDefault:"GET" envSeparator:","`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`
}

// LoadCacheConfig parses the cache settings from the environment.  Methods
// are upper-cased.
func LoadCacheConfig() (CacheConfig, error) {
	var cfg CacheConfig
	if err := env.Parse(&cfg); err != nil {
		return CacheConfig{}, fmt.Errorf("parse cache env: %w", err)
	}
	methods := cfg.Methods[:0]
	for _, m := range cfg.Methods {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			methods = append(methods, m)
		}
	}
	cfg.Methods = methods
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return cfg, nil
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool {
	return slices.Contains(c.Methods, strings.ToUpper(method))
}
