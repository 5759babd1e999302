package config

import (
	"slices"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "hotel")
	t.Setenv("DB_NAME", "hotel_booking")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestParseDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPort != "3306" || cfg.BcryptCost != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTTL() != 15*time.Minute || cfg.RefreshTTL() != 7*24*time.Hour {
		t.Fatalf("ttl = %v / %v", cfg.AccessTTL(), cfg.RefreshTTL())
	}
	if !cfg.AutoMigrate {
		t.Fatal("AutoMigrate should default to true")
	}
}

func TestParseRequiresDatabase(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "x")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for missing DB_USER/DB_NAME")
	}
}

func TestParseRequiresKeySource(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWKS_URL", "")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error without JWT_SECRET and JWKS_URL")
	}

	t.Setenv("JWKS_URL", "https://idp.example.com/.well-known/jwks.json")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse with JWKS_URL: %v", err)
	}
	if cfg.JWKSRefresh != time.Hour {
		t.Fatalf("JWKSRefresh = %v, want 1h", cfg.JWKSRefresh)
	}
}

func TestRateLimitOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg, err := LoadRateLimitConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Capacity != 5 || cfg.RefillTokens != 1 || cfg.RefillInterval != 2*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("TTL = %v, want raised to 10s", cfg.TTL)
	}
}

func TestCacheMethodsNormalized(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	cfg, err := LoadCacheConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cfg.Methods, []string{"GET", "HEAD"}) {
		t.Fatalf("Methods = %v", cfg.Methods)
	}
	if !cfg.Caches("get") || cfg.Caches("POST") {
		t.Fatal("Caches reported wrong methods")
	}
}

func TestRedisAddress(t *testing.T) {
	if got := (RedisConfig{Host: "cache", Port: "6380", Addr: "ignored:1"}).Address(); got != "cache:6380" {
		t.Fatalf("Address = %q", got)
	}
	if got := (RedisConfig{Addr: "localhost:6379"}).Address(); got != "localhost:6379" {
		t.Fatalf("Address = %q", got)
	}
}
