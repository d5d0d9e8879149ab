package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"SECRET_KEY": "s3cret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.Auth.Algorithm != "HS256" || cfg.Auth.TokenExpireMinutes != 30 {
		t.Fatalf("unexpected auth defaults %+v", cfg.Auth)
	}
	if cfg.TokenLifetime() != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %v", cfg.TokenLifetime())
	}
	if cfg.Auth.BcryptCost != 12 || cfg.Auth.HashWorkers != 4 {
		t.Fatalf("unexpected hashing defaults %+v", cfg.Auth)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.StoreDriver)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected redis defaults %+v", cfg.Redis)
	}
	if cfg.Mongo.Database != "support_system" {
		t.Fatalf("unexpected mongo db %q", cfg.Mongo.Database)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"SECRET_KEY":                  "s3cret",
		"ALGORITHM":                   "hs512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"STORE_DRIVER":                "Mongo",
		"CORS_ORIGINS":                "https://a.example,https://b.example",
		"IDEMPOTENCY_TTL":             "1h",
		"ENV":                         "production",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.Algorithm != "HS512" {
		t.Fatalf("expected HS512, got %q", cfg.Auth.Algorithm)
	}
	if cfg.TokenLifetime() != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", cfg.TokenLifetime())
	}
	if cfg.StoreDriver != DriverMongo {
		t.Fatalf("expected mongo, got %q", cfg.StoreDriver)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Redis.IdempotencyTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", cfg.Redis.IdempotencyTTL)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not be development")
	}
}

func TestLoad_ValidationCollectsAllProblems(t *testing.T) {
	_, err := load(t, map[string]string{
		"ALGORITHM":                   "RS256",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "0",
		"STORE_DRIVER":                "sqlite",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"SECRET_KEY", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "STORE_DRIVER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_BadNumber(t *testing.T) {
	if _, err := load(t, map[string]string{"SECRET_KEY": "x", "BCRYPT_COST": "twelve"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
