package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/duesledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GATEWAY_SECRET_KEY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.GatewaySecretKey != "" {
		t.Fatalf("expected gateway secret default to be empty, got %q", cfg.GatewaySecretKey)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.DefaultCurrency != "usd" {
		t.Fatalf("expected default currency usd, got %s", cfg.DefaultCurrency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("GATEWAY_BASE_URL", "http://localhost:12111")
	t.Setenv("GATEWAY_SECRET_KEY", "sk_test_123")
	t.Setenv("DEFAULT_CURRENCY", "cad")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.GatewayBaseURL != "http://localhost:12111" || cfg.GatewaySecretKey != "sk_test_123" {
		t.Fatalf("expected gateway settings to be set, got url=%s key=%s", cfg.GatewayBaseURL, cfg.GatewaySecretKey)
	}

	if cfg.DefaultCurrency != "cad" {
		t.Fatalf("expected currency override, got %s", cfg.DefaultCurrency)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
