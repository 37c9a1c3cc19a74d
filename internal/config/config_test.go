package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CART_RATE_BURST", "")
	t.Setenv("CORS_ORIGINS", "")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.BannerRotateInterval != 5*time.Second {
		t.Fatalf("unexpected rotate interval %v", cfg.BannerRotateInterval)
	}
	if cfg.CartRateBurst != 10 {
		t.Fatalf("unexpected burst %d", cfg.CartRateBurst)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("GUEST_CART_TTL_HOURS", "2")
	t.Setenv("CART_RATE_PER_SECOND", "0.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_ENV", "Development")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.GuestCartTTL != 2*time.Hour || cfg.CartRatePerSecond != 0.5 {
		t.Fatalf("unexpected cart settings %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if !cfg.Development() {
		t.Fatalf("expected development mode")
	}
}

func TestFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	t.Setenv("CART_RATE_BURST", "many")
	cfg := FromEnv()
	if cfg.ShutdownTimeout != 10*time.Second || cfg.CartRateBurst != 10 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
