package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr == "" || cfg.DSN == "" || cfg.RedisURL == "" {
		t.Fatalf("defaults must be populated: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("default session TTL: %v", cfg.SessionTTL)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg := FromEnv()
	if cfg.Addr != ":9999" {
		t.Fatalf("addr override: %q", cfg.Addr)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("ttl override: %v", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors override: %v", cfg.CORSOrigins)
	}
}
