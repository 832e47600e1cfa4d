package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBPath != "orders.db" {
		t.Errorf("DBPath = %q, want orders.db", cfg.DBPath)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty (cache disabled)", cfg.RedisAddr)
	}
	if cfg.CustomerCacheTTL != 5*time.Minute {
		t.Errorf("CustomerCacheTTL = %v, want 5m", cfg.CustomerCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CUSTOMER_CACHE_TTL_SEC", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.CustomerCacheTTL != time.Minute {
		t.Errorf("CustomerCacheTTL = %v, want 1m", cfg.CustomerCacheTTL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CUSTOMER_CACHE_TTL_SEC", "not-a-number")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for invalid TTL")
	}

	t.Setenv("CUSTOMER_CACHE_TTL_SEC", "0")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for zero TTL")
	}
}
