package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://dispatch@localhost/dispatch")
	t.Setenv("PORT", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("DEFAULT_MIN_REST_HOURS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Fatalf("ttl = %v, want 5m", cfg.Redis.TTL)
	}
	if cfg.Assign.DefaultMinRestHours != 12 {
		t.Fatalf("min rest = %d, want 12", cfg.Assign.DefaultMinRestHours)
	}
}

func TestLoadCollectsProblems(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "99999")
	t.Setenv("DEFAULT_MIN_REST_HOURS", "30")
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}

	for _, want := range []string{"DATABASE_URL", "PORT", "DEFAULT_MIN_REST_HOURS", "REDIS_DB"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}
