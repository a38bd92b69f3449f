package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CATALOG_TIMEOUT", "LOG_LEVEL"} {
		if _, ok := os.LookupEnv(key); ok {
			t.Skipf("%s is set in the environment", key)
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.CatalogTimeout != 15*time.Second {
		t.Errorf("CatalogTimeout = %v", cfg.CatalogTimeout)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", " https://plan.example.com ,http://localhost:3000,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.CatalogTimeout != 2*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}

	origins := cfg.Origins()
	if len(origins) != 2 || origins[0] != "https://plan.example.com" {
		t.Errorf("Origins = %q", origins)
	}
	hosts := cfg.OriginHosts()
	if hosts[0] != "plan.example.com" || hosts[1] != "localhost:3000" {
		t.Errorf("OriginHosts = %q", hosts)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestSlogLevelFallsBack(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
}
