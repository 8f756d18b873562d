package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("fails without an API base URL", func(t *testing.T) {
		if _, err := Load(); !errors.Is(err, ErrMissingEnvironmentVariables) {
			t.Fatalf("expected ErrMissingEnvironmentVariables, got %v", err)
		}
	})

	t.Run("applies defaults around the environment", func(t *testing.T) {
		t.Setenv("LINGUAHUB_API_URL", "http://localhost:8080/api")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.API.BaseURL != "http://localhost:8080/api" {
			t.Errorf("unexpected base URL %q", cfg.API.BaseURL)
		}
		if cfg.Env != "local" {
			t.Errorf("expected local env default, got %q", cfg.Env)
		}
		if cfg.API.Timeout != 15*time.Second {
			t.Errorf("expected 15s timeout default, got %v", cfg.API.Timeout)
		}
		if cfg.Sync.Interval != 5*time.Minute {
			t.Errorf("expected 5m sync interval default, got %v", cfg.Sync.Interval)
		}
		if cfg.DataDir != "data" {
			t.Errorf("expected data dir default, got %q", cfg.DataDir)
		}
	})
}
