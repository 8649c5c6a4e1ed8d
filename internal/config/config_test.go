package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/careq_test")
	setEnv(t, "ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.QueueCloseSpec != "0 0 * * *" {
		t.Errorf("queue close cron = %q", cfg.QueueCloseSpec)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestLoad_RequiresJWTSecretInProduction(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/careq_test")
	setEnv(t, "ENV", "production")
	setEnv(t, "JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	setEnv(t, "JWT_SECRET", "sekret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsDev() {
		t.Error("expected production mode")
	}
}
