package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("RUCIO_CATALOG_URL", "https://catalog.example.org")
	t.Setenv("RUCIO_ACCOUNT", "pilot")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers: %d", cfg.Workers)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("timeout: %v", cfg.RequestTimeout)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay != time.Second {
		t.Errorf("retry policy: %+v", cfg.Retry)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RUCIO_TOKEN", "secret")
	t.Setenv("RUCIO_DEFAULT_RSE", "TEST_RSE")
	t.Setenv("RUCIO_DEFAULT_SCOPE", "user.alice")
	t.Setenv("RUCIO_WORKERS", "16")
	t.Setenv("RUCIO_REQUEST_TIMEOUT", "5s")
	t.Setenv("RUCIO_MAX_ATTEMPTS", "5")
	t.Setenv("RUCIO_RETRY_BASE_DELAY", "500ms")
	t.Setenv("RUCIO_RETRY_MAX_DELAY", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "secret" || cfg.DefaultRSE != "TEST_RSE" || cfg.DefaultScope != "user.alice" {
		t.Errorf("config: %+v", cfg)
	}
	if cfg.Workers != 16 || cfg.RequestTimeout != 5*time.Second {
		t.Errorf("config: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 500*time.Millisecond ||
		cfg.Retry.MaxDelay != 10*time.Second {
		t.Errorf("retry policy: %+v", cfg.Retry)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("RUCIO_CATALOG_URL", "")
	t.Setenv("RUCIO_ACCOUNT", "pilot")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RUCIO_CATALOG_URL") {
		t.Errorf("expected missing url error, got %v", err)
	}

	t.Setenv("RUCIO_CATALOG_URL", "https://catalog.example.org")
	t.Setenv("RUCIO_ACCOUNT", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RUCIO_ACCOUNT") {
		t.Errorf("expected missing account error, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("RUCIO_WORKERS", "many")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-integer workers")
	}

	t.Setenv("RUCIO_WORKERS", "8")
	t.Setenv("RUCIO_REQUEST_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid duration")
	}
}
