package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Clinic.Currency != "USD" || cfg.Clinic.LowStockThreshold != 5 || cfg.Clinic.ExpiryWindowDays != 30 {
		t.Fatalf("unexpected clinic defaults: %+v", cfg.Clinic)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.yaml")
	data := []byte(`
server:
  port: 9090
  read_timeout: 5s
clinic:
  currency: PEN
  low_stock_threshold: 8
log:
  format: json
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Clinic.Currency != "PEN" || cfg.Clinic.LowStockThreshold != 8 {
		t.Fatalf("unexpected clinic config: %+v", cfg.Clinic)
	}
	// lo no declarado mantiene el default
	if cfg.Clinic.ExpiryWindowDays != 30 {
		t.Fatalf("expected expiry window default 30, got %d", cfg.Clinic.ExpiryWindowDays)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected log format json, got %s", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.yaml")
	data := []byte(`
server:
  port: 9090
clinic:
  currency: PEN
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("CLINIC_CONFIG", path)
	t.Setenv("PORT", "7001")
	t.Setenv("CURRENCY", "eur")
	t.Setenv("DB_DSN", "postgres://localhost/clinic")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Fatalf("expected env port 7001, got %d", cfg.Server.Port)
	}
	if cfg.Clinic.Currency != "EUR" {
		t.Fatalf("expected currency EUR, got %s", cfg.Clinic.Currency)
	}
	if cfg.DB.DSN != "postgres://localhost/clinic" {
		t.Fatalf("unexpected dsn %s", cfg.DB.DSN)
	}
	if cfg.Clinic.LowStockThreshold != 12 {
		t.Fatalf("expected threshold 12, got %d", cfg.Clinic.LowStockThreshold)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Server.Port = 0 },
		func(c *Config) { c.Server.Port = 70000 },
		func(c *Config) { c.Clinic.Currency = "" },
		func(c *Config) { c.Clinic.LowStockThreshold = -1 },
		func(c *Config) { c.Clinic.ExpiryWindowDays = 0 },
		func(c *Config) { c.Log.Format = "xml" },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestClinicConfig_ExpiryWindow(t *testing.T) {
	c := ClinicConfig{ExpiryWindowDays: 15}
	if got := c.ExpiryWindow(); got != 15*24*time.Hour {
		t.Fatalf("expected 360h, got %v", got)
	}
}
