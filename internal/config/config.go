// Package config carga la configuración del servicio desde un archivo
// YAML opcional y variables de entorno (las env vars pisan al archivo).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Clinic ClinicConfig `yaml:"clinic"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DBConfig struct {
	// DSN vacío = repos en memoria (modo dev / tests).
	DSN string `yaml:"dsn"`
}

type ClinicConfig struct {
	Currency          string `yaml:"currency"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
	ExpiryWindowDays  int    `yaml:"expiry_window_days"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
	App    string `yaml:"app"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Clinic: ClinicConfig{
			Currency:          "USD",
			LowStockThreshold: 5,
			ExpiryWindowDays:  30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "vet-clinic",
		},
	}
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Clinic.Currency == "" {
		return fmt.Errorf("config: currency required")
	}
	if c.Clinic.LowStockThreshold < 0 {
		return fmt.Errorf("config: low_stock_threshold must be >= 0")
	}
	if c.Clinic.ExpiryWindowDays <= 0 {
		return fmt.Errorf("config: expiry_window_days must be > 0")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// ExpiryWindow convierte los días configurados a duración.
func (c ClinicConfig) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryWindowDays) * 24 * time.Hour
}

// Load arma la config final: defaults + archivo (si CLINIC_CONFIG apunta
// a uno) + overrides por env var.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CLINIC_CONFIG"); path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("CURRENCY"); v != "" {
		cfg.Clinic.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Clinic.LowStockThreshold = n
		}
	}
	if v := os.Getenv("EXPIRY_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Clinic.ExpiryWindowDays = n
		}
	}
}
