// Package config loads server settings: defaults, then an optional TOML
// file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/clarity/pkg/logging"
)

// DefaultJWTSecret is the signing secret used when none is configured. The
// server refuses to start with it.
const DefaultJWTSecret = "dev-secret-change-in-production"

// ErrInsecureSecret is returned by ValidateServe when no real signing
// secret has been configured.
var ErrInsecureSecret = errors.New("jwt secret is empty or the built-in default; set JWT_SECRET or [auth] jwt_secret")

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Workflow  WorkflowConfig  `toml:"workflow"`
	Receipts  ReceiptsConfig  `toml:"receipts"`
	Assistant AssistantConfig `toml:"assistant"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `toml:"dsn"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret     string        `toml:"jwt_secret"`
	TokenDuration time.Duration `toml:"token_duration"`
}

// WorkflowConfig holds review policy.
type WorkflowConfig struct {
	// AllowSelfReview lets the submitter of an expense approve or reject it.
	AllowSelfReview bool `toml:"allow_self_review"`
}

// ReceiptsConfig selects where receipt files are stored. Bucket wins over Dir.
type ReceiptsConfig struct {
	Dir           string        `toml:"dir"`
	Bucket        string        `toml:"bucket,omitempty"`
	UploadTimeout time.Duration `toml:"upload_timeout"`
}

// AssistantConfig points at the external question-answering service.
type AssistantConfig struct {
	URL     string        `toml:"url,omitempty"`
	Timeout time.Duration `toml:"timeout"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./data/clarity.db",
		},
		Auth: AuthConfig{
			JWTSecret:     DefaultJWTSecret,
			TokenDuration: 24 * time.Hour,
		},
		Workflow: WorkflowConfig{AllowSelfReview: true},
		Receipts: ReceiptsConfig{
			Dir:           "./data/receipts",
			UploadTimeout: 30 * time.Second,
		},
		Assistant: AssistantConfig{Timeout: 30 * time.Second},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads path (if non-empty and present) over the defaults, then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("Config file not found, using defaults", "path", path)
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			cfg.Database.Driver = "postgres"
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("RECEIPTS_BUCKET"); v != "" {
		cfg.Receipts.Bucket = v
	}
	if v := os.Getenv("ASSISTANT_URL"); v != "" {
		cfg.Assistant.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// ValidateServe checks the settings the server needs before it accepts
// connections.
func (c Config) ValidateServe() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || secret == DefaultJWTSecret {
		return ErrInsecureSecret
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("invalid token duration %s", c.Auth.TokenDuration)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level. Unknown names mean info.
func (c Config) SlogLevel() slog.Level {
	return logging.ParseLevel(c.Log.Level)
}
