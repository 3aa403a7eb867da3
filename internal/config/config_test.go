package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "RECEIPTS_BUCKET", "ASSISTANT_URL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Workflow.AllowSelfReview)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "clarity.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[workflow]
allow_self_review = false

[auth]
token_duration = "2h"

[receipts]
upload_timeout = "5s"

[log]
level = "debug"
`), 0o644))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://clarity@localhost/clarity")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Workflow.AllowSelfReview)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, 5*time.Second, cfg.Receipts.UploadTimeout)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "./data/receipts", cfg.Receipts.Dir, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("server = ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidateServe(t *testing.T) {
	clearEnv(t)

	t.Run("default secret refused", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.ValidateServe(), ErrInsecureSecret)
	})

	t.Run("blank secret refused", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Auth.JWTSecret = "   "
		assert.ErrorIs(t, cfg.ValidateServe(), ErrInsecureSecret)
	})

	t.Run("secret from env accepted", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-real-secret")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.NoError(t, cfg.ValidateServe())
	})

	t.Run("zero token duration refused", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Auth.JWTSecret = "a-real-secret"
		cfg.Auth.TokenDuration = 0
		assert.Error(t, cfg.ValidateServe())
	})
}
