package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "taskflow.db", cfg.DatabaseURL)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, 100, cfg.DefaultLimit)
	assert.Zero(t, cfg.DigestInterval)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsAsymmetricAlgorithm(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ALGORITHM", "RS256")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http_addr: ":9000"
database_url: "${TEST_DB_PATH}"
auth:
  secret_key: from-file
  access_token_expire_minutes: 5
ai:
  api_key: file-key
  timeout_seconds: 3
digest_interval_hours: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_DB_PATH", "/tmp/expanded.db")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/expanded.db", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.Auth.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, 3*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 6*time.Hour, cfg.DigestInterval)
	assert.True(t, cfg.AIConfigured())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := Load()
	assert.Error(t, err)
}
