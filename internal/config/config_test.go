package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
service:
  name: linklens-ingestion
  port: 9090
database:
  host: db.internal
  user: linklens
  password: secret
  name: linklens
auth:
  jwt_secret: super-secret
summarizer:
  base_url: http://summarizer:8000
  service_key: svc-key
sweeper:
  enabled: true
  max_age: 15m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Summarizer.Configured())
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, "15m0s", cfg.Sweeper.MaxAge.String())

	// Defaults fill the rest.
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "@every 5m", cfg.Sweeper.Schedule)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 8080
auth:
  jwt_secret: from-file
`)

	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 9999, cfg.Service.Port)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 8080
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_MissingSummarizerIsNotFatal(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 8080
auth:
  jwt_secret: s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Summarizer.Configured())
}
