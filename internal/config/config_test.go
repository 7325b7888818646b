package config_test

import (
	"os"
	"path/filepath"
	"taskmanager/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, config.RepositoryPostgres, cfg.Repository.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "0 * * * *", cfg.Sweeper.Schedule)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, ":3000", cfg.GetServerAddr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: "8080"
repository:
  type: inmemory
auth:
  jwt_secret: from-file
  token_ttl: 1h
logging:
  development: true
  level: debug
sweeper:
  schedule: "*/5 * * * *"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port, "env overrides file")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, config.RepositoryInMemory, cfg.Repository.Type)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "*/5 * * * *", cfg.Sweeper.Schedule)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Database:   config.DatabaseConfig{URL: "postgres://x"},
			Repository: config.RepositoryConfig{Type: config.RepositoryPostgres},
			Auth:       config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
			Sweeper:    config.SweeperConfig{Enabled: true, Schedule: "0 * * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "missing secret", mutate: func(c *config.Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *config.Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "unknown repository", mutate: func(c *config.Config) { c.Repository.Type = "mongo" }, wantErr: true},
		{name: "missing db url", mutate: func(c *config.Config) { c.Database.URL = "" }, wantErr: true},
		{name: "inmemory without db url", mutate: func(c *config.Config) {
			c.Database.URL = ""
			c.Repository.Type = config.RepositoryInMemory
		}},
		{name: "bad schedule", mutate: func(c *config.Config) { c.Sweeper.Schedule = "every hour" }, wantErr: true},
		{name: "bad schedule ignored when disabled", mutate: func(c *config.Config) {
			c.Sweeper.Schedule = "every hour"
			c.Sweeper.Enabled = false
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
