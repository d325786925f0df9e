package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8090, config.Server.Port)
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, 128, config.Store.ListCacheSize)
	assert.Equal(t, "https://api.openai.com/v1", config.Oracle.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tonify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
oracle:
  api_key: file-key
  scoring_model: custom-model
store:
  backend: memory
`), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "file-key", config.Oracle.APIKey)
	assert.Equal(t, "custom-model", config.Oracle.ScoringModel)
	assert.Equal(t, BackendMemory, config.Store.Backend)
	// Defaults still fill the gaps.
	assert.Equal(t, "localhost", config.Server.Host)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TONIFY_ORACLE_API_KEY", "env-key")
	t.Setenv("TONIFY_STORE_BACKEND", "memory")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Oracle.APIKey)
	assert.Equal(t, BackendMemory, config.Store.Backend)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() *Config {
		config, err := Load("")
		require.NoError(t, err)
		return config
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: "unknown store backend",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Store.Backend = BackendSQLite
				c.Store.SQLitePath = ""
			},
			wantErr: "sqlite_path",
		},
		{
			name: "redis without addr",
			mutate: func(c *Config) {
				c.Store.Backend = BackendRedis
				c.Store.RedisAddr = ""
			},
			wantErr: "redis_addr",
		},
		{
			name:    "missing oracle url",
			mutate:  func(c *Config) { c.Oracle.BaseURL = "" },
			wantErr: "base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
