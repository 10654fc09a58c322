package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendMemgraph, cfg.Graph.Backend)
	assert.Equal(t, "gov_01", cfg.Graph.PresidencyID)
	assert.Equal(t, 10, cfg.Concurrency.FanOut)
	assert.Equal(t, 200, cfg.Throttle.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Throttle.Wait())
	assert.Equal(t, 50, cfg.Memgraph.MaxPoolSize)
	assert.Equal(t, 90*time.Second, cfg.Memgraph.Query())
	assert.Equal(t, 300*time.Second, cfg.Memgraph.Lifetime())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[memgraph]
uri = "bolt://memgraph:7687"
user = "reader"

[concurrency]
fan_out = 4

[throttle]
max_concurrent = 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://memgraph:7687", cfg.Memgraph.URI)
	assert.Equal(t, "reader", cfg.Memgraph.User)
	assert.Equal(t, 4, cfg.Concurrency.FanOut)
	assert.Equal(t, 20, cfg.Throttle.MaxConcurrent)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Throttle.WaitTimeout)
	assert.Equal(t, 50, cfg.Memgraph.MaxPoolSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[memgraph]
uri = "bolt://memgraph:7687"

[server]
port = 9000
`)
	t.Setenv("MEMGRAPH_URI", "bolt://override:7687")
	t.Setenv("MEMGRAPH_PASSWORD", "secret")
	t.Setenv("THROTTLE_WAIT_TIMEOUT", "5")
	t.Setenv("MEMGRAPH_BUILD_INDICES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://override:7687", cfg.Memgraph.URI)
	assert.Equal(t, "secret", cfg.Memgraph.Password)
	assert.Equal(t, 5*time.Second, cfg.Throttle.Wait())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Memgraph.BuildIndices)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[server\nport = "))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[graph]\nbackend = \"postgres\"\n"))
		assert.ErrorContains(t, err, "graph backend")
	})

	t.Run("redis storage without url", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_STORAGE", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "redis_url")
	})
}

func TestRateLimitConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RateLimitConfig
		wantErr bool
	}{
		{"memory", RateLimitConfig{GlobalRPS: 10, Storage: "memory"}, false},
		{"redis", RateLimitConfig{GlobalRPS: 10, Storage: "redis", RedisURL: "redis://localhost:6379/0"}, false},
		{"negative rps", RateLimitConfig{GlobalRPS: -1, Storage: "memory"}, true},
		{"unknown storage", RateLimitConfig{GlobalRPS: 10, Storage: "disk"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
