package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOST", "localhost")
	t.Setenv("PORT", "8080")
}

func TestLoadConfig(t *testing.T) {
	// Test loading default config when file doesn't exist
	t.Run("LoadDefaultWhenMissing", func(t *testing.T) {
		setRequiredEnv(t)

		config, err := LoadConfig("nonexistent.yaml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Game.MaxPlayers != 5 {
			t.Errorf("expected MaxPlayers 5, got %d", config.Game.MaxPlayers)
		}
		if config.Game.TurnDuration != 30*time.Second {
			t.Errorf("expected TurnDuration 30s, got %v", config.Game.TurnDuration)
		}
		if config.Store.Backend != BackendMemory {
			t.Errorf("expected memory backend, got %s", config.Store.Backend)
		}
		if config.Server.RoomCodeLength != 4 {
			t.Errorf("expected RoomCodeLength 4, got %d", config.Server.RoomCodeLength)
		}
	})

	t.Run("LoadFromYAML", func(t *testing.T) {
		setRequiredEnv(t)

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "test-config.yaml")

		yamlContent := `
server:
  roomCodeLength: 6
  roomTimeout: 12h
  logFormat: json

game:
  minPlayers: 4
  maxPlayers: 4
  maxNameLength: 12
  turnDuration: 45s
  reshuffleOnReplay: false

store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    prefix: party
`
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		require.NoError(t, err)

		assert.Equal(t, 6, config.Server.RoomCodeLength)
		assert.Equal(t, 12*time.Hour, config.Server.RoomTimeout)
		assert.Equal(t, "json", config.Server.LogFormat)

		rules := config.Rules()
		assert.Equal(t, 4, rules.MinPlayers)
		assert.Equal(t, 4, rules.MaxPlayers)
		assert.Equal(t, 45*time.Second, rules.TurnDuration)
		assert.Equal(t, 12, rules.MaxNameLength)
		assert.False(t, rules.ReshuffleOnReplay)

		assert.Equal(t, BackendRedis, config.Store.Backend)
		assert.Equal(t, "redis:6379", config.Store.Redis.Addr)
		assert.Equal(t, 2, config.Store.Redis.DB)
		assert.Equal(t, "party", config.Store.Redis.Prefix)
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TURN_DURATION", "10s")
		t.Setenv("STORE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "cache:6380")
		t.Setenv("LOG_LEVEL", "debug")

		configPath := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("game:\n  turnDuration: 45s\n"), 0644))

		config, err := LoadConfig(configPath)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, config.Game.TurnDuration)
		assert.Equal(t, BackendRedis, config.Store.Backend)
		assert.Equal(t, "cache:6380", config.Store.Redis.Addr)
		assert.Equal(t, "debug", config.Server.LogLevel)
		assert.Equal(t, "localhost:8080", config.Address())
	})

	t.Run("MissingPort", func(t *testing.T) {
		t.Setenv("HOST", "localhost")
		t.Setenv("PORT", "")

		_, err := LoadConfig("nonexistent.yaml")
		assert.ErrorContains(t, err, "PORT")
	})

	t.Run("MalformedFile", func(t *testing.T) {
		setRequiredEnv(t)

		configPath := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("game: [unclosed"), 0644))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
	})
}

func TestConfigValidation(t *testing.T) {
	valid := func() *ServerConfig {
		c := DefaultConfig()
		c.Server.Port = "8080"
		c.Server.Host = "localhost"
		return c
	}

	tests := []struct {
		name    string
		modify  func(c *ServerConfig)
		wantErr bool
	}{
		{"defaults with host and port", func(c *ServerConfig) {}, false},
		{"missing host", func(c *ServerConfig) { c.Server.Host = "" }, true},
		{"unknown log format", func(c *ServerConfig) { c.Server.LogFormat = "xml" }, true},
		{"short room codes", func(c *ServerConfig) { c.Server.RoomCodeLength = 2 }, true},
		{"no room timeout", func(c *ServerConfig) { c.Server.RoomTimeout = 0 }, true},
		{"no streams per room", func(c *ServerConfig) { c.Server.MaxStreamsPerRoom = 0 }, true},
		{"one player", func(c *ServerConfig) { c.Game.MinPlayers = 1 }, true},
		{"min above max", func(c *ServerConfig) { c.Game.MinPlayers = 6 }, true},
		{"zero turn", func(c *ServerConfig) { c.Game.TurnDuration = 0 }, true},
		{"zero name length", func(c *ServerConfig) { c.Game.MaxNameLength = 0 }, true},
		{"six players", func(c *ServerConfig) { c.Game.MaxPlayers = 6 }, true},
		{"long names", func(c *ServerConfig) { c.Game.MaxNameLength = 16 }, true},
		{"smaller table", func(c *ServerConfig) {
			c.Game.MinPlayers = 2
			c.Game.MaxPlayers = 3
			c.Game.MaxNameLength = 8
		}, false},
		{"unknown backend", func(c *ServerConfig) { c.Store.Backend = "etcd" }, true},
		{"redis without address", func(c *ServerConfig) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.Addr = ""
		}, true},
		{"memory without janitor", func(c *ServerConfig) { c.Server.JanitorSchedule = "" }, true},
		{"redis ignores janitor", func(c *ServerConfig) {
			c.Store.Backend = BackendRedis
			c.Server.JanitorSchedule = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
