package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("server")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/imposter")
	}

	// Enable environment variable binding
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("server.roomtimeout", "ROOM_TIMEOUT")
	v.BindEnv("server.maxstreamsperroom", "MAX_STREAMS_PER_ROOM")
	v.BindEnv("game.turnduration", "TURN_DURATION")
	v.BindEnv("game.wordsfile", "WORDS_FILE")
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.redis.addr", "REDIS_ADDR")
	v.BindEnv("store.redis.password", "REDIS_PASSWORD")
	v.BindEnv("store.redis.db", "REDIS_DB")

	setDefaults(v, DefaultConfig())

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			// Config file was found but another error occurred
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; continue with env vars and defaults
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *ServerConfig) {
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout)
	v.SetDefault("server.streamtimeout", d.Server.StreamTimeout)
	v.SetDefault("server.maxstreamsperroom", d.Server.MaxStreamsPerRoom)

	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)

	v.SetDefault("server.loglevel", d.Server.LogLevel)
	v.SetDefault("server.logformat", d.Server.LogFormat)

	v.SetDefault("server.roomcodelength", d.Server.RoomCodeLength)
	v.SetDefault("server.roomtimeout", d.Server.RoomTimeout)
	v.SetDefault("server.janitorschedule", d.Server.JanitorSchedule)

	v.SetDefault("game.minplayers", d.Game.MinPlayers)
	v.SetDefault("game.maxplayers", d.Game.MaxPlayers)
	v.SetDefault("game.turnduration", d.Game.TurnDuration)
	v.SetDefault("game.maxnamelength", d.Game.MaxNameLength)
	v.SetDefault("game.reshuffleonreplay", d.Game.ReshuffleOnReplay)
	v.SetDefault("game.wordsfile", d.Game.WordsFile)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
}
