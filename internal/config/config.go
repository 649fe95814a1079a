package config

import (
	"fmt"
	"time"

	"imposter/internal/game"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// Store backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
	Store  StoreSettings  `yaml:"store"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 for stream support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Timeout for regular HTTP requests (middleware)
	StreamTimeout   time.Duration `yaml:"streamTimeout"`  // Timeout for SSE and websocket streams (0 = no timeout)

	// Open SSE and websocket streams allowed per room
	MaxStreamsPerRoom int `yaml:"maxStreamsPerRoom"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"` // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	// Request limits
	MaxRequestSize int64 `yaml:"maxRequestSize"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"` // json or text

	// Rooms
	RoomCodeLength  int           `yaml:"roomCodeLength"`
	RoomTimeout     time.Duration `yaml:"roomTimeout"`     // idle rooms are dropped after this long
	JanitorSchedule string        `yaml:"janitorSchedule"` // cron spec for purging idle in-memory rooms
}

// GameSettings contains the rules every room is played with
type GameSettings struct {
	MinPlayers        int           `yaml:"minPlayers"`
	MaxPlayers        int           `yaml:"maxPlayers"`
	TurnDuration      time.Duration `yaml:"turnDuration"`
	MaxNameLength     int           `yaml:"maxNameLength"`
	ReshuffleOnReplay bool          `yaml:"reshuffleOnReplay"`
	WordsFile         string        `yaml:"wordsFile"` // empty uses the built-in list
}

// StoreSettings selects where room documents live
type StoreSettings struct {
	Backend string        `yaml:"backend"`
	Redis   RedisSettings `yaml:"redis"`
}

// RedisSettings configures the redis backend
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	rules := game.DefaultRules()

	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streams stay open
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			StreamTimeout:   24 * time.Hour,

			MaxStreamsPerRoom: 20,

			RateLimit:      10,
			RateLimitBurst: 20,
			MaxRequestSize: 1048576, // 1MB

			LogLevel:  "info",
			LogFormat: "text",

			RoomCodeLength:  game.DefaultRoomCodeLength,
			RoomTimeout:     24 * time.Hour,
			JanitorSchedule: "@every 5m",
		},
		Game: GameSettings{
			MinPlayers:        rules.MinPlayers,
			MaxPlayers:        rules.MaxPlayers,
			TurnDuration:      rules.TurnDuration,
			MaxNameLength:     rules.MaxNameLength,
			ReshuffleOnReplay: rules.ReshuffleOnReplay,
		},
		Store: StoreSettings{
			Backend: BackendMemory,
			Redis: RedisSettings{
				Addr:   "localhost:6379",
				Prefix: "imposter",
			},
		},
	}
}

// Rules converts the game section into game rules
func (c *ServerConfig) Rules() game.Rules {
	return game.Rules{
		MinPlayers:        c.Game.MinPlayers,
		MaxPlayers:        c.Game.MaxPlayers,
		TurnDuration:      c.Game.TurnDuration,
		MaxNameLength:     c.Game.MaxNameLength,
		ReshuffleOnReplay: c.Game.ReshuffleOnReplay,
	}
}

// Address returns the listen address
func (c *ServerConfig) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	// Required fields
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Server.LogFormat != "json" && c.Server.LogFormat != "text" {
		return fmt.Errorf("logFormat must be json or text, got %q", c.Server.LogFormat)
	}
	if c.Server.RoomCodeLength < 3 {
		return fmt.Errorf("roomCodeLength must be at least 3")
	}
	if c.Server.RoomTimeout <= 0 {
		return fmt.Errorf("roomTimeout must be positive")
	}
	if c.Server.MaxStreamsPerRoom < 1 {
		return fmt.Errorf("maxStreamsPerRoom must be at least 1")
	}

	// A vote needs someone other than yourself to vote for
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("minPlayers must be at least 2")
	}
	if c.Game.MinPlayers > c.Game.MaxPlayers {
		return fmt.Errorf("minPlayers cannot be greater than maxPlayers")
	}
	if c.Game.TurnDuration <= 0 {
		return fmt.Errorf("turnDuration must be positive")
	}
	if c.Game.MaxPlayers > game.PlayerLimit {
		return fmt.Errorf("maxPlayers cannot exceed %d", game.PlayerLimit)
	}
	if c.Game.MaxNameLength < 1 {
		return fmt.Errorf("maxNameLength must be at least 1")
	}
	if c.Game.MaxNameLength > game.NameLengthLimit {
		return fmt.Errorf("maxNameLength cannot exceed %d", game.NameLengthLimit)
	}

	switch c.Store.Backend {
	case BackendMemory:
		if c.Server.JanitorSchedule == "" {
			return fmt.Errorf("janitorSchedule must be set for the memory store")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR must be set when STORE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	return nil
}
