// Package config loads server settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends for durable room snapshots
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds every server setting
type Config struct {
	Host     string `env:"SURVIVORDRAFT_HOST"`
	Port     int    `env:"SURVIVORDRAFT_PORT"      envDefault:"8080"`
	LogLevel string `env:"SURVIVORDRAFT_LOG_LEVEL" envDefault:"info"`

	Storage      string        `env:"SURVIVORDRAFT_STORAGE"        envDefault:"memory"`
	RedisURL     string        `env:"SURVIVORDRAFT_REDIS_URL"`
	RedisRoomTTL time.Duration `env:"SURVIVORDRAFT_REDIS_ROOM_TTL" envDefault:"24h"`
	SQLitePath   string        `env:"SURVIVORDRAFT_SQLITE_PATH"    envDefault:"survivordraft.db"`

	DisconnectGrace time.Duration `env:"SURVIVORDRAFT_DISCONNECT_GRACE" envDefault:"5s"`
	CORSOrigins     []string      `env:"SURVIVORDRAFT_CORS_ORIGINS"     envSeparator:","`

	// RandomSeed makes games reproducible; 0 uses crypto randomness
	RandomSeed uint64 `env:"SURVIVORDRAFT_RANDOM_SEED"`

	WSCommandRate  float64 `env:"SURVIVORDRAFT_WS_COMMAND_RATE"  envDefault:"5"`
	WSCommandBurst int     `env:"SURVIVORDRAFT_WS_COMMAND_BURST" envDefault:"10"`
}

// Load reads the given dotenv files, if present, then parses the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("SURVIVORDRAFT_REDIS_URL is required when storage is redis")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SURVIVORDRAFT_SQLITE_PATH is required when storage is sqlite")
		}
	default:
		return fmt.Errorf("invalid storage %q: must be memory, redis or sqlite", c.Storage)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DisconnectGrace <= 0 {
		return errors.New("disconnect grace must be positive")
	}
	if c.WSCommandRate <= 0 || c.WSCommandBurst <= 0 {
		return errors.New("websocket command rate and burst must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
