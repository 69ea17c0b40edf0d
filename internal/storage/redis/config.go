package redis

import (
	"errors"
	"time"
)

// Config holds the snapshot store's connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	PoolSize     int
	MinIdleConns int

	// RoomTTL expires snapshots of rooms that stop changing; 0 keeps them forever
	RoomTTL time.Duration
}

// DefaultConfig returns the settings used when only a URL is configured.
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
	}
}

// Validate rejects settings the store cannot run with
func (c Config) Validate() error {
	switch {
	case c.URL == "":
		return errors.New("redis: url is required")
	case c.RoomTTL < 0:
		return errors.New("redis: room ttl must not be negative")
	case c.MinIdleConns > c.PoolSize && c.PoolSize > 0:
		return errors.New("redis: min idle conns exceeds pool size")
	}
	return nil
}
