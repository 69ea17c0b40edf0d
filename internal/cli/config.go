package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// Config holds client-side settings. Flags override the environment.
type Config struct {
	ServerURL string `env:"SURVIVORDRAFT_SERVER" envDefault:"http://localhost:8080"`
	Output    string `env:"SURVIVORDRAFT_OUTPUT" envDefault:"text"`
	Verbose   bool   `env:"SURVIVORDRAFT_VERBOSE"`
}

// DefaultConfig reads the environment. Malformed values fall back to the defaults.
func DefaultConfig() *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return &Config{ServerURL: "http://localhost:8080", Output: outputText}
	}
	return &cfg
}

// Validate checks settings after flags are applied
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Output != outputText && c.Output != outputJSON {
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	return nil
}
