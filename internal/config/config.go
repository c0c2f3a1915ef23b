// Package config reads the luapam command's settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration. Command-line flags override it.
type Config struct {
	Service   string `env:"LUAPAM_SERVICE" envDefault:"login"`
	User      string `env:"LUAPAM_USER"`
	LogLevel  string `env:"LUAPAM_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LUAPAM_LOG_FORMAT" envDefault:"text"`

	// Fake selects the in-process framework instead of libpam. FakeUsers
	// lists its accounts as user:password pairs.
	Fake      bool              `env:"LUAPAM_FAKE"`
	FakeUsers map[string]string `env:"LUAPAM_FAKE_USERS" envSeparator:"," envKeyValSeparator:":"`

	OTelEndpoint string `env:"LUAPAM_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"LUAPAM_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the command cannot act on.
func (c Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("config: LUAPAM_SERVICE must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LUAPAM_LOG_FORMAT %q: want text or json", c.LogFormat)
	}
	return nil
}
