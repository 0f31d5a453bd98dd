// Package config loads CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig wraps any failure to read or validate settings.
	ErrParsingConfig = errors.New("parsing config")
)

// Config holds settings shared by every command.
type Config struct {
	LogLevel    string        `env:"FURRYKIT_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"FURRYKIT_LOG_FORMAT" envDefault:"text"`
	HTTPTimeout time.Duration `env:"FURRYKIT_HTTP_TIMEOUT" envDefault:"10s"`
	BaseURL     string        `env:"FURRYKIT_BASE_URL"`
	TickRate    time.Duration `env:"FURRYKIT_TICK_RATE" envDefault:"33ms"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom reads settings from environ only, ignoring the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: must be text or json", c.LogFormat)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout %s: must not be negative", c.HTTPTimeout)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate %s: must be positive", c.TickRate)
	}
	return nil
}
