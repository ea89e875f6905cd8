package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/appgraph/internal/workpool"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl settings file
	Watch      bool   // refresh the config when ConfigPath changes

	LogFormat        string
	LogLevel         string
	HealthcheckPort  int
	VirtualExecution string
	MaxTasks         int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.MaxTasks < 0 {
		return nil, fmt.Errorf("invalid max tasks %d: must not be negative", cfg.MaxTasks)
	}
	if _, err := workpool.ParseMode(cfg.VirtualExecution); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// HealthAddr returns the health server listen address, or "" when the
// server is disabled.
func (c *Config) HealthAddr() string {
	if c.HealthcheckPort <= 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.HealthcheckPort)
}

// Mode returns the validated virtual execution mode.
func (c *Config) Mode() workpool.Mode {
	mode, _ := workpool.ParseMode(c.VirtualExecution)
	return mode
}
