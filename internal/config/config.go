package config

import (
	"errors"
	"time"

	"github.com/dshills/widgetry/internal/logging"
)

// Toolkit names accepted by Config.Toolkit.
const (
	ToolkitSim  = "sim"
	ToolkitTerm = "term"
)

// Config holds framework settings.
type Config struct {
	// Debug enables event tracing for labelled channels and bridges.
	Debug bool `toml:"debug" yaml:"debug"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Toolkit selects the native toolkit: "sim" or "term".
	Toolkit string `toml:"toolkit" yaml:"toolkit"`

	Pool   PoolConfig   `toml:"pool" yaml:"pool"`
	Script ScriptConfig `toml:"script" yaml:"script"`
}

// PoolConfig sizes the background worker pool.
type PoolConfig struct {
	Workers   int `toml:"workers" yaml:"workers"`
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

// ScriptConfig controls the Lua script host.
type ScriptConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`

	// Timeout bounds a single script run, as a Go duration string.
	// Empty uses the host default; "0" disables the bound.
	Timeout string `toml:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Toolkit:  ToolkitTerm,
		Pool: PoolConfig{
			Workers:   4,
			QueueSize: 1024,
		},
		Script: ScriptConfig{
			Path: "widgetry.lua",
		},
	}
}

// Level returns the parsed log level. Debug forces LevelDebug.
func (c *Config) Level() logging.Level {
	if c.Debug {
		return logging.LevelDebug
	}
	return logging.ParseLevel(c.LogLevel)
}

// ExecutionTimeout parses Script.Timeout. The second result is false when
// the timeout is unset.
func (s ScriptConfig) ExecutionTimeout() (time.Duration, bool) {
	if s.Timeout == "" {
		return 0, false
	}
	if s.Timeout == "0" {
		return 0, true
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Validate checks every setting and joins the failures.
func (c *Config) Validate() error {
	var errs []error

	switch c.Toolkit {
	case ToolkitSim, ToolkitTerm:
	default:
		errs = append(errs, &ValidationError{Path: "toolkit", Value: c.Toolkit, Message: `must be "sim" or "term"`})
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Path: "log_level", Value: c.LogLevel, Message: "unknown level"})
	}

	if c.Pool.Workers < 1 {
		errs = append(errs, &ValidationError{Path: "pool.workers", Value: c.Pool.Workers, Message: "must be at least 1"})
	}
	if c.Pool.QueueSize < 1 {
		errs = append(errs, &ValidationError{Path: "pool.queue_size", Value: c.Pool.QueueSize, Message: "must be at least 1"})
	}

	if c.Script.Timeout != "" && c.Script.Timeout != "0" {
		if d, err := time.ParseDuration(c.Script.Timeout); err != nil || d < 0 {
			errs = append(errs, &ValidationError{Path: "script.timeout", Value: c.Script.Timeout, Message: "must be a non-negative duration"})
		}
	}
	if c.Script.Enabled && c.Script.Path == "" {
		errs = append(errs, &ValidationError{Path: "script.path", Value: c.Script.Path, Message: "required when scripts are enabled"})
	}

	return errors.Join(errs...)
}
