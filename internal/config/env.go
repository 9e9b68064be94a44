package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WIDGETRY_"

// envMapping maps environment variables to setting paths.
var envMapping = map[string]string{
	"WIDGETRY_DEBUG":           "debug",
	"WIDGETRY_LOG_LEVEL":       "log_level",
	"WIDGETRY_TOOLKIT":         "toolkit",
	"WIDGETRY_POOL_WORKERS":    "pool.workers",
	"WIDGETRY_POOL_QUEUE_SIZE": "pool.queue_size",
	"WIDGETRY_SCRIPT_ENABLED":  "script.enabled",
	"WIDGETRY_SCRIPT_PATH":     "script.path",
	"WIDGETRY_SCRIPT_TIMEOUT":  "script.timeout",
}

// ApplyEnv overrides cfg from the environment. lookup is normally
// os.LookupEnv. Empty values count as set.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for env, path := range envMapping {
		val, ok := lookup(env)
		if !ok {
			continue
		}
		if err := Set(cfg, path, val); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// Set assigns the setting at path from its string form.
func Set(cfg *Config, path, value string) error {
	switch path {
	case "debug":
		return setBool(&cfg.Debug, path, value)
	case "log_level":
		cfg.LogLevel = strings.ToLower(value)
	case "toolkit":
		cfg.Toolkit = strings.ToLower(value)
	case "pool.workers":
		return setInt(&cfg.Pool.Workers, path, value)
	case "pool.queue_size":
		return setInt(&cfg.Pool.QueueSize, path, value)
	case "script.enabled":
		return setBool(&cfg.Script.Enabled, path, value)
	case "script.path":
		cfg.Script.Path = value
	case "script.timeout":
		cfg.Script.Timeout = value
	default:
		return fmt.Errorf("unknown setting %q", path)
	}
	return nil
}

func setBool(dst *bool, path, value string) error {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return &ValidationError{Path: path, Value: value, Message: "not a boolean"}
	}
	return nil
}

func setInt(dst *int, path, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return &ValidationError{Path: path, Value: value, Message: "not an integer"}
	}
	*dst = n
	return nil
}
