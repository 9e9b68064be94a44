// Package config loads framework settings.
//
// Settings are resolved in three layers, lowest precedence first:
//
//  1. built-in defaults (Default)
//  2. a configuration file, TOML (.toml) or YAML (.yaml, .yml)
//  3. environment variables prefixed with WIDGETRY_
//
// A missing file is not an error; the defaults and environment still
// apply. Watch reloads the file when it changes on disk.
package config
