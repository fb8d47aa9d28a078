// Package config loads meshedit settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunable settings of the host application.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Engine EngineConfig `toml:"engine"`
	Export ExportConfig `toml:"export"`
}

// LogConfig controls the shared logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// EngineConfig controls script evaluation.
type EngineConfig struct {
	// Tolerance is used by builtins called without :tolerance.
	Tolerance float64 `toml:"tolerance"`
	// TimeoutSeconds bounds a single evaluation.
	TimeoutSeconds float64 `toml:"timeout_seconds"`
}

// ExportConfig controls render snapshots.
type ExportConfig struct {
	Normals   bool `toml:"normals"`
	Wireframe bool `toml:"wireframe"`
	// Flat emits three unshared vertices per triangle with face normals.
	Flat bool `toml:"flat"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Engine: EngineConfig{Tolerance: 1e-10, TimeoutSeconds: 5},
		Export: ExportConfig{Normals: true, Wireframe: true},
	}
}

// Timeout returns the evaluation limit as a duration.
func (c EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if !(c.Engine.Tolerance > 0) {
		return fmt.Errorf("config: engine.tolerance must be positive, got %g", c.Engine.Tolerance)
	}
	if !(c.Engine.TimeoutSeconds > 0) {
		return fmt.Errorf("config: engine.timeout_seconds must be positive, got %g", c.Engine.TimeoutSeconds)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}
