// Package config provides configuration management for the Tide core
// using Viper for flexible loading from files, environment variables,
// and command-line flags.
//
// Global ambient state (font/template/cache directories, the
// recent-project cache) is reified as an explicit Env value threaded
// into the components that need it, so tests can substitute their own.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lilBchii/tide/internal/errors"
)

// Config is the user-tunable configuration.
type Config struct {
	Compiler CompilerConfig `yaml:"compiler"`
	Preview  PreviewConfig  `yaml:"preview"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
}

// CompilerConfig configures the external compiler adapter.
type CompilerConfig struct {
	Command string `yaml:"command"`
	FontDir string `yaml:"font_dir"`
}

// PreviewConfig tunes the incremental preview renderer.
type PreviewConfig struct {
	Zoom            float32 `yaml:"zoom"`
	PageGap         float32 `yaml:"page_gap"`
	ScrollThreshold float32 `yaml:"scroll_threshold"`
	ViewportHeight  float32 `yaml:"viewport_height"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Format string `yaml:"format"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{Command: "typst"},
		Preview: PreviewConfig{
			Zoom:            1.0,
			PageGap:         15.0,
			ScrollThreshold: 50.0,
			ViewportHeight:  900.0,
		},
		Export: ExportConfig{Format: "pdf"},
		Server: ServerConfig{Host: "localhost", Port: 8119},
	}
}

// Load builds the configuration from viper's merged sources on top of
// the defaults.
func Load() (*Config, error) {
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.NewConfigError("cannot parse configuration", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	if c.Preview.Zoom < 0.1 || c.Preview.Zoom > 3.0 {
		return errors.NewConfigError("preview.zoom must be within [0.1, 3.0]", nil).
			WithContext("zoom", c.Preview.Zoom)
	}
	if c.Preview.PageGap < 0 {
		return errors.NewConfigError("preview.page_gap must not be negative", nil)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigError("server.port out of range", nil).
			WithContext("port", c.Server.Port)
	}
	switch c.Export.Format {
	case "pdf", "png", "svg":
	default:
		return errors.NewConfigError("export.format must be pdf, png, or svg", nil).
			WithContext("format", c.Export.Format)
	}
	return nil
}

// Write marshals the configuration as YAML to path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.NewConfigError("cannot marshal configuration", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.NewIOError("cannot create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewIOError("cannot write config file", err)
	}
	return nil
}
