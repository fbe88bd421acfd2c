// Package config handles YAML configuration for Pagescope.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Monitor MonitorConfig `yaml:"monitor,omitempty"`
	OTEL    OTELConfig    `yaml:"otel,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
	Sinks   SinksConfig   `yaml:"sinks,omitempty"`
}

// ServiceConfig identifies the embedding service.
type ServiceConfig struct {
	Name string `yaml:"name"`
}

// MonitorConfig holds interception engine settings.
type MonitorConfig struct {
	Debounce  time.Duration `yaml:"debounce,omitempty"`  // suppression window
	Retention time.Duration `yaml:"retention,omitempty"` // ledger entry horizon
	Detection string        `yaml:"detection,omitempty"` // detection-method tag on events
}

// OTELConfig holds OpenTelemetry export settings.
type OTELConfig struct {
	Endpoint string       `yaml:"endpoint,omitempty"`
	Insecure bool         `yaml:"insecure,omitempty"`
	Traces   TracesConfig `yaml:"traces,omitempty"`
	Metrics  ExportConfig `yaml:"metrics,omitempty"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}

// ExportConfig toggles OTLP metric export.
type ExportConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig holds the local Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// SinksConfig selects event delivery backends beyond the always-on log sink.
type SinksConfig struct {
	ArchiveDir string `yaml:"archive_dir,omitempty"`
	StreamURL  string `yaml:"stream_url,omitempty"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "pagescope"
	}
	if cfg.Monitor.Detection == "" {
		cfg.Monitor.Detection = "api-interception"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.OTEL.Traces.SampleRate == 0 {
		cfg.OTEL.Traces.SampleRate = 1.0
	}
}

// Validate ensures the config is internally consistent.
func (c *Config) Validate() error {
	if c.Monitor.Debounce < 0 {
		return fmt.Errorf("monitor.debounce must not be negative")
	}
	if c.Monitor.Retention < 0 {
		return fmt.Errorf("monitor.retention must not be negative")
	}
	if c.Monitor.Retention > 0 && c.Monitor.Debounce > 0 && c.Monitor.Retention < c.Monitor.Debounce {
		return fmt.Errorf("monitor.retention must be at least the debounce window")
	}
	if c.OTEL.Traces.SampleRate < 0 || c.OTEL.Traces.SampleRate > 1 {
		return fmt.Errorf("otel.traces.sample_rate must be between 0 and 1")
	}
	return nil
}
