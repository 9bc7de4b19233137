// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/cryptobench/lib/codec"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "CRYPTOBENCH_CONFIG"

// Config is the complete cryptobench configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Sampling SamplingConfig `yaml:"sampling"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Store    StoreConfig    `yaml:"store"`
	Report   ReportConfig   `yaml:"report"`
	Export   ExportConfig   `yaml:"export"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// PathsConfig configures where output goes.
type PathsConfig struct {
	// Root is the base directory for everything cryptobench writes.
	Root string `yaml:"root"`

	// Reports is the directory reports are written into, flat, one
	// file per evaluation ID.
	Reports string `yaml:"reports"`

	// Database is the result store file. Empty disables persistence.
	Database string `yaml:"database"`
}

// SamplingConfig configures the instrumentation.
type SamplingConfig struct {
	// Interval is the background sampler period.
	Interval time.Duration `yaml:"interval"`

	// MemoryInterval is the RSS sampling period of the memory tracer.
	MemoryInterval time.Duration `yaml:"memory_interval"`

	// StopTimeout bounds how long stopping the sampler waits.
	StopTimeout time.Duration `yaml:"stop_timeout"`

	// CycleCounter enables the hardware cycle counter when the host
	// supports it.
	CycleCounter bool `yaml:"cycle_counter"`
}

// DefaultsConfig supplies values for omitted command-line flags.
type DefaultsConfig struct {
	Algorithm string `yaml:"algorithm"`
	Volume    int    `yaml:"volume"`
	Seed      uint64 `yaml:"seed"`
}

// StoreConfig configures the result store.
type StoreConfig struct {
	// Compression is none, lz4, or zstd.
	Compression string `yaml:"compression"`
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	// HTML additionally renders each Markdown report to HTML.
	HTML bool `yaml:"html"`

	// ChartPoints caps the memory chart length.
	ChartPoints int `yaml:"chart_points"`
}

// ExportConfig configures metric export.
type ExportConfig struct {
	// PrometheusTextfile, when set, receives a node_exporter textfile
	// after every run.
	PrometheusTextfile string `yaml:"prometheus_textfile"`
}

// Default returns a configuration that needs no file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	root := filepath.Join(homeDir, ".cache", "cryptobench")

	return &Config{
		Paths: PathsConfig{
			Root:     root,
			Reports:  filepath.Join(root, "reports"),
			Database: filepath.Join(root, "results.db"),
		},
		Sampling: SamplingConfig{
			Interval:       50 * time.Millisecond,
			MemoryInterval: 10 * time.Millisecond,
			StopTimeout:    2 * time.Second,
			CycleCounter:   true,
		},
		Defaults: DefaultsConfig{
			Algorithm: "MLKEM_1024",
			Volume:    1000,
			Seed:      42,
		},
		Store: StoreConfig{
			Compression: "zstd",
		},
		Report: ReportConfig{
			ChartPoints: 50,
		},
		LogLevel: "info",
	}
}

// Load loads the file named by CRYPTOBENCH_CONFIG, or returns
// [Default] when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads path over [Default]. Fields absent from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"CRYPTOBENCH_ROOT": c.Paths.Root,
		"HOME":             os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["CRYPTOBENCH_ROOT"] = c.Paths.Root

	c.Paths.Reports = expandVars(c.Paths.Reports, vars)
	c.Paths.Database = expandVars(c.Paths.Database, vars)
	c.Export.PrometheusTextfile = expandVars(c.Export.PrometheusTextfile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. vars take precedence
// over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Reports == "" {
		errs = append(errs, errors.New("paths.reports is required"))
	}
	if c.Sampling.Interval <= 0 {
		errs = append(errs, fmt.Errorf("sampling.interval must be positive, got %s", c.Sampling.Interval))
	}
	if c.Sampling.MemoryInterval <= 0 {
		errs = append(errs, fmt.Errorf("sampling.memory_interval must be positive, got %s", c.Sampling.MemoryInterval))
	}
	if c.Sampling.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sampling.stop_timeout must be positive, got %s", c.Sampling.StopTimeout))
	}
	if c.Defaults.Volume <= 0 {
		errs = append(errs, fmt.Errorf("defaults.volume must be greater than 0, got %d", c.Defaults.Volume))
	}
	if _, err := codec.ParseCompression(c.Store.Compression); err != nil {
		errs = append(errs, fmt.Errorf("store.compression: %w", err))
	}
	if c.Report.ChartPoints <= 0 {
		errs = append(errs, fmt.Errorf("report.chart_points must be positive, got %d", c.Report.ChartPoints))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error: got %q", c.LogLevel)
	}
	return level, nil
}

// Compression parses Store.Compression.
func (c *Config) Compression() (codec.Compression, error) {
	return codec.ParseCompression(c.Store.Compression)
}

// EnsurePaths creates the report directory and the database's parent
// directory.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Paths.Reports}
	if c.Paths.Database != "" {
		paths = append(paths, filepath.Dir(c.Paths.Database))
	}
	if c.Export.PrometheusTextfile != "" {
		paths = append(paths, filepath.Dir(c.Export.PrometheusTextfile))
	}
	for _, path := range paths {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
