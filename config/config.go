// Package config loads projsys settings from projsys.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/willibrandon/projsys/imports"
	"github.com/willibrandon/projsys/observability"
	"github.com/willibrandon/projsys/tree"
)

// FileName is the name of the configuration file.
const FileName = "projsys.yaml"

// Config holds tool settings. Zero fields fall back to Default values.
type Config struct {
	LogLevel string        `yaml:"logLevel"`
	Tree     TreeConfig    `yaml:"tree"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Tracing  TracingConfig `yaml:"tracing"`
	Imports  ImportsConfig `yaml:"imports"`
}

// TreeConfig controls how trees are written.
type TreeConfig struct {
	// Indent is the number of spaces per level.
	Indent int `yaml:"indent"`

	// Properties lists what the writer emits besides captions: visibility,
	// flags, filePath, itemType, subType, icons, displayOrder, or all.
	Properties []string `yaml:"properties"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Address is the listen address; empty disables the endpoint.
	Address string `yaml:"address"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// ImportsConfig controls import loading and classification.
type ImportsConfig struct {
	// ProgramFiles, ProgramFilesX86 and Windows override the system
	// directories read from the environment.
	ProgramFiles    string `yaml:"programFiles"`
	ProgramFilesX86 string `yaml:"programFilesX86"`
	Windows         string `yaml:"windows"`

	Debounce  time.Duration `yaml:"debounce"`
	CacheSize int           `yaml:"cacheSize"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Tree: TreeConfig{
			Indent:     len(tree.DefaultIndent),
			Properties: []string{"all"},
		},
		Tracing: TracingConfig{
			Exporter:     "none",
			SamplingRate: 1.0,
		},
		Imports: ImportsConfig{
			Debounce:  imports.DefaultDebounce,
			CacheSize: imports.DefaultCacheSize,
		},
	}
}

// DefaultLocations returns the places searched for projsys.yaml in
// precedence order.
func DefaultLocations() []string {
	var locations []string

	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, filepath.Join(cwd, FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".projsys", FileName))
	}
	return locations
}

// FindFile returns the first existing configuration file, or "".
func FindFile() string {
	for _, loc := range DefaultLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Load reads the configuration at path. An empty path searches the
// default locations and returns Default when nothing is found.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindFile()
		if path == "" {
			return Default(), nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that the zero-value fallback cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := observability.ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Tree.Indent < 0 {
		errs = append(errs, fmt.Errorf("tree indent must not be negative: %d", c.Tree.Indent))
	}
	if _, err := c.WriterOptions(); err != nil {
		errs = append(errs, err)
	}
	switch c.Tracing.Exporter {
	case "", observability.ExporterNone, observability.ExporterStdout:
	case observability.ExporterOTLP:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("otlp tracing requires an endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter))
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("sampling rate must be between 0 and 1: %g", c.Tracing.SamplingRate))
	}
	if c.Imports.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative: %s", c.Imports.Debounce))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level.
func (c *Config) Level() observability.LogLevel {
	level, _ := observability.ParseLogLevel(c.LogLevel)
	return level
}

var writerProperties = map[string]tree.WriterOptions{
	"visibility":   tree.WriteVisibility,
	"flags":        tree.WriteFlags,
	"filepath":     tree.WriteFilePath,
	"itemtype":     tree.WriteItemType,
	"subtype":      tree.WriteSubType,
	"icons":        tree.WriteIcons,
	"displayorder": tree.WriteDisplayOrder,
	"all":          tree.WriteAllProperties,
	"none":         tree.WriteCaption,
}

// WriterOptions converts Tree.Properties to writer options.
func (c *Config) WriterOptions() (tree.WriterOptions, error) {
	return ParseWriterOptions(c.Tree.Properties)
}

// ParseWriterOptions converts property names to writer options.
func ParseWriterOptions(names []string) (tree.WriterOptions, error) {
	var opts tree.WriterOptions
	for _, name := range names {
		o, ok := writerProperties[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown tree property %q", name)
		}
		opts |= o
	}
	return opts, nil
}

// Writer returns a tree writer using the configured properties and indent.
func (c *Config) Writer() tree.Writer {
	opts, _ := c.WriterOptions()
	indent := tree.DefaultIndent
	if c.Tree.Indent > 0 {
		indent = strings.Repeat(" ", c.Tree.Indent)
	}
	return tree.Writer{Options: opts, Indent: indent}
}

// Classifier returns an implicit-import classifier for a project whose
// extensions directory is projectExtensionsPath, with configured overrides
// applied over the environment.
func (c *Config) Classifier(projectExtensionsPath string) imports.Classifier {
	cl := imports.NewClassifier(projectExtensionsPath)
	if c.Imports.ProgramFiles != "" {
		cl.ProgramFiles = c.Imports.ProgramFiles
	}
	if c.Imports.ProgramFilesX86 != "" {
		cl.ProgramFilesX86 = c.Imports.ProgramFilesX86
	}
	if c.Imports.Windows != "" {
		cl.Windows = c.Imports.Windows
	}
	return cl
}

// TracerConfig returns the tracing setup for this configuration.
func (c *Config) TracerConfig(version string) observability.TracerConfig {
	tc := observability.DefaultTracerConfig()
	if version != "" {
		tc.ServiceVersion = version
	}
	if c.Tracing.Exporter != "" {
		tc.ExporterType = c.Tracing.Exporter
	}
	tc.OTLPEndpoint = c.Tracing.Endpoint
	tc.SamplingRate = c.Tracing.SamplingRate
	return tc
}
