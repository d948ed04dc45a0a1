package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/isjson/internal/classifier"
	"github.com/mcncl/isjson/internal/codec"
	"github.com/mcncl/isjson/internal/errors"
	"gopkg.in/yaml.v3"
)

// Report styles understood by the report package
var ReportStyles = []string{"text", "json", "yaml"}

// Log backends understood by the logging package
var LogBackends = []string{"zap", "logrus", "none"}

// Config represents the complete configuration for isjson
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Report     ReportConfig     `yaml:"report"`
	Emit       EmitConfig       `yaml:"emit"`
	Shape      string           `yaml:"shape"`
	Log        LogConfig        `yaml:"log"`
}

// InputConfig controls how documents are decoded
type InputConfig struct {
	Format string `yaml:"format"` // auto, json, yaml, cbor, msgpack, protojson
}

// ClassifierConfig controls what counts as a JSON value
type ClassifierConfig struct {
	AllowNonFinite bool `yaml:"allow_non_finite"`
	MaxDepth       int  `yaml:"max_depth"`
	MaxErrors      int  `yaml:"max_errors"`
}

// ReportConfig controls the validation report
type ReportConfig struct {
	Format string `yaml:"format"` // text, json, yaml
}

// EmitConfig controls re-encoding of valid documents
type EmitConfig struct {
	Format        string `yaml:"format"`
	Deterministic bool   `yaml:"deterministic"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Backend string `yaml:"backend"`
	Level   string `yaml:"level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Input: InputConfig{
			Format: string(codec.FormatAuto),
		},
		Classifier: ClassifierConfig{
			AllowNonFinite: false,
			MaxDepth:       0,
			MaxErrors:      0,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Emit: EmitConfig{
			Deterministic: true,
		},
		Log: LogConfig{
			Backend: "zap",
			Level:   "warn",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".isjson.yml", ".isjson.yaml", "isjson.yml", "isjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that every named format and backend is known
func (c *Config) Validate() error {
	if _, err := codec.ParseFormat(c.Input.Format); err != nil {
		return errors.NewConfigError(fmt.Sprintf("invalid input.format '%s'", c.Input.Format), err)
	}
	if c.Emit.Format != "" {
		f, err := codec.ParseFormat(c.Emit.Format)
		if err != nil || f == codec.FormatAuto {
			return errors.NewConfigError(fmt.Sprintf("invalid emit.format '%s'", c.Emit.Format), errors.ErrUnknownFormat)
		}
	}
	if !contains(ReportStyles, c.Report.Format) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid report.format '%s', expected one of %s", c.Report.Format, strings.Join(ReportStyles, ", ")),
			nil,
		)
	}
	if !contains(LogBackends, c.Log.Backend) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid log.backend '%s', expected one of %s", c.Log.Backend, strings.Join(LogBackends, ", ")),
			nil,
		)
	}
	if c.Classifier.MaxDepth < 0 || c.Classifier.MaxErrors < 0 {
		return errors.NewConfigError("classifier limits must not be negative", nil)
	}
	return nil
}

// ClassifierOptions returns the classifier options this config describes
func (c *Config) ClassifierOptions() classifier.Options {
	return classifier.Options{
		AllowNonFinite: c.Classifier.AllowNonFinite,
		MaxDepth:       c.Classifier.MaxDepth,
		MaxErrors:      c.Classifier.MaxErrors,
	}
}

// Overrides holds values given on the command line. Zero values mean the
// flag was not set.
type Overrides struct {
	Format         string
	Report         string
	Shape          string
	Emit           string
	AllowNonFinite bool
	MaxDepth       int
	Debug          bool
}

// MergeConfigs applies CLI overrides onto a base config
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base

	if override.Format != "" {
		merged.Input.Format = override.Format
	}
	if override.Report != "" {
		merged.Report.Format = override.Report
	}
	if override.Shape != "" {
		merged.Shape = override.Shape
	}
	if override.Emit != "" {
		merged.Emit.Format = override.Emit
	}
	if override.MaxDepth > 0 {
		merged.Classifier.MaxDepth = override.MaxDepth
	}

	// Boolean flags can only switch behavior on
	if override.AllowNonFinite {
		merged.Classifier.AllowNonFinite = true
	}
	if override.Debug {
		merged.Log.Level = "debug"
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, overrides)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
