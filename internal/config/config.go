// Package config loads and validates the YAML configuration of the itemtext CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-itemtext/internal/fileutil"
	"github.com/alnah/go-itemtext/internal/logging"
	"github.com/alnah/go-itemtext/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory under the user config dir searched for named configs.
const appDir = "go-itemtext"

// Defaults mirror the reference rendering and OCR setup.
const (
	DefaultWidth       = 1024
	DefaultHeight      = 768
	DefaultScale       = 2.0
	DefaultSettle      = "5s"
	DefaultTimeout     = "30s"
	DefaultLanguage    = "jpn"
	DefaultPageSegMode = 6
	DefaultOutputDir   = "temp"
	DefaultGrade       = 7
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all configuration for a preparation run.
type Config struct {
	Input           InputConfig     `yaml:"input"`
	Grade           int             `yaml:"grade"`
	Workers         int             `yaml:"workers"`         // 0 = auto
	ContinueOnError bool            `yaml:"continueOnError"` // skip items whose conversion fails
	Converter       ConverterConfig `yaml:"converter"`
	Render          RenderConfig    `yaml:"render"`
	OCR             OCRConfig       `yaml:"ocr"`
	Output          OutputConfig    `yaml:"output"`
	Log             LogConfig       `yaml:"log"`
}

// InputConfig defines the CSV source.
type InputConfig struct {
	File string `yaml:"file"`
}

// ConverterConfig toggles markup-to-text conversion.
type ConverterConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputDir  string `yaml:"outputDir"`  // where rendered PNGs live (default: temp)
	KeepAssets bool   `yaml:"keepAssets"` // leave PNGs on disk for inspection
}

// RenderConfig defines the headless browser canvas.
type RenderConfig struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Scale   float64 `yaml:"scale"`   // device scale factor
	Settle  string  `yaml:"settle"`  // idle budget before capture, e.g. "5s"
	Timeout string  `yaml:"timeout"` // whole render call, e.g. "30s"
}

// OCRConfig defines Tesseract settings.
type OCRConfig struct {
	Language    string `yaml:"language"`
	PageSegMode int    `yaml:"pageSegMode"`
	Timeout     string `yaml:"timeout"`
}

// OutputConfig defines how prepared problems are printed.
type OutputConfig struct {
	Format string `yaml:"format"` // json or yaml
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Grade: DefaultGrade,
		Converter: ConverterConfig{
			OutputDir: DefaultOutputDir,
		},
		Render: RenderConfig{
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			Scale:   DefaultScale,
			Settle:  DefaultSettle,
			Timeout: DefaultTimeout,
		},
		OCR: OCRConfig{
			Language:    DefaultLanguage,
			PageSegMode: DefaultPageSegMode,
			Timeout:     DefaultTimeout,
		},
		Output: OutputConfig{Format: FormatJSON},
		Log:    LogConfig{Level: "info", Format: logging.FormatConsole},
	}
}

// Validate checks value ranges and enumerations.
// Called by LoadConfig, and again by the CLI after flags and env are merged.
func (c *Config) Validate() error {
	if c.Grade < 0 {
		return invalid("grade", "must not be negative, got %d", c.Grade)
	}
	if c.Workers < 0 {
		return invalid("workers", "must not be negative, got %d", c.Workers)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return invalid("render", "width and height must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.Scale <= 0 || c.Render.Scale > 4 {
		return invalid("render.scale", "must be in (0, 4], got %.2f", c.Render.Scale)
	}
	if _, err := parsePositive("render.settle", c.Render.Settle); err != nil {
		return err
	}
	if _, err := parsePositive("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if _, err := parsePositive("ocr.timeout", c.OCR.Timeout); err != nil {
		return err
	}
	if strings.TrimSpace(c.OCR.Language) == "" {
		return invalid("ocr.language", "must not be empty")
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return invalid("ocr.pageSegMode", "must be between 0 and 13, got %d", c.OCR.PageSegMode)
	}
	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return invalid("output.format", "must be json or yaml, got %q", c.Output.Format)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return invalid("log.level", "unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return invalid("log.format", "must be console or json, got %q", c.Log.Format)
	}
	if c.Converter.Enabled && strings.TrimSpace(c.Converter.OutputDir) == "" {
		return invalid("converter.outputDir", "required when converter is enabled")
	}
	return nil
}

// RenderTimeout returns the parsed render timeout. Call after Validate.
func (c *Config) RenderTimeout() time.Duration { return mustDuration(c.Render.Timeout) }

// RenderSettle returns the parsed settle budget. Call after Validate.
func (c *Config) RenderSettle() time.Duration { return mustDuration(c.Render.Settle) }

// OCRTimeout returns the parsed OCR timeout. Call after Validate.
func (c *Config) OCRTimeout() time.Duration { return mustDuration(c.OCR.Timeout) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func parsePositive(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalid(field, "%v", err)
	}
	if d <= 0 {
		return 0, invalid(field, "must be positive, got %s", s)
	}
	return d, nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, fmt.Sprintf(format, args...))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists where a named config is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
