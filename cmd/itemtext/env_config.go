package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-itemtext/internal/config"
)

// envPrefix marks the environment variables read by the CLI.
const envPrefix = "ITEMTEXT_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // ITEMTEXT_CONFIG: config file name or path
	File       string        // ITEMTEXT_FILE: CSV input
	OutputDir  string        // ITEMTEXT_OUTPUT_DIR: rendered asset directory
	Language   string        // ITEMTEXT_LANG: Tesseract language
	Timeout    time.Duration // ITEMTEXT_TIMEOUT: render and OCR timeout
	Workers    int           // ITEMTEXT_WORKERS: parallel workers
	Grade      int           // ITEMTEXT_GRADE: grade attached to problems
	LogLevel   string        // ITEMTEXT_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid ITEMTEXT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"ITEMTEXT_CONFIG":     true,
	"ITEMTEXT_FILE":       true,
	"ITEMTEXT_OUTPUT_DIR": true,
	"ITEMTEXT_LANG":       true,
	"ITEMTEXT_TIMEOUT":    true,
	"ITEMTEXT_WORKERS":    true,
	"ITEMTEXT_GRADE":      true,
	"ITEMTEXT_LOG_LEVEL":  true,
	"ITEMTEXT_CONTAINER":  true, // read by doctor
}

// loadDotEnv loads the given .env files into the process environment.
// Variables already set win over file values. Missing files are skipped;
// malformed ones produce a warning.
func loadDotEnv(w io.Writer, files []string) {
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		fmt.Fprintf(w, "warning: ignoring %s: %v\n", f, err)
	}
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("ITEMTEXT_CONFIG"),
		File:       os.Getenv("ITEMTEXT_FILE"),
		OutputDir:  os.Getenv("ITEMTEXT_OUTPUT_DIR"),
		Language:   os.Getenv("ITEMTEXT_LANG"),
		LogLevel:   os.Getenv("ITEMTEXT_LOG_LEVEL"),
	}

	if timeout := os.Getenv("ITEMTEXT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("ITEMTEXT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if grade := os.Getenv("ITEMTEXT_GRADE"); grade != "" {
		if n, err := strconv.Atoi(grade); err == nil && n > 0 {
			cfg.Grade = n
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized ITEMTEXT_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.File != "" {
		cfg.Input.File = env.File
	}
	if env.OutputDir != "" {
		cfg.Converter.OutputDir = env.OutputDir
	}
	if env.Language != "" {
		cfg.OCR.Language = env.Language
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout.String()
		cfg.OCR.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Grade > 0 {
		cfg.Grade = env.Grade
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
