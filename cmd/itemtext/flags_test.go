package main

import (
	"errors"
	"io"
	"testing"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-itemtext/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseRunFlags - Flag parsing and positional file
// ---------------------------------------------------------------------------

func TestParseRunFlags(t *testing.T) {
	t.Parallel()

	f, err := parseRunFlags([]string{
		"--enable-converter", "--lang", "eng", "-w", "4", "-t", "12s",
		"--keep-assets", "--continue-on-error", "--format", "yaml", "--grade", "8",
		"items.csv",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseRunFlags() error = %v", err)
	}

	if f.file != "items.csv" || !f.set["file"] {
		t.Errorf("file = %q (set=%v), want positional items.csv", f.file, f.set["file"])
	}
	if !f.enableConverter || !f.keepAssets || !f.continueOnError {
		t.Errorf("bool flags not parsed: %+v", f)
	}
	if f.lang != "eng" || f.workers != 4 || f.timeout != 12*time.Second || f.format != "yaml" || f.grade != 8 {
		t.Errorf("value flags not parsed: %+v", f)
	}
	if f.set["output-dir"] {
		t.Error("output-dir reported as set without being given")
	}
}

func TestParseRunFlags_FileFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	f, err := parseRunFlags([]string{"-f", "a.csv", "b.csv"}, io.Discard)
	if err != nil {
		t.Fatalf("parseRunFlags() error = %v", err)
	}
	if f.file != "a.csv" {
		t.Errorf("file = %q, want a.csv", f.file)
	}
}

func TestParseRunFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantHelp bool
	}{
		{"help", []string{"--help"}, true},
		{"unknown flag", []string{"--bogus"}, false},
		{"bad duration", []string{"--timeout", "soon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseRunFlags(tt.args, io.Discard)
			if err == nil {
				t.Fatal("parseRunFlags() expected error")
			}
			if errors.Is(err, flag.ErrHelp) != tt.wantHelp {
				t.Errorf("errors.Is(err, ErrHelp) = %v, want %v", !tt.wantHelp, tt.wantHelp)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Only explicit flags override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Grade = 9
	cfg.OCR.Language = "eng"
	cfg.Converter.OutputDir = "/var/assets"

	f, err := parseRunFlags([]string{"--lang", "jpn", "-t", "5s", "-v"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	mergeFlags(f, cfg)

	if cfg.OCR.Language != "jpn" {
		t.Errorf("OCR.Language = %q, want jpn", cfg.OCR.Language)
	}
	if cfg.Render.Timeout != "5s" || cfg.OCR.Timeout != "5s" {
		t.Errorf("timeouts = %s/%s, want 5s/5s", cfg.Render.Timeout, cfg.OCR.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Defaults of unset flags must not clobber config values.
	if cfg.Grade != 9 {
		t.Errorf("Grade = %d, want 9", cfg.Grade)
	}
	if cfg.Converter.OutputDir != "/var/assets" {
		t.Errorf("OutputDir = %q, want /var/assets", cfg.Converter.OutputDir)
	}
}

func TestMergeFlags_Quiet(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	f, err := parseRunFlags([]string{"-q"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	mergeFlags(f, cfg)

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}
