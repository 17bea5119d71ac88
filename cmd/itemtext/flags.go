package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-itemtext/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// runFlags holds all flags for a preparation run.
type runFlags struct {
	common          commonFlags
	file            string
	grade           int
	enableConverter bool
	outputDir       string
	lang            string
	workers         int
	timeout         time.Duration
	keepAssets      bool
	continueOnError bool
	format          string

	// set records the flags given on the command line.
	set map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timings")
}

// parseRunFlags parses run flags. usage is written on -h.
func parseRunFlags(args []string, usage io.Writer) (*runFlags, error) {
	fs := flag.NewFlagSet("itemtext", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &runFlags{}

	fs.StringVarP(&f.file, "file", "f", "", "CSV file with problem rows")
	fs.IntVar(&f.grade, "grade", config.DefaultGrade, "grade attached to every problem")
	fs.BoolVar(&f.enableConverter, "enable-converter", false, "convert markup fields to text (Chrome + OCR)")
	fs.StringVar(&f.outputDir, "output-dir", config.DefaultOutputDir, "directory for rendered images")
	fs.StringVar(&f.lang, "lang", config.DefaultLanguage, "Tesseract language, e.g. jpn or jpn+eng")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "render and OCR timeout per field (e.g. 30s)")
	fs.BoolVar(&f.keepAssets, "keep-assets", false, "keep rendered images after conversion")
	fs.BoolVar(&f.continueOnError, "continue-on-error", false, "skip items whose conversion fails")
	fs.StringVar(&f.format, "format", config.FormatJSON, "output format: json, yaml")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printRunUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if fs.NArg() > 0 && f.file == "" {
		f.file = fs.Arg(0)
		f.set["file"] = true
	}
	return f, nil
}

// mergeFlags applies explicitly set flags to cfg. CLI values win.
func mergeFlags(f *runFlags, cfg *config.Config) {
	if f.set["file"] {
		cfg.Input.File = f.file
	}
	if f.set["grade"] {
		cfg.Grade = f.grade
	}
	if f.set["enable-converter"] {
		cfg.Converter.Enabled = f.enableConverter
	}
	if f.set["output-dir"] {
		cfg.Converter.OutputDir = f.outputDir
	}
	if f.set["lang"] {
		cfg.OCR.Language = f.lang
	}
	if f.set["workers"] {
		cfg.Workers = f.workers
	}
	if f.set["timeout"] {
		cfg.Render.Timeout = f.timeout.String()
		cfg.OCR.Timeout = f.timeout.String()
	}
	if f.set["keep-assets"] {
		cfg.Converter.KeepAssets = f.keepAssets
	}
	if f.set["continue-on-error"] {
		cfg.ContinueOnError = f.continueOnError
	}
	if f.set["format"] {
		cfg.Output.Format = f.format
	}
	switch {
	case f.common.verbose:
		cfg.Log.Level = "debug"
	case f.common.quiet:
		cfg.Log.Level = "error"
	}
}
