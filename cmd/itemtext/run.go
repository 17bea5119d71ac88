package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	itemtext "github.com/alnah/go-itemtext"
	"github.com/alnah/go-itemtext/internal/config"
	"github.com/alnah/go-itemtext/internal/hints"
	"github.com/alnah/go-itemtext/internal/logging"
	"github.com/alnah/go-itemtext/internal/ocr"
	"github.com/alnah/go-itemtext/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input file specified")
	ErrWriteOutput    = errors.New("failed to write output")
	ErrItemsSkipped   = errors.New("items skipped")
	ErrUnknownCommand = errors.New("unknown command")
)

// runMain dispatches commands and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 1 {
		switch args[1] {
		case "doctor":
			return runDoctorCmd(args[2:], env)
		case "version", "--version":
			fmt.Fprintf(env.Stdout, "itemtext %s\n", Version)
			return ExitSuccess
		case "help":
			return runHelp(args[2:], env)
		}
	}

	flags, err := parseRunFlags(args[1:], env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cfg, err := resolveConfig(flags, env)
	if err == nil {
		err = runPrepare(ctx, cfg, flags.common.quiet, env)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, ocrLanguage(cfg)))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runPrepare reads, aggregates and optionally converts the input, then
// prints the resulting problems.
func runPrepare(ctx context.Context, cfg *config.Config, quiet bool, env *Environment) error {
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: env.Stderr,
	})

	if cfg.Input.File == "" {
		return ErrNoInput
	}

	start := time.Now()
	rows, err := itemtext.ReadRowsFile(cfg.Input.File)
	if err != nil {
		return err
	}
	records, err := itemtext.Aggregate(rows)
	if err != nil {
		return err
	}
	logger.Info().
		Str("file", cfg.Input.File).
		Int("rows", len(rows)).
		Int("items", len(records)).
		Msg("rows aggregated")

	var pool *itemtext.PipelinePool
	if cfg.Converter.Enabled {
		pool, err = newPool(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := pool.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing browsers")
			}
		}()
	}

	bar := newProgressBar(len(records), env.Stderr, cfg.Converter.Enabled && !quiet)
	preparer := itemtext.NewPreparer(pool, itemtext.PrepareOptions{
		Grade:           cfg.Grade,
		Convert:         cfg.Converter.Enabled,
		KeepAssets:      cfg.Converter.KeepAssets,
		ContinueOnError: cfg.ContinueOnError,
		Progress:        func() { _ = bar.Add(1) },
	}, logger)

	batch, err := preparer.Prepare(ctx, records)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if err := writeProblems(env.Stdout, cfg.Output.Format, batch.Problems); err != nil {
		return err
	}

	logger.Info().
		Int("problems", len(batch.Problems)).
		Int("skipped", len(batch.Skipped)).
		Dur("duration", time.Since(start)).
		Msg("done")

	if len(batch.Skipped) > 0 {
		ids := make([]string, len(batch.Skipped))
		for i, s := range batch.Skipped {
			ids[i] = s.ItemID
		}
		return fmt.Errorf("%w: %s", ErrItemsSkipped, strings.Join(ids, ", "))
	}
	return nil
}

// resolveConfig layers CLI flags > env vars > config file > defaults.
func resolveConfig(flags *runFlags, env *Environment) (*config.Config, error) {
	loadDotEnv(env.Stderr, env.DotEnv)
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPool builds the pipeline pool for conversion runs.
func newPool(cfg *config.Config, logger zerolog.Logger) (*itemtext.PipelinePool, error) {
	assets, err := itemtext.NewAssetManager(cfg.Converter.OutputDir, logger)
	if err != nil {
		return nil, err
	}

	opts := pipelineOptions(cfg, logger)
	size := itemtext.ResolvePoolSize(cfg.Workers)
	logger.Debug().
		Int("workers", size).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Str("assets", assets.Dir()).
		Msg("pipeline pool ready")

	return itemtext.NewPipelinePool(size, func() *itemtext.Pipeline {
		return itemtext.NewPipeline(assets, opts...)
	}), nil
}

// pipelineOptions maps validated config onto pipeline options.
func pipelineOptions(cfg *config.Config, logger zerolog.Logger) []itemtext.Option {
	return []itemtext.Option{
		itemtext.WithRenderTimeout(cfg.RenderTimeout()),
		itemtext.WithOCRTimeout(cfg.OCRTimeout()),
		itemtext.WithSettle(cfg.RenderSettle()),
		itemtext.WithViewport(cfg.Render.Width, cfg.Render.Height, cfg.Render.Scale),
		itemtext.WithLanguage(cfg.OCR.Language),
		itemtext.WithPageSegMode(ocr.PageSegMode(cfg.OCR.PageSegMode)),
		itemtext.WithLogger(logger),
	}
}

// newProgressBar returns a bar on w, or a silent one when disabled.
func newProgressBar(total int, w io.Writer, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// writeProblems prints problems in the requested format.
func writeProblems(w io.Writer, format string, problems []itemtext.Problem) error {
	if problems == nil {
		problems = []itemtext.Problem{}
	}

	var err error
	switch format {
	case config.FormatYAML:
		err = yamlutil.Encode(w, problems)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(problems)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// ocrLanguage returns the configured OCR language, falling back to the
// environment and the default when the config never resolved.
func ocrLanguage(cfg *config.Config) string {
	if cfg != nil && cfg.OCR.Language != "" {
		return cfg.OCR.Language
	}
	if lang := loadEnvConfig().Language; lang != "" {
		return lang
	}
	return config.DefaultLanguage
}

// hintFor returns an actionable hint for err, or "". lang is the OCR
// language the run asked for.
func hintFor(err error, lang string) string {
	switch {
	case errors.Is(err, itemtext.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ocr.ErrNotEnabled), errors.Is(err, itemtext.ErrOCR):
		return hints.ForOCR(ocr.Enabled, lang)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("itemtext"))
	case errors.Is(err, itemtext.ErrMissingColumn):
		return hints.ForMissingColumn(itemtext.RequiredColumns)
	case errors.Is(err, itemtext.ErrAssetWrite):
		return hints.ForOutputDirectory()
	}
	return ""
}
