package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itemtext [flags] [file.csv]")
	fmt.Fprintln(w, "       itemtext <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check Chrome, OCR, and system setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command, reads problem rows from a CSV file and prints one")
	fmt.Fprintln(w, "problem per item. Run 'itemtext help run' for flags.")
}

// printRunUsage prints usage for the default run.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itemtext [flags] [file.csv]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Aggregate CSV problem rows into problems, optionally converting HTML")
	fmt.Fprintln(w, "fields to plain text with headless Chrome and Tesseract OCR.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -f, --file <path>         CSV file with problem rows")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --grade <n>           Grade attached to every problem (default 7)")
	fmt.Fprintln(w, "      --format <s>          Output format: json, yaml (default json)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --enable-converter    Convert markup fields to text")
	fmt.Fprintln(w, "      --output-dir <path>   Directory for rendered images (default temp)")
	fmt.Fprintln(w, "      --lang <s>            Tesseract language (default jpn)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render and OCR timeout per field (e.g. 30s)")
	fmt.Fprintln(w, "      --keep-assets         Keep rendered images")
	fmt.Fprintln(w, "      --continue-on-error   Skip failing items (exit code 1 if any)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ITEMTEXT_CONFIG, ITEMTEXT_FILE, ITEMTEXT_OUTPUT_DIR, ITEMTEXT_LANG,")
	fmt.Fprintln(w, "  ITEMTEXT_TIMEOUT, ITEMTEXT_WORKERS, ITEMTEXT_GRADE, ITEMTEXT_LOG_LEVEL")
	fmt.Fprintln(w, "  Values from ./.env are loaded first. Flags override environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general, 2 usage/config/data, 3 I/O, 4 browser, 5 OCR")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itemtext doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome, Tesseract, and the temp directory are usable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json    Output results as JSON")
}

// runHelp prints help for a command and returns an exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: itemtext version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	default:
		fmt.Fprintf(env.Stderr, "error: %v: %s\n", ErrUnknownCommand, args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
