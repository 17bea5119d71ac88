package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"
)

// Container and CI detection read the process environment; tests that set
// variables use t.Setenv and therefore cannot run in parallel.

func clearDoctorEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"ITEMTEXT_CONTAINER", "container", "KUBERNETES_SERVICE_HOST",
		"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI",
		"ITEMTEXT_LANG", "ROD_NO_SANDBOX",
	} {
		t.Setenv(v, "")
	}
}

func fakeProbe(enabled bool, langs []string, err error) ocrProbe {
	return ocrProbe{
		enabled:   enabled,
		version:   func() string { return "5.3.0" },
		languages: func() ([]string, error) { return langs, err },
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - JSON structure and exit code consistency
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	code := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}

	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", result.Env.OS, result.Env.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if result.OCR.Language == "" {
		t.Error("ocr.language should never be empty")
	}

	switch result.Status {
	case statusErrors:
		if code != ExitGeneral {
			t.Errorf("exit code = %d for errors status, want %d", code, ExitGeneral)
		}
	case statusReady, statusWarnings:
		if code != ExitSuccess {
			t.Errorf("exit code = %d for %s status, want %d", code, result.Status, ExitSuccess)
		}
	default:
		t.Errorf("unexpected status %q", result.Status)
	}
}

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	runDoctorCmd(nil, env)

	out := stdout.String()
	for _, section := range []string{"itemtext doctor", "Chrome/Chromium", "OCR", "Environment", "System", "Status:"} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing section %q", section)
		}
	}
	if !strings.Contains(out, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Error("output missing platform")
	}
}

func TestRunDoctorCmd_Help(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	if code := runDoctorCmd([]string{"--help"}, env); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout.String(), "--json") {
		t.Errorf("help output = %q, want --json flag listed", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctor_OCR - Tesseract availability and language checks
// ---------------------------------------------------------------------------

func TestRunDoctor_OCR(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		probe     ocrProbe
		wantError string
		wantWarn  string
	}{
		{
			name:  "language installed",
			probe: fakeProbe(true, []string{"eng", "jpn", "osd"}, nil),
		},
		{
			name:      "default language missing",
			probe:     fakeProbe(true, []string{"eng"}, nil),
			wantError: `"jpn" not installed`,
		},
		{
			name:      "one of combined languages missing",
			lang:      "jpn+eng",
			probe:     fakeProbe(true, []string{"jpn"}, nil),
			wantError: `"eng" not installed`,
		},
		{
			name:      "language listing fails",
			probe:     fakeProbe(true, nil, errors.New("no tessdata")),
			wantError: "languages unavailable",
		},
		{
			name:     "built without ocr",
			probe:    fakeProbe(false, nil, nil),
			wantWarn: "-tags ocr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDoctorEnv(t)
			if tt.lang != "" {
				t.Setenv("ITEMTEXT_LANG", tt.lang)
			}

			result := runDoctor(tt.probe)

			if tt.wantError == "" && slices.ContainsFunc(result.Errors, isOCRMessage) {
				t.Errorf("unexpected OCR errors: %v", result.Errors)
			}
			if tt.wantError != "" && !containsSubstring(result.Errors, tt.wantError) {
				t.Errorf("errors = %v, want one containing %q", result.Errors, tt.wantError)
			}
			if tt.wantError != "" && result.Status != statusErrors {
				t.Errorf("status = %q, want %q", result.Status, statusErrors)
			}
			if tt.wantWarn != "" && !containsSubstring(result.Warnings, tt.wantWarn) {
				t.Errorf("warnings = %v, want one containing %q", result.Warnings, tt.wantWarn)
			}
			if result.OCR.Enabled != tt.probe.enabled {
				t.Errorf("ocr.enabled = %v, want %v", result.OCR.Enabled, tt.probe.enabled)
			}
		})
	}
}

func isOCRMessage(s string) bool {
	return strings.Contains(s, "Tesseract")
}

func containsSubstring(list []string, sub string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.Contains(s, sub) })
}

// ---------------------------------------------------------------------------
// TestRunDoctor_Environment - Container and CI detection
// ---------------------------------------------------------------------------

func TestRunDoctor_ContainerDetection(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envVal   string
		wantHint string
	}{
		{"explicit override", "ITEMTEXT_CONTAINER", "1", "ITEMTEXT_CONTAINER=1"},
		{"kubernetes", "KUBERNETES_SERVICE_HOST", "10.0.0.1", "KUBERNETES_SERVICE_HOST"},
		{"podman", "container", "podman", "container=podman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDoctorEnv(t)
			t.Setenv(tt.envVar, tt.envVal)

			result := runDoctor(fakeProbe(false, nil, nil))

			if !result.Env.Container {
				t.Fatal("container not detected")
			}
			// /.dockerenv takes precedence over env signals except the override.
			if result.Env.ContainerHint != tt.wantHint && result.Env.ContainerHint != "/.dockerenv" {
				t.Errorf("hint = %q, want %q", result.Env.ContainerHint, tt.wantHint)
			}
			if !containsSubstring(result.Warnings, "ROD_NO_SANDBOX") {
				t.Errorf("warnings = %v, want sandbox warning", result.Warnings)
			}
		})
	}
}

func TestRunDoctor_CIDetection(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		t.Run(v, func(t *testing.T) {
			clearDoctorEnv(t)
			t.Setenv(v, "true")
			t.Setenv("ROD_NO_SANDBOX", "1")

			result := runDoctor(fakeProbe(false, nil, nil))

			if !result.Env.CI {
				t.Errorf("CI not detected from %s", v)
			}
			if containsSubstring(result.Warnings, "ROD_NO_SANDBOX") {
				t.Errorf("unexpected sandbox warning with ROD_NO_SANDBOX=1: %v", result.Warnings)
			}
		})
	}
}

func TestRunDoctor_BrowserBinMissing(t *testing.T) {
	clearDoctorEnv(t)
	t.Setenv("ROD_BROWSER_BIN", "/nonexistent/chrome")

	result := runDoctor(fakeProbe(false, nil, nil))

	if result.Chrome.Found {
		t.Error("chrome.found = true for missing binary")
	}
	if !containsSubstring(result.Errors, "/nonexistent/chrome") {
		t.Errorf("errors = %v, want missing path reported", result.Errors)
	}
	if result.Status != statusErrors {
		t.Errorf("status = %q, want %q", result.Status, statusErrors)
	}
}

func TestRunDoctor_TempWritable(t *testing.T) {
	clearDoctorEnv(t)
	t.Setenv("TMPDIR", t.TempDir())

	result := runDoctor(fakeProbe(false, nil, nil))

	if !result.System.TempWritable {
		t.Errorf("temp_writable = false, errors: %v", result.Errors)
	}
}

func TestPrintDoctorResult_Statuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		want   string
	}{
		{statusReady, "Status: Ready"},
		{statusWarnings, "Status: Ready with warnings"},
		{statusErrors, "Status: Not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, &doctorResult{
				Status:   tt.status,
				Warnings: []string{"w1"},
				Errors:   []string{"e1"},
			})
			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if !strings.Contains(out, "w1") || !strings.Contains(out, "e1") {
				t.Errorf("output missing messages:\n%s", out)
			}
		})
	}
}
