package markup

import (
	"strings"
	"testing"
)

func TestHasMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"2+2=?", false},
		{"", false},
		{"x > 3", false},
		{"<p>2+2</p>", true},
		{"a < b", true},
	}

	for _, tt := range tests {
		if got := HasMarkup(tt.in); got != tt.want {
			t.Errorf("HasMarkup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "balanced markup unchanged",
			in:   "<p><span>計算しなさい。</span></p>",
			want: "<p><span>計算しなさい。</span></p>",
		},
		{
			name: "unclosed tag is closed",
			in:   "<div><b>bold",
			want: "<div><b>bold</b></div>",
		},
		{
			name: "script removed",
			in:   `<p>ok</p><script>alert(1)</script>`,
			want: "<p>ok</p>",
		},
		{
			name: "nested iframe removed",
			in:   `<div>a<iframe src="http://x"></iframe>b</div>`,
			want: "<div>ab</div>",
		},
		{
			name: "bare less-than escaped",
			in:   "a < b",
			want: "a &lt; b",
		},
		{
			name: "mathml kept",
			in:   `<math><mn>0</mn><mo>−</mo><mn>3</mn></math>`,
			want: `<math><mn>0</mn><mo>−</mo><mn>3</mn></math>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	page, err := Page("", "<p>説明</p>", "2+2=?")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	checks := []string{
		"<!DOCTYPE html>",
		`<html lang="ja">`,
		`<meta charset="utf-8">`,
		"Noto Sans JP",
		"<div><p>説明</p></div>",
		"<div>2+2=?</div>",
	}
	for _, want := range checks {
		if !strings.Contains(page, want) {
			t.Errorf("Page() missing %q in:\n%s", want, page)
		}
	}
}

func TestPage_Lang(t *testing.T) {
	t.Parallel()

	page, err := Page("en", "<p>x</p>")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if !strings.Contains(page, `<html lang="en">`) {
		t.Errorf("Page() did not set lang: %s", page)
	}
}
