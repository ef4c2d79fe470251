package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	color.NoColor = false

	result := Code.Sprint("xpm generate")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "xpm generate", "`xpm generate`"},
		{"Path has no decoration", Path, "docs/a.txt", "docs/a.txt"},
		{"Flag has no decoration", Flag, "--workers", "--workers"},
		{"Highlight adds quotes", Highlight, "github", "'github'"},
		{"Muted adds parentheses", Muted, "2 days ago", "(2 days ago)"},
		{"Secret is bare", Secret, "hunter2", "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatterSprintf(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	if got := Code.Sprintf("xpm %s", "version"); got != "`xpm version`" {
		t.Errorf("Code.Sprintf() = %q", got)
	}
}

func TestMarks(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := map[string]string{
		Done("added"):   "✓ added",
		Fail("failed"):  "✗ failed",
		Hint("run it"):  "→ run it",
		Warn("careful"): "⚠ careful",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestEnsureNewline(t *testing.T) {
	if EnsureNewline("a") != "a\n" || EnsureNewline("a\n") != "a\n" || EnsureNewline("") != "\n" {
		t.Error("EnsureNewline returned unexpected output")
	}
}

func TestNoColorFunction(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	if !noColor() {
		t.Error("noColor() should return true when NO_COLOR is set")
	}
	os.Unsetenv("NO_COLOR")

	originalNoColor := color.NoColor
	color.NoColor = true
	if !noColor() {
		t.Error("noColor() should return true when color.NoColor is true")
	}
	color.NoColor = originalNoColor
}
