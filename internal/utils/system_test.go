package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestGetUsername(t *testing.T) {
	name, err := GetUsername()
	if err != nil {
		t.Skipf("No current user available: %v", err)
	}
	if name == "" {
		t.Error("Expected a non-empty username")
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("No home directory: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Home", "~", homeDir},
		{"UnderHome", "~/vault/db", filepath.Join(homeDir, "vault", "db")},
		{"Relative", "docs/../notes", filepath.Join(wd, "notes")},
		{"Absolute", "/tmp/x", filepath.Clean("/tmp/x")},
		{"TildeInName", "~backup", filepath.Join(wd, "~backup")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpandPath(tc.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) failed: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ExpandPath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatPaths(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	got := FormatPaths([]string{"a.txt", "b/c.txt"})
	if got != "\n    - a.txt\n    - b/c.txt\n" {
		t.Errorf("Unexpected formatting: %q", got)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "file") != "file" || Plural(0, "file") != "files" || Plural(2, "file") != "files" {
		t.Error("Plural returned the wrong form")
	}
}

func TestConfirmCode(t *testing.T) {
	t.Run("Matching", func(t *testing.T) {
		var out bytes.Buffer
		// The code is only known after the prompt is written, so feed the
		// answer through a reader that reads it back from the prompt.
		ok, err := ConfirmCode(&echoReader{prompt: &out}, &out)
		if err != nil {
			t.Fatalf("ConfirmCode failed: %v", err)
		}
		if !ok {
			t.Errorf("Expected confirmation to succeed, prompt was %q", out.String())
		}
	})

	t.Run("Mismatch", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := ConfirmCode(strings.NewReader("000000\n"), &out)
		if err != nil {
			t.Fatalf("ConfirmCode failed: %v", err)
		}
		if ok {
			t.Error("Expected confirmation to fail for a wrong code")
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		ok, err := ConfirmCode(strings.NewReader(""), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("ConfirmCode failed: %v", err)
		}
		if ok {
			t.Error("Expected confirmation to fail without input")
		}
	})
}

var codePattern = regexp.MustCompile(`[1-9]{6}`)

// echoReader answers with the code printed in the prompt.
type echoReader struct {
	prompt *bytes.Buffer
	done   bool
}

func (r *echoReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	return copy(p, codePattern.FindString(r.prompt.String())+"\n"), nil
}
