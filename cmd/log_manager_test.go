package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PolarWolf314/xpm/internal/audit"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

func TestLogManagerShow(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	output, err := runCLI(t, "log-manager", "show")
	if err != nil || !strings.Contains(output, "No activity log found") {
		t.Errorf("Expected missing log notice (err=%v): %s", err, output)
	}

	if _, err := runCLI(t, "password-manager", "add", "github", "--generate"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "password-manager", "get", "nope"); err == nil {
		t.Fatal("Expected get of a missing label to fail")
	}

	output, err = runCLI(t, "log-manager", "show")
	if err != nil {
		t.Fatalf("log-manager show failed: %v", err)
	}
	for _, want := range []string{audit.OpGenerate, audit.OpAdd, "github", "failed:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in log output: %s", want, output)
		}
	}

	output, err = runCLI(t, "log-manager", "show", "--failed", "--json")
	if err != nil {
		t.Fatalf("log-manager show --json failed: %v", err)
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if len(entries) != 1 || entries[0].Operation != audit.OpGet || entries[0].Label != "nope" {
		t.Errorf("Unexpected failed entries: %+v", entries)
	}

	output, err = runCLI(t, "log-manager", "show", "--oneline", "--operation", "add")
	if err != nil || strings.Count(strings.TrimSpace(output), "\n") != 0 {
		t.Errorf("Expected a single oneline entry (err=%v): %s", err, output)
	}

	_, err = runCLI(t, "log-manager", "show", "--since", "yesterday")
	if kerrors.ExitCode(err) != kerrors.ExitInvalidInput {
		t.Errorf("Expected exit code %d, got %d", kerrors.ExitInvalidInput, kerrors.ExitCode(err))
	}
}

func TestLogManagerClear(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	if _, err := runCLI(t, "generate"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "generate"); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, "log-manager", "clear", "--yes")
	if err != nil || !strings.Contains(output, "Removed 2 activity log entries") {
		t.Errorf("Unexpected clear output (err=%v): %s", err, output)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Operation != audit.OpClearLog {
		t.Errorf("Expected only the clear-log entry, got %+v", entries)
	}
}
