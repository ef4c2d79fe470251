package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/kdbx"
)

func TestPasswordManagerImportJSON(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	if _, err := runCLI(t, "pm", "add", "github", "--generate"); err != nil {
		t.Fatal(err)
	}

	input := filepath.Join(t.TempDir(), "old.json")
	writeTestFile(t, input, `{"github": "from-file", "mail": "m-pass"}`)

	output, err := runCLI(t, "pm", "import", input, "--dry-run")
	if err != nil {
		t.Fatalf("import --dry-run failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Would import 1 credential") || !strings.Contains(output, "--replace") {
		t.Errorf("Unexpected dry-run output: %s", output)
	}
	if output, _ := runCLI(t, "pm", "count"); strings.TrimSpace(output) != "1 credential" {
		t.Errorf("Dry run changed the vault: %q", output)
	}

	output, err = runCLI(t, "pm", "import", input, "--replace")
	if err != nil {
		t.Fatalf("import failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Imported 1 credential, replaced 1") {
		t.Errorf("Unexpected import output: %s", output)
	}

	output, err = runCLI(t, "pm", "get", "github")
	if err != nil || strings.TrimSpace(output) != "from-file" {
		t.Errorf("Expected replaced secret, got %q (err=%v)", output, err)
	}
}

func TestPasswordManagerImportKeePass(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	input := filepath.Join(t.TempDir(), "keepass.kdbx")
	if err := kdbx.Export(input, "kp-pass", []kdbx.Record{{Title: "wifi", Password: "w1f1"}}); err != nil {
		t.Fatal(err)
	}

	t.Setenv(configs.EnvImportPassword, "kp-pass")
	output, err := runCLI(t, "pm", "import", input)
	if err != nil {
		t.Fatalf("import failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "pm", "get", "wifi")
	if err != nil || strings.TrimSpace(output) != "w1f1" {
		t.Errorf("Expected imported secret, got %q (err=%v)", output, err)
	}
}

func TestPasswordManagerImportInvalid(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	input := filepath.Join(t.TempDir(), "passwords.csv")
	writeTestFile(t, input, "github,hunter2")

	_, err := runCLI(t, "pm", "import", input)
	if kerrors.ExitCode(err) != kerrors.ExitInvalidInput {
		t.Errorf("Expected exit code %d, got %d (%v)", kerrors.ExitInvalidInput, kerrors.ExitCode(err), err)
	}
}

func TestPasswordManagerBackup(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	if _, err := runCLI(t, "pm", "add", "github", "--generate"); err != nil {
		t.Fatal(err)
	}

	backup := filepath.Join(t.TempDir(), "vault-backup.db")
	output, err := runCLI(t, "pm", "backup", backup)
	if err != nil {
		t.Fatalf("backup failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Backed up 1 credential") {
		t.Errorf("Unexpected backup output: %s", output)
	}

	output, err = runCLI(t, "--vault", backup, "pm", "list")
	if err != nil || !strings.Contains(output, "github") {
		t.Errorf("Backup does not list github (err=%v): %s", err, output)
	}

	_, err = runCLI(t, "pm", "backup", backup)
	if kerrors.ExitCode(err) != kerrors.ExitIO {
		t.Errorf("Expected exit code %d for an existing backup, got %d", kerrors.ExitIO, kerrors.ExitCode(err))
	}
}
