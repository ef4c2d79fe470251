package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/secrets"
)

// lastLine returns the last non-empty line of output.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func TestPasswordManagerLifecycle(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	output, err := runCLI(t, "password-manager", "add", "github", "--generate", "--length", "20", "--preset", "nosymbols")
	if err != nil {
		t.Fatalf("add failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Stored 'github'") {
		t.Errorf("Expected success message, got: %s", output)
	}
	generated := lastLine(output)
	if len(generated) != 20 {
		t.Fatalf("Expected a 20 character generated password, got %q", generated)
	}

	output, err = runCLI(t, "password-manager", "get", "github")
	if err != nil {
		t.Fatalf("get failed: %v\nOutput: %s", err, output)
	}
	if strings.TrimSpace(output) != generated {
		t.Errorf("get printed %q, want %q", strings.TrimSpace(output), generated)
	}

	output, err = runCLI(t, "password-manager", "list")
	if err != nil || !strings.Contains(output, "github") || strings.Contains(output, generated) {
		t.Errorf("Unexpected list output (err=%v): %s", err, output)
	}

	output, err = runCLI(t, "pm", "count")
	if err != nil || strings.TrimSpace(output) != "1 credential" {
		t.Errorf("Unexpected count output (err=%v): %q", err, output)
	}

	output, err = runCLI(t, "password-manager", "update", "github", "--rename", "github-work")
	if err != nil {
		t.Fatalf("update failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Updated 'github-work'") {
		t.Errorf("Expected rename message, got: %s", output)
	}

	output, err = runCLI(t, "password-manager", "get", "github")
	if kerrors.ExitCode(err) != kerrors.ExitNotFound {
		t.Errorf("Expected exit code %d for old label, got %d (%v)", kerrors.ExitNotFound, kerrors.ExitCode(err), err)
	}
	if !IsReported(err) || !strings.Contains(output, "credential not found") {
		t.Errorf("Expected a reported not-found message, got: %s", output)
	}

	output, err = runCLI(t, "password-manager", "delete", "github-work", "--yes")
	if err != nil || !strings.Contains(output, "Deleted 'github-work'") {
		t.Errorf("Unexpected delete output (err=%v): %s", err, output)
	}

	output, _ = runCLI(t, "password-manager", "list")
	if !strings.Contains(output, "The vault is empty") {
		t.Errorf("Expected empty vault hint, got: %s", output)
	}
}

func TestPasswordManagerDuplicate(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	if _, err := runCLI(t, "password-manager", "add", "mail", "--generate"); err != nil {
		t.Fatal(err)
	}
	output, err := runCLI(t, "password-manager", "add", "mail", "--generate")
	if kerrors.ExitCode(err) != kerrors.ExitDuplicate {
		t.Errorf("Expected exit code %d, got %d", kerrors.ExitDuplicate, kerrors.ExitCode(err))
	}
	if !strings.Contains(output, "xpm password-manager update") {
		t.Errorf("Expected update hint, got: %s", output)
	}
}

func TestPasswordManagerWrongKey(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	if _, err := runCLI(t, "password-manager", "add", "mail", "--generate"); err != nil {
		t.Fatal(err)
	}

	_, otherKey, err := secrets.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(configs.EnvKey, otherKey)

	output, err := runCLI(t, "password-manager", "get", "mail")
	if kerrors.ExitCode(err) != kerrors.ExitDecrypt {
		t.Errorf("Expected exit code %d, got %d (%v)", kerrors.ExitDecrypt, kerrors.ExitCode(err), err)
	}
	if !strings.Contains(output, "Wrong key") {
		t.Errorf("Expected wrong key message, got: %s", output)
	}
}

func TestPasswordManagerFindJSON(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	for _, label := range []string{"GitHub", "gitlab", "bank"} {
		if _, err := runCLI(t, "password-manager", "add", label, "--generate"); err != nil {
			t.Fatal(err)
		}
	}

	output, err := runCLI(t, "password-manager", "find", "git", "--json")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}

	var found []summaryJSON
	if err := json.Unmarshal([]byte(output), &found); err != nil {
		t.Fatalf("find --json output is not JSON: %v\n%s", err, output)
	}
	if len(found) != 2 || found[0].Label != "GitHub" || found[1].Label != "gitlab" {
		t.Errorf("Unexpected find result: %+v", found)
	}
}

func TestPasswordManagerExport(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())
	t.Setenv(configs.EnvExportPassword, "export-pass")

	if _, err := runCLI(t, "password-manager", "add", "mail", "--generate"); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir() + "/vault.kdbx"
	output, err := runCLI(t, "password-manager", "export", out)
	if err != nil || !strings.Contains(output, "Exported 1 credential") {
		t.Fatalf("Unexpected export output (err=%v): %s", err, output)
	}

	output, err = runCLI(t, "password-manager", "export", out)
	if kerrors.ExitCode(err) != kerrors.ExitIO || !strings.Contains(output, "--force") {
		t.Errorf("Expected refusal to overwrite, got %v: %s", err, output)
	}

	if _, err := runCLI(t, "password-manager", "export", out, "--force"); err != nil {
		t.Errorf("export --force failed: %v", err)
	}
}

func TestGenerateCommand(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	output, err := runCLI(t, "generate", "-l", "16", "--preset", "hex")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	password := strings.TrimSpace(output)
	if len(password) != 16 || strings.Trim(password, "0123456789ABCDEF") != "" {
		t.Errorf("Unexpected password %q", password)
	}

	_, err = runCLI(t, "generate", "-l", "5000")
	if kerrors.ExitCode(err) != kerrors.ExitInvalidInput {
		t.Errorf("Expected exit code %d, got %d", kerrors.ExitInvalidInput, kerrors.ExitCode(err))
	}
}

func TestVersionCommand(t *testing.T) {
	setupTestEnvironment(t, t.TempDir())

	output, err := runCLI(t, "version")
	if err != nil || !strings.Contains(output, "xpm dev") {
		t.Errorf("Unexpected version output (err=%v): %s", err, output)
	}
}
