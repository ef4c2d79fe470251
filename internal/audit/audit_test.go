package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/xpm/internal/configs"
)

// withTempLog points the audit log at a fresh temp directory.
func withTempLog(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalSettings := configs.XpmSettings
	configs.XpmSettings = configs.NewSettings(filepath.Join(tempDir, "data"), filepath.Join(tempDir, "config"))
	t.Cleanup(func() {
		configs.XpmSettings = originalSettings
	})

	return configs.XpmSettings.AuditLogPath
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := withTempLog(t)

	Log(Entry{User: "alice", Operation: OpAdd, Label: "github"})

	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected audit log permissions 0600, got %v", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	withTempLog(t)

	Log(Entry{User: "alice", Operation: OpAdd, Label: "github"})
	Log(Entry{User: "alice", Operation: OpEncryptDir, Path: "/tmp/docs", Succeeded: 3, Failed: 1})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Operation != OpEncryptDir || entries[1].Succeeded != 3 || entries[1].Failed != 1 {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	logPath := withTempLog(t)

	Log(Entry{User: "alice", Operation: OpGenerate})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.Timestamp == "" {
		t.Errorf("Timestamp should be auto-set")
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := withTempLog(t)

	Log(Entry{User: "alice", Operation: OpClearLog})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	line := strings.TrimSpace(string(data))
	for _, field := range []string{`"label"`, `"path"`, `"succeeded"`, `"error"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}
}

func TestLog_NoSettings(t *testing.T) {
	originalSettings := configs.XpmSettings
	configs.XpmSettings = nil
	defer func() {
		configs.XpmSettings = originalSettings
	}()

	// Should silently do nothing.
	Log(Entry{User: "alice", Operation: OpAdd})
}

func TestLogWithUser(t *testing.T) {
	entry := LogWithUser(OpDelete)
	if entry.Operation != OpDelete {
		t.Errorf("Expected operation %s, got %s", OpDelete, entry.Operation)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.000000Z","user":"alice","op":"add","label":"github"}
{"ts":"2024-01-15T10:31:00.000000Z","user":"alice","op":"decrypt-dir","path":"/tmp","succeeded":2}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Label != "github" {
		t.Errorf("Expected label github, got %s", entries[0].Label)
	}
	if entries[1].Succeeded != 2 {
		t.Errorf("Expected 2 succeeded, got %d", entries[1].Succeeded)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.000000Z","user":"alice","op":"add"}
not json
{"ts":"2024-01-15T10:31:00.000000Z","user":"alice","op":"get"}`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries, got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestReadEntries_NoLog(t *testing.T) {
	withTempLog(t)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("Expected no error for a missing log, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestClear(t *testing.T) {
	logPath := withTempLog(t)

	Log(Entry{User: "alice", Operation: OpAdd})
	Log(Entry{User: "alice", Operation: OpGet})

	removed, err := Clear()
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed entries, got %d", removed)
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("Expected log file to be removed")
	}

	// Clearing an empty log is not an error.
	if removed, err := Clear(); err != nil || removed != 0 {
		t.Errorf("Expected (0, nil) for an empty log, got (%d, %v)", removed, err)
	}
}
