package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/xpm/internal/configs"
	"github.com/PolarWolf314/xpm/internal/utils"
)

// Operation names recorded in the log.
const (
	OpGenerate    = "generate"
	OpAdd         = "add"
	OpGet         = "get"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpExport      = "export"
	OpImport      = "import"
	OpBackup      = "backup"
	OpEncryptFile = "encrypt-file"
	OpDecryptFile = "decrypt-file"
	OpEncryptDir  = "encrypt-dir"
	OpDecryptDir  = "decrypt-dir"
	OpClearLog    = "clear-log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry. Secrets and key material are
// never recorded.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Local username.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Label      string `json:"label,omitempty"`       // For credential operations.
	NewLabel   string `json:"new_label,omitempty"`   // For rename.
	Path       string `json:"path,omitempty"`        // For file/dir operations.
	Length     int    `json:"length,omitempty"`      // For generate.
	Succeeded  int    `json:"succeeded,omitempty"`   // For dir operations.
	Failed     int    `json:"failed,omitempty"`      // For dir operations.
	Skipped    int    `json:"skipped,omitempty"`     // For dir operations and import.
	FilesCount int    `json:"files_count,omitempty"` // For encrypt/decrypt-file, export, import and backup.
	OutputPath string `json:"output_path,omitempty"` // For export and backup.
	Error      string `json:"error,omitempty"`       // Set when the operation failed.
}

// Log appends an entry to the audit log.
// If logging fails, it does not return an error.
// Operations should not fail just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampLayout)
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the current user filled in.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}

	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}

	return entry
}

// LogPath returns the path to the audit log file, or "" when settings are unset.
func LogPath() string {
	if configs.XpmSettings == nil {
		return ""
	}
	return configs.XpmSettings.AuditLogPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Clear removes every entry and returns how many were removed.
func Clear() (int, error) {
	entries, err := ReadEntries()
	if err != nil {
		return 0, err
	}

	logPath := LogPath()
	if logPath == "" {
		return 0, nil
	}
	if err := os.Remove(logPath); err != nil && !os.IsNotExist(err) {
		return 0, err
	}

	return len(entries), nil
}
