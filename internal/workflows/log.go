package workflows

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/xpm/internal/audit"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// User filters entries by local username.
	User string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Label filters entries whose label or new label contains this text.
	Label string

	// Failed keeps only entries that recorded an error.
	Failed bool

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// ReadLog reads and filters the activity log.
//
// Returns ErrNoFilesFound if no activity log exists.
// Returns ErrInvalidDateFormat if a date filter is not YYYY-MM-DD.
func ReadLog(ctx context.Context, opts LogOptions) (*LogResult, error) {
	logPath := audit.LogPath()
	if logPath == "" {
		return nil, kerrors.ErrNoFilesFound
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, kerrors.ErrNoFilesFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading activity log: %w", kerrors.ErrIO, err)
	}

	// Parse entries.
	entries, err := audit.ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	if len(entries) == 0 {
		result.Entries = entries
		return result, nil
	}

	// Apply filters.
	filtered := entries

	if opts.User != "" {
		filtered = filterByUser(filtered, opts.User)
	}

	if opts.Operations != "" {
		ops := strings.Split(opts.Operations, ",")
		for i := range ops {
			ops[i] = strings.TrimSpace(ops[i])
		}
		filtered = filterByOperations(filtered, ops)
	}

	if opts.Label != "" {
		filtered = filterByLabel(filtered, opts.Label)
	}

	if opts.Failed {
		filtered = filterFailed(filtered)
	}

	if opts.Since != "" {
		sinceTime, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		filtered = filterSince(filtered, sinceTime)
	}

	if opts.Until != "" {
		untilTime, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day by setting to end of day.
		untilTime = untilTime.Add(24*time.Hour - time.Nanosecond)
		filtered = filterUntil(filtered, untilTime)
	}

	// Apply ordering.
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	// Apply limit.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

// filterByUser filters entries by username (case-insensitive).
func filterByUser(entries []audit.Entry, user string) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if strings.EqualFold(e.User, user) {
			result = append(result, e)
		}
	}
	return result
}

// filterByLabel keeps entries whose label or new label contains text.
func filterByLabel(entries []audit.Entry, text string) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if strings.Contains(e.Label, text) || strings.Contains(e.NewLabel, text) {
			result = append(result, e)
		}
	}
	return result
}

// filterFailed keeps entries that recorded an error.
func filterFailed(entries []audit.Entry) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if e.Error != "" {
			result = append(result, e)
		}
	}
	return result
}

// filterByOperations filters entries by operation types.
func filterByOperations(entries []audit.Entry, ops []string) []audit.Entry {
	opSet := make(map[string]bool)
	for _, op := range ops {
		opSet[strings.ToLower(op)] = true
	}

	var result []audit.Entry
	for _, e := range entries {
		if opSet[strings.ToLower(e.Operation)] {
			result = append(result, e)
		}
	}
	return result
}

// filterSince filters entries to only include those at or after the given time.
func filterSince(entries []audit.Entry, since time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, ok := parseTimestamp(e.Timestamp)
		if !ok {
			continue
		}
		if !t.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// filterUntil filters entries to only include those at or before the given time.
func filterUntil(entries []audit.Entry, until time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, ok := parseTimestamp(e.Timestamp)
		if !ok {
			continue
		}
		if !t.After(until) {
			result = append(result, e)
		}
	}
	return result
}

// FormatDate formats a timestamp string to YYYY-MM-DD format.
func FormatDate(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// parseTimestamp accepts the log's microsecond layout and plain RFC 3339.
func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02T15:04:05.000000Z", ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDetails formats the details for a log entry in verbose format.
func FormatDetails(e audit.Entry) string {
	details := formatDetails(e, false)
	if e.Error != "" {
		if details != "" {
			details += " "
		}
		details += "failed: " + e.Error
	}
	return details
}

// FormatDetailsOneline formats the details for a log entry in oneline format.
func FormatDetailsOneline(e audit.Entry) string {
	details := formatDetails(e, true)
	if e.Error != "" {
		details += " (failed)"
	}
	return strings.TrimSpace(details)
}

func formatDetails(e audit.Entry, short bool) string {
	switch e.Operation {
	case audit.OpAdd, audit.OpGet, audit.OpDelete:
		return e.Label
	case audit.OpUpdate:
		if e.NewLabel != "" && e.NewLabel != e.Label {
			return fmt.Sprintf("%s -> %s", e.Label, e.NewLabel)
		}
		return e.Label
	case audit.OpGenerate:
		return fmt.Sprintf("%d chars", e.Length)
	case audit.OpEncryptFile, audit.OpDecryptFile:
		if e.Path != "" && !short {
			return e.Path
		}
		return fmt.Sprintf("%d files", e.FilesCount)
	case audit.OpEncryptDir, audit.OpDecryptDir:
		counts := fmt.Sprintf("%d ok, %d failed, %d skipped", e.Succeeded, e.Failed, e.Skipped)
		if short {
			return counts
		}
		return fmt.Sprintf("%s (%s)", e.Path, counts)
	case audit.OpExport:
		if short {
			return e.OutputPath
		}
		return fmt.Sprintf("%s, %d credentials", e.OutputPath, e.FilesCount)
	case audit.OpImport:
		counts := fmt.Sprintf("%d imported, %d skipped", e.FilesCount, e.Skipped)
		if short {
			return counts
		}
		return fmt.Sprintf("%s (%s)", e.Path, counts)
	case audit.OpBackup:
		if short {
			return e.OutputPath
		}
		return fmt.Sprintf("%s, %d credentials", e.OutputPath, e.FilesCount)
	case audit.OpClearLog:
		return fmt.Sprintf("removed %d entries", e.FilesCount)
	default:
		return ""
	}
}

// ClearLogResult contains the outcome of clearing the activity log.
type ClearLogResult struct {
	RemovedCount int
}

// ClearLog deletes every activity log entry, then records the clear itself
// so the log always shows when it was last emptied.
func ClearLog(ctx context.Context) (*ClearLogResult, error) {
	removed, err := audit.Clear()
	if err != nil {
		return nil, fmt.Errorf("%w: clearing activity log: %w", kerrors.ErrIO, err)
	}

	entry := audit.LogWithUser(audit.OpClearLog)
	entry.FilesCount = removed
	audit.Log(entry)

	return &ClearLogResult{RemovedCount: removed}, nil
}
