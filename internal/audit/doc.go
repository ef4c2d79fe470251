// Package audit records every xpm operation in a local activity log.
//
// # Log Format
//
// The log is stored as JSON Lines (one JSON object per line) at:
//
//	<data dir>/xpm/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Local username
//   - Operation name
//   - Operation-specific details (label, path, counts)
//
// Secrets, passwords and keys are never written to the log.
//
// # Usage
//
// Create an entry with the user pre-populated:
//
//	entry := audit.LogWithUser(audit.OpEncryptDir)
//	entry.Path = root
//	entry.Succeeded = summary.Succeeded
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// Use ReadEntries to parse the log for display and Clear to empty it.
// Malformed entries are silently skipped to handle partial writes.
package audit
