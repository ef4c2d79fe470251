// Package workflows provides high-level orchestration for xpm commands.
//
// Workflows coordinate the lower-level packages (secrets, vault, passwords,
// kdbx, audit) to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns like
// flag parsing, key prompts, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Obtains the key from XPM_KEY, stdin, or a prompt
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Opening and closing the vault
//   - Applying configured defaults and exclusions
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
// Credential vault:
//
//   - AddCredential, GetCredential, UpdateCredential, DeleteCredential
//   - ListCredentials, FindCredentials, CountCredentials
//   - ExportKeePass: writes the vault to a KDBX file
//
// File encryption:
//
//   - EncryptFile, DecryptFile: one or more individual files
//   - EncryptDir, DecryptDir: whole directory trees, in parallel by default
//
// Other:
//
//   - GeneratePassword: generates a password without storing it
//   - ReadLog, ClearLog: the activity log
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.GetCredential(ctx, opts)
//	if errors.Is(err, kerrors.ErrNotFound) {
//	    // Suggest `xpm password-manager list`
//	}
//
// Directory workflows return their Summary even when some files failed, along
// with ErrPartialFailure, so callers can render what succeeded.
package workflows
