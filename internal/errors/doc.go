// Package errors provides typed error values for xpm.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Vault errors: ErrNotFound, ErrDuplicateLabel, ErrInvalidLabel, ErrVaultUnavailable
//   - Key errors: ErrKeyUnavailable
//   - Crypto errors: ErrDecrypt, ErrInvalidToken, ErrAlreadyInTargetState
//   - File errors: ErrIO, ErrNoFilesFound
//   - Generator errors: ErrInvalidPolicy
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading %s: %w", path, kerrors.ErrIO)
//
// The CLI layer turns any returned error into a process exit code:
//
//	os.Exit(kerrors.ExitCode(err))
package errors
