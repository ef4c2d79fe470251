package errors

import "errors"

// Process exit codes. Each failure kind the CLI can report has its own code.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitNotFound     = 2
	ExitDuplicate    = 3
	ExitIO           = 4
	ExitDecrypt      = 5
	ExitInvalidInput = 6
	ExitPartial      = 7
)

// ErrPartialFailure is returned by directory commands when the traversal
// finished but some files failed.
var ErrPartialFailure = errors.New("some files could not be processed")

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrDuplicateLabel):
		return ExitDuplicate
	case errors.Is(err, ErrDecrypt), errors.Is(err, ErrKeyUnavailable):
		return ExitDecrypt
	case errors.Is(err, ErrIO), errors.Is(err, ErrVaultUnavailable), errors.Is(err, ErrNoFilesFound):
		return ExitIO
	case errors.Is(err, ErrInvalidPolicy), errors.Is(err, ErrInvalidLabel),
		errors.Is(err, ErrAlreadyInTargetState), errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidDateFormat), errors.Is(err, ErrInvalidImport),
		errors.Is(err, ErrInvalidEncoding), errors.Is(err, ErrInvalidConfig):
		return ExitInvalidInput
	case errors.Is(err, ErrPartialFailure):
		return ExitPartial
	default:
		return ExitFailure
	}
}
