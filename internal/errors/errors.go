package errors

import "errors"

// Vault errors indicate problems with credential records or the vault file.
var (
	// ErrNotFound indicates no credential exists with the given label.
	ErrNotFound = errors.New("credential not found")

	// ErrDuplicateLabel indicates another credential already uses the label.
	ErrDuplicateLabel = errors.New("label already exists")

	// ErrInvalidLabel indicates the label is empty or only whitespace.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrVaultUnavailable indicates the vault database could not be opened or created.
	ErrVaultUnavailable = errors.New("vault database is unavailable")
)

// Key errors indicate the secret input could not be turned into a key.
var (
	// ErrKeyUnavailable indicates no key or passphrase was supplied.
	ErrKeyUnavailable = errors.New("no key provided")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrDecrypt indicates a token could not be opened with the key. Wrong keys
	// and tampered tokens are deliberately reported the same way.
	ErrDecrypt = errors.New("invalid key or token")

	// ErrInvalidToken indicates the input is not structurally a token.
	ErrInvalidToken = errors.New("malformed token")

	// ErrAlreadyInTargetState indicates a file is already encrypted (or already plaintext).
	ErrAlreadyInTargetState = errors.New("file is already in the requested state")
)

// File errors indicate issues with file discovery or access.
var (
	// ErrIO indicates a path could not be read or written.
	ErrIO = errors.New("i/o failure")

	// ErrNoFilesFound indicates a directory pass found nothing to process.
	ErrNoFilesFound = errors.New("no matching files found")
)

// Password generation errors.
var (
	// ErrInvalidPolicy indicates a password policy that cannot be satisfied.
	ErrInvalidPolicy = errors.New("invalid password policy")
)

// Input errors.
var (
	// ErrInvalidDateFormat indicates a date filter not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidImport indicates an import file that is not a supported format,
	// or a JSON import that is not an object of label to password strings.
	ErrInvalidImport = errors.New("invalid import file")

	// ErrInvalidEncoding indicates an unknown encode format or input that
	// does not decode in the chosen format.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrInvalidConfig indicates an unknown config key or an unusable value.
	ErrInvalidConfig = errors.New("invalid config setting")
)
