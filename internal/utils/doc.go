// Package utils provides shared helpers for the xpm commands.
//
// # Filesystem Utilities
//
//   - ExpandPath: resolves ~ and relative paths to an absolute path
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - Plural: picks the singular or plural form of a word
//
// # I/O Utilities
//
//   - ReadStdin: reads all data from standard input
//   - ConfirmCode: asks the user to retype a random code before destructive operations
//
// # Terminal Utilities
//
//   - ReadPassphrase, ReadPassphraseFromTTY, ReadNewPassphrase: hidden key input
//   - IsTerminal, IsTTYAvailable: terminal detection
package utils
