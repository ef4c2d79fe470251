// Package secrets provides the cryptographic and file handling core of xpm.
//
// # Keys
//
// A Key is either a raw 32-byte key, supplied as its 44 character URL-safe
// base64 form, or a passphrase. Passphrase keys are stretched with Argon2id
// using a random 16-byte salt that is written into every token, so a token
// can be opened by anyone holding the passphrase.
//
// # Tokens
//
// Every encrypted value is a URL-safe base64 token:
//
//	0x80 | nonce(24) | secretbox(timestamp(8) | plaintext)
//	0x81 | salt(16) | nonce(24) | secretbox(timestamp(8) | plaintext)
//
// Encryption uses NaCl secretbox with a random nonce, so encrypting the same
// plaintext twice yields different tokens. Any failure to open a token wraps
// errors.ErrDecrypt; input that is not a token at all also wraps
// errors.ErrInvalidToken.
//
// # Files
//
// FileCipher transforms a single file. Output is written to a temporary file
// in the destination directory and renamed into place, so an interrupted run
// leaves either the old or the new content. In the Suffixed layout the
// encrypted copy is written next to the original with a .x suffix and the
// original can be wiped.
//
// # Directories
//
// DirectoryCipher walks a tree with Discover, runs every eligible file
// through a FileCipher either sequentially or on a bounded worker pool, and
// folds the outcomes into a Summary. A single file failing never stops the
// pass.
package secrets
