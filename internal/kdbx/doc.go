// Package kdbx exports credentials to KeePass (KDBX) files so they can be
// imported by other password managers.
package kdbx
