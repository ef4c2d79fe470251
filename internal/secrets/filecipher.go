package secrets

import (
	"fmt"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

// Mode selects the direction of a file operation.
type Mode int

const (
	Encrypt Mode = iota
	Decrypt
)

func (m Mode) String() string {
	if m == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// Layout decides where a processed file is written.
type Layout int

const (
	// InPlace replaces the source file with its encrypted or decrypted form.
	InPlace Layout = iota
	// Suffixed writes <path>.x when encrypting and strips .x when decrypting.
	Suffixed
)

// EncryptedSuffix is appended to encrypted files in the Suffixed layout.
const EncryptedSuffix = ".x"

// Job is one file to process.
type Job struct {
	Source      string
	Destination string
	Mode        Mode
}

// Outcome is the result of a Job. Err is nil on success.
type Outcome struct {
	Job
	Err error
}

// Succeeded reports whether the job completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// FileCipher encrypts or decrypts single files with one key.
type FileCipher struct {
	Key    *Key
	Layout Layout

	// Wipe overwrites and removes the source after a Suffixed write commits.
	Wipe bool
}

// Plan computes the job for path without touching the filesystem.
func (c *FileCipher) Plan(path string, mode Mode) (Job, error) {
	job := Job{Source: path, Destination: path, Mode: mode}
	if c.Layout == InPlace {
		return job, nil
	}

	switch mode {
	case Encrypt:
		job.Destination = path + EncryptedSuffix
	case Decrypt:
		if !strings.HasSuffix(path, EncryptedSuffix) || len(path) == len(EncryptedSuffix) {
			return job, fmt.Errorf("%s does not end in %s: %w", path, EncryptedSuffix, kerrors.ErrAlreadyInTargetState)
		}
		job.Destination = strings.TrimSuffix(path, EncryptedSuffix)
	}
	return job, nil
}

// Process runs one file through the cipher. Failures are returned in the
// Outcome, never panicked or logged, so callers can batch freely.
func (c *FileCipher) Process(path string, mode Mode) Outcome {
	job, err := c.Plan(path, mode)
	if err != nil {
		return Outcome{Job: job, Err: err}
	}
	return Outcome{Job: job, Err: c.run(job)}
}

func (c *FileCipher) run(job Job) error {
	info, err := os.Stat(job.Source)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", job.Source, kerrors.ErrIO)
	}

	if job.Destination != job.Source {
		if _, err := os.Lstat(job.Destination); err == nil {
			return fmt.Errorf("%s already exists: %w", job.Destination, kerrors.ErrAlreadyInTargetState)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
		}
	}

	input, err := os.ReadFile(job.Source)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	var output []byte
	switch job.Mode {
	case Encrypt:
		if LooksLikeToken(input) {
			return fmt.Errorf("%s is already encrypted: %w", job.Source, kerrors.ErrAlreadyInTargetState)
		}
		sealed, err := c.Key.Encrypt(input)
		zero(input)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", job.Source, err)
		}
		output = []byte(sealed)
	case Decrypt:
		if !LooksLikeToken(input) {
			return fmt.Errorf("%s is not encrypted: %w: %w", job.Source, kerrors.ErrAlreadyInTargetState, kerrors.ErrInvalidToken)
		}
		plaintext, err := c.Key.Decrypt(string(input))
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", job.Source, err)
		}
		output = plaintext
		defer zero(plaintext)
	}

	if err := writeFileAtomic(job.Destination, output, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", job.Destination, kerrors.ErrIO, err)
	}

	if c.Layout == Suffixed && c.Wipe {
		if err := wipeAndRemove(job.Source); err != nil {
			return fmt.Errorf("wrote %s but failed to wipe %s: %w: %w", job.Destination, job.Source, kerrors.ErrIO, err)
		}
	}

	return nil
}
