package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/xpm/internal/audit"
	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	logger "github.com/PolarWolf314/xpm/internal/logging"
	"github.com/PolarWolf314/xpm/internal/secrets"
)

// FileOptions configures the single-file workflows.
type FileOptions struct {
	Key *secrets.Key

	// Paths are files or glob patterns, resolved against the working directory.
	Paths []string

	// Suffix writes <file>.x next to the original instead of replacing it.
	// Decrypting with Suffix strips .x.
	Suffix bool

	// Delete wipes and removes the source once the output is written.
	// It only applies together with Suffix.
	Delete bool
}

// FileResult contains the outcome of a single-file workflow.
type FileResult struct {
	Outcomes []secrets.Outcome
	Summary  secrets.Summary
}

// EncryptFile encrypts each file named in opts.Paths.
//
// Returns ErrNoFilesFound if the paths match nothing. When exactly one file
// was requested its error is returned as is; otherwise any failure yields
// ErrPartialFailure alongside the result.
func EncryptFile(ctx context.Context, opts FileOptions) (*FileResult, error) {
	return processFiles(ctx, opts, secrets.Encrypt, audit.OpEncryptFile)
}

// DecryptFile decrypts each file named in opts.Paths. Error semantics match EncryptFile.
func DecryptFile(ctx context.Context, opts FileOptions) (*FileResult, error) {
	return processFiles(ctx, opts, secrets.Decrypt, audit.OpDecryptFile)
}

func processFiles(ctx context.Context, opts FileOptions, mode secrets.Mode, op string) (*FileResult, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	files, err := secrets.ResolveFiles(opts.Paths, workDir)
	if err != nil {
		return nil, err
	}

	cipher := newFileCipher(opts.Key, opts.Suffix, opts.Delete)
	agg := secrets.NewAggregator()
	result := &FileResult{}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		outcome := cipher.Process(path, mode)
		result.Outcomes = append(result.Outcomes, outcome)
		agg.Fold(outcome)
	}
	result.Summary = agg.Summary()

	entry := audit.LogWithUser(op)
	if len(files) == 1 {
		entry.Path = files[0]
	}
	entry.FilesCount = result.Summary.Succeeded
	entry.Failed = result.Summary.Failed

	if err := ctx.Err(); err != nil {
		logFailure(entry, err)
		return result, err
	}
	if len(result.Outcomes) == 1 && !result.Outcomes[0].Succeeded() {
		logFailure(entry, result.Outcomes[0].Err)
		return result, result.Outcomes[0].Err
	}
	if result.Summary.HasFailures() {
		err := fmt.Errorf("%d of %d files: %w", result.Summary.Failed, result.Summary.Total, kerrors.ErrPartialFailure)
		logFailure(entry, err)
		return result, err
	}
	audit.Log(entry)
	return result, nil
}

func newFileCipher(key *secrets.Key, suffix, wipe bool) *secrets.FileCipher {
	cipher := &secrets.FileCipher{Key: key, Layout: secrets.InPlace}
	if suffix {
		cipher.Layout = secrets.Suffixed
		cipher.Wipe = wipe
	}
	return cipher
}

// DirOptions configures the directory workflows. Zero values fall back to
// config.toml.
type DirOptions struct {
	Key  *secrets.Key
	Root string

	// VaultPath is the vault in use when it was chosen outside the config,
	// for example with --vault. It is excluded along with the configured one.
	VaultPath string

	// Workers bounds the worker pool. 0 uses the configured count.
	Workers    int
	Sequential bool

	// Exclude holds doublestar patterns relative to Root, added to the
	// configured patterns.
	Exclude []string

	Suffix bool
	Delete bool

	Logger   logger.Logger
	Progress func(secrets.Outcome)
}

// EncryptDir encrypts every eligible file under opts.Root. The vault
// database, its companion files and the activity log are never touched.
//
// Per-file failures do not stop the pass. The Summary is returned whenever the
// walk ran, together with ErrPartialFailure if any file failed, or the context
// error if the pass was interrupted. Returns ErrIO if the root cannot be read
// and ErrNoFilesFound if nothing was eligible.
func EncryptDir(ctx context.Context, opts DirOptions) (*secrets.Summary, error) {
	return processDir(ctx, opts, secrets.Encrypt, audit.OpEncryptDir)
}

// DecryptDir decrypts every eligible file under opts.Root. Error semantics
// match EncryptDir; a file that is not a token counts as a failure.
func DecryptDir(ctx context.Context, opts DirOptions) (*secrets.Summary, error) {
	return processDir(ctx, opts, secrets.Decrypt, audit.OpDecryptDir)
}

func processDir(ctx context.Context, opts DirOptions, mode secrets.Mode, op string) (*secrets.Summary, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers == 0 {
		workers = config.WorkerCount()
	}

	dir := &secrets.DirectoryCipher{
		Files:        newFileCipher(opts.Key, opts.Suffix, opts.Delete),
		Workers:      workers,
		Sequential:   opts.Sequential || config.Crypto.Sequential,
		Exclude:      protectedPaths(config, opts.VaultPath),
		ExcludeGlobs: append(append([]string(nil), config.Encrypt.Exclude...), opts.Exclude...),
		Logger:       opts.Logger,
		Progress:     opts.Progress,
	}

	entry := audit.LogWithUser(op)
	entry.Path = opts.Root

	summary, err := dir.Run(ctx, opts.Root, mode)
	if summary != nil {
		entry.Succeeded = summary.Succeeded
		entry.Failed = summary.Failed
		entry.Skipped = summary.Skipped
	}
	if err != nil {
		logFailure(entry, err)
		return summary, err
	}

	if summary.Total == 0 {
		err := fmt.Errorf("nothing to %s under %s: %w", mode, opts.Root, kerrors.ErrNoFilesFound)
		logFailure(entry, err)
		return summary, err
	}
	if summary.HasFailures() {
		err := fmt.Errorf("%d of %d files: %w", summary.Failed, summary.Total, kerrors.ErrPartialFailure)
		logFailure(entry, err)
		return summary, err
	}

	audit.Log(entry)
	return summary, nil
}

// protectedPaths lists files a directory pass must never rewrite. Companion
// files of each vault are excluded by the walk itself.
func protectedPaths(config *configs.Config, activeVault string) []string {
	paths := []string{config.VaultPath(), activeVault}
	if configs.XpmSettings != nil {
		paths = append(paths, configs.XpmSettings.VaultPath, configs.XpmSettings.AuditLogPath)
	}
	return paths
}
