package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PolarWolf314/xpm/internal/audit"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/kdbx"
	"github.com/PolarWolf314/xpm/internal/vault"
)

// ImportMode represents the import strategy for labels already in the vault.
type ImportMode int

const (
	// ImportModeMerge adds new labels and leaves existing credentials alone.
	ImportModeMerge ImportMode = iota
	// ImportModeReplace overwrites the secret of existing labels.
	ImportModeReplace
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	VaultOptions

	// InputPath is a .json object of label to password, or a .kdbx database.
	InputPath string

	// Password unlocks a .kdbx input. It is ignored for JSON.
	Password string

	Mode ImportMode

	// DryRun reports what would change without writing to the vault.
	DryRun bool
}

// ImportSkip is a record that was not imported.
type ImportSkip struct {
	Label  string
	Reason string
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	// Added is the count of new credentials.
	Added int

	// Replaced is the count of existing credentials whose secret was overwritten.
	Replaced int

	// Skipped lists records left out, sorted by label.
	Skipped []ImportSkip

	// Total is the number of records in the input.
	Total int

	DryRun bool
	Mode   ImportMode
}

// ImportCredentials reads credentials from a JSON or KeePass file into the vault.
//
// Each record is stored in its own transaction, so a failure partway leaves the
// records before it imported. Returns ErrInvalidImport for an unsupported or
// malformed file, and ErrDecrypt if a KeePass password is wrong.
func ImportCredentials(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	entry := audit.LogWithUser(audit.OpImport)
	entry.Path = opts.InputPath

	records, err := readImport(opts.InputPath, opts.Password)
	if err != nil {
		logFailure(entry, err)
		return nil, err
	}

	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	result := &ImportResult{Total: len(records), DryRun: opts.DryRun, Mode: opts.Mode}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			logFailure(entry, err)
			return result, err
		}

		label := strings.TrimSpace(r.Title)
		if label == "" {
			result.Skipped = append(result.Skipped, ImportSkip{Label: r.Title, Reason: "empty label"})
			continue
		}

		_, getErr := store.Get(ctx, label)
		exists := getErr == nil
		if getErr != nil && !errors.Is(getErr, kerrors.ErrNotFound) {
			logFailure(entry, getErr)
			return result, getErr
		}

		switch {
		case exists && opts.Mode == ImportModeMerge:
			result.Skipped = append(result.Skipped, ImportSkip{Label: label, Reason: "already in vault"})
			continue
		case opts.DryRun:
		case exists:
			secret := r.Password
			err = store.Update(ctx, label, vault.UpdateOptions{Secret: &secret})
		default:
			_, err = store.Add(ctx, label, r.Password)
		}
		if err != nil {
			err = fmt.Errorf("importing %q: %w", label, err)
			logFailure(entry, err)
			return result, err
		}

		if exists {
			result.Replaced++
		} else {
			result.Added++
		}
	}

	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].Label < result.Skipped[j].Label })

	if !opts.DryRun {
		entry.FilesCount = result.Added + result.Replaced
		entry.Skipped = len(result.Skipped)
		audit.Log(entry)
	}
	return result, nil
}

// readImport loads records by file extension, sorted by label.
func readImport(path, password string) ([]kdbx.Record, error) {
	var records []kdbx.Record
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdbx":
		records, err = kdbx.Open(path, password)
	case ".json":
		records, err = readJSONImport(path)
	default:
		return nil, fmt.Errorf("%s: expected a .json or .kdbx file: %w", path, kerrors.ErrInvalidImport)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Title < records[j].Title })
	return records, nil
}

// readJSONImport reads a flat JSON object of label to password.
func readJSONImport(path string) ([]kdbx.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s is not a JSON object: %w", path, kerrors.ErrInvalidImport)
	}

	records := make([]kdbx.Record, 0, len(raw))
	for label, value := range raw {
		var password string
		if err := json.Unmarshal(value, &password); err != nil {
			return nil, fmt.Errorf("%s: value for %q is not a string: %w", path, label, kerrors.ErrInvalidImport)
		}
		records = append(records, kdbx.Record{Title: label, Password: password})
	}
	return records, nil
}

// BackupOptions configures the backup workflow.
type BackupOptions struct {
	VaultOptions

	// OutputPath is the backup file. It must not exist.
	OutputPath string
}

// BackupResult contains the outcome of a backup.
type BackupResult struct {
	OutputPath string
	Count      int
}

// BackupVault copies the vault to OutputPath. The copy stays encrypted and
// opens with the same key.
func BackupVault(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	entry := audit.LogWithUser(audit.OpBackup)
	entry.OutputPath = opts.OutputPath

	count, err := store.Count(ctx)
	if err != nil {
		logFailure(entry, err)
		return nil, err
	}

	if err := store.Backup(ctx, opts.OutputPath); err != nil {
		logFailure(entry, err)
		return nil, err
	}

	entry.FilesCount = count
	audit.Log(entry)
	return &BackupResult{OutputPath: opts.OutputPath, Count: count}, nil
}
