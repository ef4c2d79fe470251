package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/audit"
	"github.com/PolarWolf314/xpm/internal/kdbx"
	"github.com/PolarWolf314/xpm/internal/passwords"
	"github.com/PolarWolf314/xpm/internal/secrets"
	"github.com/PolarWolf314/xpm/internal/vault"
)

// VaultOptions identifies the vault a credential workflow operates on.
type VaultOptions struct {
	// Key is the master key. It must be the key the vault was created with.
	Key *secrets.Key

	// Path is the vault database. Empty means the configured default.
	Path string
}

func openVault(ctx context.Context, opts VaultOptions) (*vault.Store, error) {
	path := opts.Path
	if path == "" {
		config, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = config.VaultPath()
	}
	return vault.Open(ctx, path, opts.Key)
}

// logFailure records a failed operation. Err is included without secrets;
// store errors never carry plaintext.
func logFailure(entry audit.Entry, err error) {
	entry.Error = err.Error()
	audit.Log(entry)
}

// AddCredentialOptions configures the add workflow.
type AddCredentialOptions struct {
	VaultOptions

	Label string

	// Secret is stored as given. When empty a password is generated from Generate.
	Secret   string
	Generate GenerateOptions
}

// AddCredentialResult contains the outcome of an add operation.
type AddCredentialResult struct {
	ID    string
	Label string

	// Secret is the stored password. It is only set when it was generated,
	// so the caller can show it once.
	Secret string
}

// AddCredential stores a new credential.
//
// Returns ErrDuplicateLabel if the label is taken, ErrInvalidLabel for an
// empty label, and ErrInvalidPolicy if a generated password was requested with
// an unsatisfiable policy.
func AddCredential(ctx context.Context, opts AddCredentialOptions) (*AddCredentialResult, error) {
	entry := audit.LogWithUser(audit.OpAdd)
	entry.Label = opts.Label

	secret := opts.Secret
	generated := secret == ""
	if generated {
		pw, err := GeneratePassword(ctx, opts.Generate)
		if err != nil {
			return nil, err
		}
		secret = pw.Password
	}

	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	id, err := store.Add(ctx, opts.Label, secret)
	if err != nil {
		logFailure(entry, err)
		return nil, err
	}
	audit.Log(entry)

	result := &AddCredentialResult{ID: id, Label: opts.Label}
	if generated {
		result.Secret = secret
	}
	return result, nil
}

// GetCredentialOptions configures the get workflow.
type GetCredentialOptions struct {
	VaultOptions
	Label string
}

// GetCredential returns the decrypted credential for a label.
//
// Returns ErrNotFound if no credential has the label.
func GetCredential(ctx context.Context, opts GetCredentialOptions) (*vault.Credential, error) {
	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	entry := audit.LogWithUser(audit.OpGet)
	entry.Label = opts.Label

	credential, err := store.Get(ctx, opts.Label)
	if err != nil {
		logFailure(entry, err)
		return nil, err
	}
	audit.Log(entry)
	return credential, nil
}

// UpdateCredentialOptions configures the update workflow. Any combination of
// a new secret, a regenerated secret and a new label may be given.
type UpdateCredentialOptions struct {
	VaultOptions

	Label    string
	NewLabel string
	Secret   string

	// Regenerate replaces the secret with a password built from Generate.
	Regenerate bool
	Generate   GenerateOptions
}

// UpdateCredentialResult contains the outcome of an update.
type UpdateCredentialResult struct {
	// Label is the credential's label after the update.
	Label string

	// Secret is only set when it was regenerated.
	Secret string
}

// UpdateCredential changes a credential's secret and/or label in one transaction.
//
// Returns ErrNotFound if no credential has the label, and ErrDuplicateLabel if
// the new label belongs to another credential. On error nothing is changed.
func UpdateCredential(ctx context.Context, opts UpdateCredentialOptions) (*UpdateCredentialResult, error) {
	entry := audit.LogWithUser(audit.OpUpdate)
	entry.Label = opts.Label
	entry.NewLabel = opts.NewLabel

	var update vault.UpdateOptions
	result := &UpdateCredentialResult{Label: opts.Label}

	switch {
	case opts.Regenerate:
		pw, err := GeneratePassword(ctx, opts.Generate)
		if err != nil {
			return nil, err
		}
		update.Secret = &pw.Password
		result.Secret = pw.Password
	case opts.Secret != "":
		update.Secret = &opts.Secret
	}
	if opts.NewLabel != "" {
		update.Label = &opts.NewLabel
		result.Label = opts.NewLabel
	}

	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.Update(ctx, opts.Label, update); err != nil {
		logFailure(entry, err)
		return nil, err
	}
	audit.Log(entry)
	return result, nil
}

// DeleteCredentialOptions configures the delete workflow.
type DeleteCredentialOptions struct {
	VaultOptions
	Label string
}

// DeleteCredential removes a credential.
//
// Returns ErrNotFound if no credential has the label.
func DeleteCredential(ctx context.Context, opts DeleteCredentialOptions) error {
	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := audit.LogWithUser(audit.OpDelete)
	entry.Label = opts.Label

	if err := store.Delete(ctx, opts.Label); err != nil {
		logFailure(entry, err)
		return err
	}
	audit.Log(entry)
	return nil
}

// ListCredentials returns every credential's label and timestamps, ordered by label.
func ListCredentials(ctx context.Context, opts VaultOptions) ([]vault.Summary, error) {
	store, err := openVault(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.List(ctx)
}

// FindCredentials returns credentials whose label contains query, ignoring case.
func FindCredentials(ctx context.Context, opts VaultOptions, query string) ([]vault.Summary, error) {
	store, err := openVault(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.Find(ctx, query)
}

// CountCredentials returns the number of stored credentials.
func CountCredentials(ctx context.Context, opts VaultOptions) (int, error) {
	store, err := openVault(ctx, opts)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.Count(ctx)
}

// GenerateOptions configures password generation. Zero values fall back to
// config.toml and then to the built-in defaults.
type GenerateOptions struct {
	// Length of the password. 0 picks a random length in 32..72 unless the
	// config sets one.
	Length int

	// Classes names character classes (lowercase, uppercase, digits, symbols, hex).
	Classes []string

	// Preset names a class preset (ascii, nosymbols, hex). It overrides Classes.
	Preset string
}

// GenerateResult contains a generated password.
type GenerateResult struct {
	Password string
	Length   int
	Classes  []passwords.Class
}

// GeneratePassword builds a password from opts and the configured defaults.
//
// Returns ErrInvalidPolicy for unknown classes or presets, a non-positive
// length, or a length above the configured maximum.
func GeneratePassword(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var classes []passwords.Class
	switch {
	case opts.Preset != "":
		classes, err = passwords.Preset(opts.Preset)
	case len(opts.Classes) > 0:
		classes, err = passwords.ParseClasses(opts.Classes)
	default:
		classes, err = passwords.ParseClasses(config.Passwords.Classes)
	}
	if err != nil {
		return nil, err
	}

	length := opts.Length
	if length == 0 {
		length = config.Passwords.Length
	}
	if length == 0 {
		if length, err = passwords.RandomLength(); err != nil {
			return nil, err
		}
	}

	policy := passwords.Policy{Length: length, Classes: classes, MaxLength: config.Passwords.MaxLength}
	password, err := passwords.Generate(policy)
	if err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(audit.OpGenerate)
	entry.Length = length
	audit.Log(entry)

	return &GenerateResult{Password: password, Length: length, Classes: classes}, nil
}

// ExportKeePassOptions configures the KeePass export workflow.
type ExportKeePassOptions struct {
	VaultOptions

	// OutputPath is the .kdbx file to write. It is overwritten if it exists.
	OutputPath string

	// Password protects the exported database.
	Password string
}

// ExportKeePassResult contains the outcome of an export.
type ExportKeePassResult struct {
	OutputPath string
	Count      int
}

// ExportKeePass writes every credential to a KeePass database.
func ExportKeePass(ctx context.Context, opts ExportKeePassOptions) (*ExportKeePassResult, error) {
	store, err := openVault(ctx, opts.VaultOptions)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	entry := audit.LogWithUser(audit.OpExport)
	entry.OutputPath = opts.OutputPath

	credentials, err := store.Entries(ctx)
	if err != nil {
		logFailure(entry, err)
		return nil, err
	}

	records := make([]kdbx.Record, 0, len(credentials))
	for _, c := range credentials {
		records = append(records, kdbx.Record{Title: c.Label, Password: c.Secret, Created: c.CreatedAt, Modified: c.UpdatedAt})
	}

	if err := kdbx.Export(opts.OutputPath, opts.Password, records); err != nil {
		err = fmt.Errorf("exporting to %s: %w", opts.OutputPath, err)
		logFailure(entry, err)
		return nil, err
	}

	entry.FilesCount = len(records)
	audit.Log(entry)

	return &ExportKeePassResult{OutputPath: opts.OutputPath, Count: len(records)}, nil
}
