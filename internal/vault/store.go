package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/secrets"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	keyCheckName      = "key_check"
	keyCheckPlaintext = "xpm vault key check"
	timeLayout        = time.RFC3339Nano
	lockRetryDelay    = 50 * time.Millisecond
)

// Credential is a stored secret with its metadata.
type Credential struct {
	ID        string
	Label     string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary describes a credential without its secret.
type Summary struct {
	ID        string
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateOptions selects what Update changes. Nil fields are left alone.
type UpdateOptions struct {
	Secret *string
	Label  *string
}

// Store is the credential vault. Secrets are encrypted with the key before
// they reach the database and decrypted only by Get and Entries.
type Store struct {
	db   *DB
	key  *secrets.Key
	path string
}

// Open opens or creates the vault at path. The schema is migrated under a
// file lock on <path>.lock, and the key is checked against the vault's stored
// key check so a wrong key is rejected before any credential is touched.
func Open(ctx context.Context, path string, key *secrets.Key) (*Store, error) {
	if key == nil {
		return nil, kerrors.ErrKeyUnavailable
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrVaultUnavailable, err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return nil, fmt.Errorf("%w: could not lock %s: %v", kerrors.ErrVaultUnavailable, path, err)
	}
	defer func() { _ = lock.Unlock() }()

	db, err := NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrVaultUnavailable, err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", kerrors.ErrVaultUnavailable, err)
	}

	// The vault holds only ciphertext, but its metadata is still private.
	_ = os.Chmod(path, 0600)

	s := &Store{db: db, key: key, path: path}
	if err := s.checkKey(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the vault file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) checkKey(ctx context.Context) error {
	var check string
	err := s.db.Writer.QueryRowContext(ctx, `SELECT value FROM vault_meta WHERE key = ?`, keyCheckName).Scan(&check)
	if errors.Is(err, sql.ErrNoRows) {
		token, err := s.key.Encrypt([]byte(keyCheckPlaintext))
		if err != nil {
			return fmt.Errorf("create key check: %w", err)
		}
		if _, err := s.db.Writer.ExecContext(ctx, `INSERT INTO vault_meta (key, value) VALUES (?, ?)`, keyCheckName, token); err != nil {
			return fmt.Errorf("%w: store key check: %w", kerrors.ErrVaultUnavailable, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read key check: %w", kerrors.ErrVaultUnavailable, err)
	}

	plaintext, err := s.key.Decrypt(check)
	if err != nil || string(plaintext) != keyCheckPlaintext {
		return fmt.Errorf("key does not open vault %s: %w", s.path, kerrors.ErrDecrypt)
	}

	// The key check's salt is the vault salt. Sealing with it keeps every
	// credential on the derivation the check just paid for.
	if s.key.IsPassphrase() {
		if err := s.key.UseSaltOf(check); err != nil {
			return fmt.Errorf("%w: vault salt: %w", kerrors.ErrVaultUnavailable, err)
		}
	}
	return nil
}

// Add stores a new credential and returns its ID.
func (s *Store) Add(ctx context.Context, label, secret string) (string, error) {
	label, err := normalizeLabel(label)
	if err != nil {
		return "", err
	}

	token, err := s.key.Encrypt([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("encrypt credential %q: %w", label, err)
	}

	id := uuid.New().String()
	now := nowUTC()

	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO credentials (id, label, secret, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, id, label, token, now, now); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%q: %w", label, kerrors.ErrDuplicateLabel)
		}
		return "", fmt.Errorf("add credential %q: %w", label, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit credential %q: %w", label, err)
	}
	return id, nil
}

// Get returns the credential with its secret decrypted.
func (s *Store) Get(ctx context.Context, label string) (*Credential, error) {
	const query = `SELECT id, label, secret, created_at, updated_at FROM credentials WHERE label = ?`

	var c Credential
	var token, createdAt, updatedAt string
	err := s.db.Reader.QueryRowContext(ctx, query, strings.TrimSpace(label)).Scan(&c.ID, &c.Label, &token, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", label, kerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", label, err)
	}

	if err := s.fill(&c, token, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update changes the secret, the label, or both.
func (s *Store) Update(ctx context.Context, label string, opts UpdateOptions) error {
	label = strings.TrimSpace(label)

	var newLabel string
	if opts.Label != nil {
		var err error
		if newLabel, err = normalizeLabel(*opts.Label); err != nil {
			return err
		}
	}

	var token string
	if opts.Secret != nil {
		var err error
		if token, err = s.key.Encrypt([]byte(*opts.Secret)); err != nil {
			return fmt.Errorf("encrypt credential %q: %w", label, err)
		}
	}

	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM credentials WHERE label = ?`, label).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%q: %w", label, kerrors.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("find credential %q: %w", label, err)
	}

	now := nowUTC()
	if opts.Secret != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE credentials SET secret = ?, updated_at = ? WHERE id = ?`, token, now, id); err != nil {
			return fmt.Errorf("update secret of %q: %w", label, err)
		}
	}
	if opts.Label != nil && newLabel != label {
		if _, err := tx.ExecContext(ctx, `UPDATE credentials SET label = ?, updated_at = ? WHERE id = ?`, newLabel, now, id); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%q: %w", newLabel, kerrors.ErrDuplicateLabel)
			}
			return fmt.Errorf("rename %q: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update of %q: %w", label, err)
	}
	return nil
}

// Delete removes the credential.
func (s *Store) Delete(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)

	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE label = ?`, label)
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", label, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", label, err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", label, kerrors.ErrNotFound)
	}

	return tx.Commit()
}

// List returns every credential ordered by label, without secrets.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	return s.summaries(ctx, `SELECT id, label, created_at, updated_at FROM credentials ORDER BY label`)
}

// Find returns credentials whose label contains query, ignoring case.
func (s *Store) Find(ctx context.Context, query string) ([]Summary, error) {
	return s.summaries(ctx,
		`SELECT id, label, created_at, updated_at FROM credentials WHERE instr(lower(label), lower(?)) > 0 ORDER BY label`,
		query)
}

// Count returns the number of stored credentials.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

// Backup writes a consistent copy of the vault to dest, which must not exist.
// The copy keeps the key check, so it opens with the same key.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%s already exists: %w", dest, kerrors.ErrIO)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	if _, err := s.db.Writer.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("back up vault to %s: %w: %w", dest, kerrors.ErrIO, err)
	}
	if err := os.Chmod(dest, 0600); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	return nil
}

// Entries returns every credential with its secret decrypted, ordered by label.
// It exists for export; everything else should use List.
func (s *Store) Entries(ctx context.Context) ([]Credential, error) {
	const query = `SELECT id, label, secret, created_at, updated_at FROM credentials ORDER BY label`
	rows, err := s.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []Credential
	for rows.Next() {
		var c Credential
		var token, createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Label, &token, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if err := s.fill(&c, token, createdAt, updatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

func (s *Store) summaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := s.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&sum.ID, &sum.Label, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func (s *Store) fill(c *Credential, token, createdAt, updatedAt string) error {
	plaintext, err := s.key.Decrypt(token)
	if err != nil {
		return fmt.Errorf("decrypt credential %q: %w", c.Label, err)
	}
	c.Secret = string(plaintext)

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func normalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("label must not be empty: %w", kerrors.ErrInvalidLabel)
	}
	return label, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
