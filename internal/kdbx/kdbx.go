package kdbx

import (
	"errors"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"

	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

// GroupName is the name of the group exported credentials are placed in.
const GroupName = "xpm"

// Record is one credential to export.
type Record struct {
	Title    string
	Password string
	Created  time.Time
	Modified time.Time
}

// Export writes records to a new KDBX file at path, protected by password.
// An existing file is overwritten.
func Export(path, password string, records []Record) error {
	if password == "" {
		return errors.New("export password must not be empty")
	}

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content = gokeepasslib.NewContent()

	group := gokeepasslib.NewGroup()
	group.Name = GroupName
	for _, r := range records {
		group.Entries = append(group.Entries, newEntry(r))
	}
	db.Content.Root = &gokeepasslib.RootData{
		Groups: []gokeepasslib.Group{group},
	}

	if err := db.LockProtectedEntries(); err != nil {
		return fmt.Errorf("failed to protect entries: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := gokeepasslib.NewEncoder(file).Encode(db); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Sync()
}

// Open decodes the KDBX file at path and returns its records, walking every
// group. A wrong password and a corrupt file both wrap ErrDecrypt.
func Open(path, password string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w: %w", path, kerrors.ErrIO, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	if err := gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w: %w", path, kerrors.ErrDecrypt, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("failed to unlock entries: %w", err)
	}

	var records []Record
	collect(&records, db.Content.Root.Groups)
	return records, nil
}

func newEntry(r Record) gokeepasslib.Entry {
	entry := gokeepasslib.NewEntry()
	entry.Values = append(entry.Values,
		gokeepasslib.ValueData{Key: "Title", Value: gokeepasslib.V{Content: r.Title}},
		gokeepasslib.ValueData{Key: "Password", Value: gokeepasslib.V{Content: r.Password, Protected: w.NewBoolWrapper(true)}},
	)
	if !r.Created.IsZero() {
		created := w.TimeWrapper{Time: r.Created}
		entry.Times.CreationTime = &created
	}
	if !r.Modified.IsZero() {
		modified := w.TimeWrapper{Time: r.Modified}
		entry.Times.LastModificationTime = &modified
	}
	return entry
}

func collect(records *[]Record, groups []gokeepasslib.Group) {
	for _, group := range groups {
		for i := range group.Entries {
			e := &group.Entries[i]
			r := Record{Title: e.GetTitle(), Password: e.GetPassword()}
			if e.Times.CreationTime != nil {
				r.Created = e.Times.CreationTime.Time
			}
			if e.Times.LastModificationTime != nil {
				r.Modified = e.Times.LastModificationTime.Time
			}
			*records = append(*records, r)
		}
		collect(records, group.Groups)
	}
}
