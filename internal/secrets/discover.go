package secrets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// EntryKind tags what the walk found at a path.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
	EntrySkipped
)

// Entry is one path produced by Discover. Skipped entries carry a Reason;
// an entry that could not be read at all also carries Err and is reported as
// a failure rather than a skip.
type Entry struct {
	Path   string
	Kind   EntryKind
	Reason string
	Err    error
}

// DiscoverOptions controls which files are eligible.
type DiscoverOptions struct {
	Mode   Mode
	Layout Layout

	// Exclude lists files or directories to leave alone. A file is also
	// excluded when it is a SQLite companion of an excluded file
	// (-wal, -shm, -journal) or its .lock file.
	Exclude []string

	// ExcludeGlobs are doublestar patterns matched against slash-separated
	// paths relative to the root.
	ExcludeGlobs []string
}

var companionSuffixes = []string{"-wal", "-shm", "-journal", ".lock"}

// Discover walks root in lexical order and classifies every entry.
func Discover(root string, opts DiscoverOptions) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", root, kerrors.ErrIO)
	}

	for _, pattern := range opts.ExcludeGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	excludes, err := newExcludeSet(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: "unreadable", Err: fmt.Errorf("%w: %w", kerrors.ErrIO, err)})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != absRoot {
			if reason := excludedBy(path, d, absRoot, excludes, opts.ExcludeGlobs); reason != "" {
				entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: reason})
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			entries = append(entries, Entry{Path: path, Kind: EntryDirectory})
			return nil
		}

		// Skip irregular files.
		if !d.Type().IsRegular() {
			entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: "not a regular file"})
			return nil
		}

		if isTempFile(path) {
			entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: "temporary file"})
			return nil
		}

		if opts.Layout == Suffixed {
			encrypted := strings.HasSuffix(path, EncryptedSuffix)
			if opts.Mode == Encrypt && encrypted {
				entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: "already encrypted"})
				return nil
			}
			if opts.Mode == Decrypt && !encrypted {
				entries = append(entries, Entry{Path: path, Kind: EntrySkipped, Reason: "not encrypted"})
				return nil
			}
		}

		entries = append(entries, Entry{Path: path, Kind: EntryFile})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}

	return entries, nil
}

// excludeSet holds the protected paths both as cleaned absolute paths and as
// file identities. Identities catch the same file reached through a symlinked
// parent or a different spelling of the path.
type excludeSet struct {
	paths []string
	files []os.FileInfo
}

func newExcludeSet(paths []string) (*excludeSet, error) {
	set := &excludeSet{}
	for _, e := range paths {
		if e == "" {
			continue
		}
		abs, err := filepath.Abs(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
		}
		abs = filepath.Clean(abs)
		set.paths = append(set.paths, abs)

		for _, candidate := range append([]string{abs}, companionsOf(abs)...) {
			if info, err := os.Stat(candidate); err == nil {
				set.files = append(set.files, info)
			}
		}
	}
	return set, nil
}

func companionsOf(path string) []string {
	out := make([]string, 0, len(companionSuffixes))
	for _, suffix := range companionSuffixes {
		out = append(out, path+suffix)
	}
	return out
}

func (s *excludeSet) matches(path string, d fs.DirEntry) bool {
	for _, e := range s.paths {
		if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
			return true
		}
		if rest, ok := strings.CutPrefix(path, e); ok {
			for _, suffix := range companionSuffixes {
				if rest == suffix {
					return true
				}
			}
		}
	}

	if len(s.files) == 0 || d == nil {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	for _, f := range s.files {
		if os.SameFile(info, f) {
			return true
		}
	}
	return false
}

// excludedBy returns a non-empty reason when path must not be processed.
func excludedBy(path string, d fs.DirEntry, root string, excludes *excludeSet, globs []string) string {
	if excludes.matches(path, d) {
		return "excluded"
	}

	if len(globs) == 0 {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range globs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return "matches " + pattern
		}
	}
	return ""
}
