package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles takes user-provided paths/globs and returns matching regular
// files as absolute paths. Directories are rejected; they go through the
// directory cipher instead.
func ResolveFiles(patterns []string, workDir string) ([]string, error) {
	var files []string
	seen := make(map[string]bool) // Deduplicate.

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, workDir)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}

	return files, nil
}

func resolvePattern(pattern string, workDir string) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(workDir, pattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		matches, err := doublestar.FilepathGlob(absPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		var filtered []string
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() || isTempFile(m) {
				continue
			}
			filtered = append(filtered, m)
		}
		return filtered, nil
	}

	info, err := os.Stat(absPattern)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s: %w", pattern, kerrors.ErrIO)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, use the directory commands: %w", pattern, kerrors.ErrIO)
	}

	return []string{absPattern}, nil
}
