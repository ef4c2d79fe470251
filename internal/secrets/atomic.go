package secrets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks in-flight files written by writeFileAtomic. Discovery
// skips them so an interrupted run never gets its own leftovers encrypted.
const tempPrefix = ".xpm-tmp-"

// renameFile is the commit step of writeFileAtomic; tests replace it to
// simulate a crash before the rename.
var renameFile = os.Rename

// writeFileAtomic writes data to a temporary file in the destination
// directory, syncs it, and renames it over path. Readers observe either the
// old content or the new content, never a partial write.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return err
	}

	return renameFile(tmpName, path)
}

func isTempFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), tempPrefix)
}
