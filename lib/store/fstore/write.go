package fstore

import (
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks files that are still being written.
// Temp files never carry the key suffix, so the initialization scan ignores them.
const tempPrefix = ".tmp-"

// writeFileAtomic writes data to a temp file in the directory of path and renames
// it over path. Readers observe either no file or the complete file. If any step
// fails the temp file is removed and path is left untouched.
func writeFileAtomic(path string, data []byte, perm os.FileMode, sync bool) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix+"*")
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

	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if sync {
		if err = tmp.Sync(); err != nil {
			return err
		}
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// isTempFile reports whether name belongs to an unfinished write
func isTempFile(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}
