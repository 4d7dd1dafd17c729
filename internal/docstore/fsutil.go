package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// readFile reads a data file. A missing file matches both ErrNotFound and
// fs.ErrNotExist; every other failure matches ErrIO.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, filepath.Base(path), err)
		}
		return nil, ioError("read", path, err)
	}
	return data, nil
}

// writeFile replaces path with data atomically: the bytes go to a temp
// file in the same directory, are synced, and the temp file is renamed
// over the target. Readers see either the old or the new contents.
func writeFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioError("create temp for", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return ioError("write", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return ioError("sync", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return ioError("close", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return ioError("chmod", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return ioError("rename", path, err)
	}
	return nil
}

// isTempFile reports whether name is a hidden or in-progress file that
// must be ignored when enumerating a directory.
func isTempFile(name string) bool {
	return (len(name) > 0 && name[0] == '.') || filepath.Ext(name) == ".tmp"
}
