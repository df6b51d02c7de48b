// Package fileutil provides filesystem helpers shared by the config and cache layers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// DirPerm is the mode used for directories created under the data home.
const DirPerm = 0o750

// WriteAtomic replaces path with data. It writes a temporary file in the
// same directory, syncs it and renames it over path, so readers see either
// the old or the new content. Missing parent directories are created.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"path": "(empty)"})
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := writeAndSync(tmp, data, perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path comes from the data home, not user input
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	if d, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is the parent of path
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

func writeAndSync(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Chmod(perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	return nil
}
