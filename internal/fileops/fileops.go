// Package fileops provides the filesystem primitives the storage engine
// builds on: path layout under a data directory, atomic writes, and a
// single-writer advisory lock with bounded retry on contention.
package fileops

import (
	"os"
	"path/filepath"

	"isadb/internal/dbcore"
)

// Join builds a path under root from the given segments.
func Join(root string, segments ...string) string {
	parts := append([]string{root}, segments...)
	return filepath.Join(parts...)
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "create directory %s", dir)
	}
	return nil
}

// ListSubdirs returns the names of dir's immediate subdirectories, or an
// empty slice if dir does not exist.
func ListSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dbcore.Wrap(dbcore.KindIO, err, "list %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// ReadFile reads path, wrapping absence/failure as an IOError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dbcore.Wrap(dbcore.KindIO, err, "read %s", path)
	}
	return data, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AtomicWrite writes data to path by writing to a sibling temp file and
// renaming over the destination, so a crash mid-write never leaves a
// truncated file in place.
func AtomicWrite(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "rename %s to %s", tmp, path)
	}
	return nil
}

// Remove deletes path, tolerating its absence.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "remove %s", path)
	}
	return nil
}
