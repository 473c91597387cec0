package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or contain path separators.
var ErrInvalidKey = errors.New("invalid storage key")

// Adapter is a synchronous key-value store holding opaque string values.
// Get reports ok=false for a missing key; Remove of a missing key is not an error.
type Adapter interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// BaseDir returns the root data directory (~/.tl).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tl"), nil
}

// CheckKey reports whether key can be used with every Adapter.
func CheckKey(key string) error {
	return checkKey(key)
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileStore keeps each key in its own JSON file under a base directory.
type FileStore struct {
	base string
}

// NewFileStore returns a FileStore rooted at base. The directory is created on first write.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string {
	return s.base
}

// keyFilePath returns the path for the given key's file.
func (s *FileStore) keyFilePath(key string) string {
	return filepath.Join(s.base, key+".json")
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	path := s.keyFilePath(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// Set atomically replaces the value stored under key.
func (s *FileStore) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	path := s.keyFilePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(value), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Remove deletes the file for key if it exists.
func (s *FileStore) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	path := s.keyFilePath(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}
