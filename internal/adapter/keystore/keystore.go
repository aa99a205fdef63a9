// Package keystore is a file-backed secure key-value store: one file per
// entry, 0600 permissions, under a 0700 directory. It holds the device
// key, device identity and the operator's export key material.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile(`^[a-z0-9._-]+$`)

// FileStore implements ports.SecureStore on the local filesystem.
type FileStore struct {
	dir string
}

// New creates the store directory (0700) if needed.
func New(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("empty keystore dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating keystore dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get returns the stored value for name, or "" when unset.
func (s *FileStore) Get(name string) (string, error) {
	path, err := s.entryPath(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading keystore entry: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Set writes the value for name with 0600 permissions.
func (s *FileStore) Set(name, value string) error {
	path, err := s.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
		return fmt.Errorf("writing keystore entry: %w", err)
	}
	return nil
}

func (s *FileStore) entryPath(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("invalid keystore entry name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
