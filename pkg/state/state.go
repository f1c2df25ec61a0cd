// Package state persists the last successful scan time between runs.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store reads and writes the last-check timestamp file.
type Store struct {
	path string
}

// NewStore returns a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// LastCheck returns the recorded timestamp. A missing file is not an
// error; the zero time tells the caller to pick a default window.
func (s *Store) LastCheck() (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	return t, nil
}

// SetLastCheck records t in RFC 3339 form, creating the parent directory
// on first use.
func (s *Store) SetLastCheck(t time.Time) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create state directory %s: %w", dir, err)
		}
	}

	data := t.UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(s.path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("write state file %s: %w", s.path, err)
	}
	return nil
}
