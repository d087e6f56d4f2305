package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the full-dataset snapshot at a single named location.
// Writes go to a temporary file in the same directory followed by a rename,
// so a reader never observes a half-written snapshot and a failed write
// leaves any prior snapshot intact.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location
func (s *FileStore) Path() string {
	return s.path
}

// Write atomically replaces the snapshot with doc
func (s *FileStore) Write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Read loads and decodes the snapshot. Returns ErrNotFound when no snapshot
// exists, ErrParse when the content cannot be decoded.
func (s *FileStore) Read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return &doc, nil
}

// Stat reports whether a snapshot exists and its size in bytes
func (s *FileStore) Stat() (exists bool, sizeBytes int64) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, 0
	}
	return true, info.Size()
}
