package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("no saved session")

// FileStore keeps one session snapshot in a plain file
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a store at path, creating its directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("settings path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load returns the saved snapshot
func (s *FileStore) Load() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Save replaces the saved snapshot. A crash mid write leaves the previous one.
func (s *FileStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return WriteFileAtomic(s.path, data, 0600)
}

// Remove deletes the saved snapshot. Removing nothing is not an error.
func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove settings: %w", err)
	}
	return nil
}

// Exists reports whether a snapshot has been saved
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the settings file path
func (s *FileStore) Path() string {
	return s.path
}

// WriteFileAtomic writes data to a temporary file in the same directory and
// renames it over path
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(perm)
	}
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
