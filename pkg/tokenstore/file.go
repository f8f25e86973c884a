package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File permissions for persisted tokens.
const (
	tokenFileMode = 0o600
	tokenDirMode  = 0o700
)

// FileStore keeps the token in a JSON file readable only by the owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the token at path. The directory is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// GetToken reads the file. A missing file is an empty store; a corrupt one
// is deleted.
func (s *FileStore) GetToken(_ context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	token, err := Decode(data)
	if err != nil {
		return nil, s.remove()
	}

	return token, nil
}

// SetToken writes the file atomically.
func (s *FileStore) SetToken(_ context.Context, token *Token) error {
	data, err := Encode(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.MkdirAll(filepath.Dir(s.path), tokenDirMode)
	if err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := s.path + ".tmp"

	err = os.WriteFile(tmp, data, tokenFileMode)
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	err = os.Rename(tmp, s.path)
	if err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// RemoveToken deletes the file.
func (s *FileStore) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *FileStore) remove() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}

	return nil
}
