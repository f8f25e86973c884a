package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetToken returns a copy of the stored token.
func (s *MemoryStore) GetToken(_ context.Context) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token.Clone(), nil
}

// SetToken stores a copy of token.
func (s *MemoryStore) SetToken(_ context.Context, token *Token) error {
	if token == nil {
		return ErrNilToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token.Clone()

	return nil
}

// RemoveToken clears the store.
func (s *MemoryStore) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil

	return nil
}
