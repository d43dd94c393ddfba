package token

import (
	"context"
	"sync"
)

// Store persists the cached token for one integration record. Save is assumed
// atomic at the granularity of a single record; read-after-write consistency
// with the backing store is assumed, not verified.
type Store interface {
	Load(ctx context.Context) (Token, error)
	Save(ctx context.Context, tok Token) error
}

// MemoryStore is an in-process Store, primarily for tests and single-process
// deployments.
type MemoryStore struct {
	mu  sync.RWMutex
	tok Token
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored token. An empty store yields a zero Token.
func (s *MemoryStore) Load(ctx context.Context) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok, nil
}

// Save replaces the stored token.
func (s *MemoryStore) Save(ctx context.Context, tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}
