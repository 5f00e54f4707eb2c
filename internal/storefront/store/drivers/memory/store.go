package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
)

// Store keeps values in process memory. Values do not survive a restart, which
// makes it the driver of choice for tests and throwaway runs.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *Store) Close() error                 { return nil }
func (s *Store) Ping(_ context.Context) error { return nil }
