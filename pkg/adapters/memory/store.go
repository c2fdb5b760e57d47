package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/provision/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.DeviceState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.DeviceState),
	}
}

// Save persists the state in memory.
func (s *Store) Save(ctx context.Context, deviceID string, state *domain.DeviceState) error {
	// Copy so later mutations by the caller do not leak into the store
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[deviceID] = copied
	return nil
}

// Load retrieves the state from memory.
func (s *Store) Load(ctx context.Context, deviceID string) (*domain.DeviceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[deviceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, deviceID)
	return nil
}

// List returns the stored device IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
