package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps cart state in process memory. It backs tests and local
// development where Postgres is not available.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*State
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[uuid.UUID]*State)}
}

// Get returns a copy of the cart state, or an empty cart when unknown.
func (s *MemoryStore) Get(ctx context.Context, cartID uuid.UUID) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.carts[cartID]; ok {
		return state.Clone(), nil
	}
	return NewState(cartID), nil
}

// Update applies fn under the store lock and keeps the resulting state.
func (s *MemoryStore) Update(ctx context.Context, cartID uuid.UUID, fn func(state *State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := NewState(cartID)
	if existing, ok := s.carts[cartID]; ok {
		state = existing.Clone()
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	state.recompute()
	s.carts[cartID] = state
	return state.Clone(), nil
}
