package store

import (
	"context"
	"sync"

	"propflow/internal/property"
)

// MemoryStore keeps canonical properties in a map. The default backend when
// no database is configured, and the test double everywhere else.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[string]property.Property
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[string]property.Property),
	}
}

// FindByID returns a copy of the stored property, or ErrNotFound.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*property.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Insert stores a new property keyed by its deterministic id.
func (s *MemoryStore) Insert(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ID] = *p
	return nil
}

// Update overwrites an existing property. Returns ErrNotFound when the id
// was never inserted.
func (s *MemoryStore) Update(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return ErrNotFound
	}
	s.properties[p.ID] = *p
	return nil
}

// Count returns the number of stored properties.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.properties)
}

// All returns a snapshot of every stored property.
func (s *MemoryStore) All() []property.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]property.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	return out
}
