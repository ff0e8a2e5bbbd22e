package memory

import (
	"context"
	"sync"

	id "turbofcl/pkg/domain"
	audit "turbofcl/pkg/platform/audit"
)

// InMemoryStore keeps audit events per entity. Used in dev mode and as the
// fake in unit tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.EntityID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.EntityID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.EntityID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EntityID] = append(s.events[event.EntityID], event)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityID id.EntityID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[entityID]...), nil
}

// ListAll returns all audit events across all entities.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, entityEvents := range s.events {
		all = append(all, entityEvents...)
	}
	return all, nil
}
