package store

import (
	"context"
	"sync"
	"time"

	"turbofcl/internal/entity/models"
	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
)

// InMemory is the dev/test entity store.
type InMemory struct {
	mu       sync.RWMutex
	entities map[id.EntityID]*models.Entity
}

func NewInMemory() *InMemory {
	return &InMemory{entities: make(map[id.EntityID]*models.Entity)}
}

// Put registers an entity. Test and seed helper.
func (s *InMemory) Put(_ context.Context, entity *models.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entity
	s.entities[entity.ID] = &cp
}

func (s *InMemory) Get(_ context.Context, entityID id.EntityID) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[entityID]
	if !ok || entity.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	cp := *entity
	return &cp, nil
}

// SoftDelete marks an entity deleted. Test helper; the engine itself never
// deletes entities.
func (s *InMemory) SoftDelete(_ context.Context, entityID id.EntityID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entity, ok := s.entities[entityID]; ok {
		entity.DeletedAt = &at
	}
}
