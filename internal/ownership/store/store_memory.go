package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"turbofcl/internal/ownership/models"
	id "turbofcl/pkg/domain"
)

// InMemory is the dev/test ownership relation store.
type InMemory struct {
	mu        sync.RWMutex
	relations map[id.EntityID][]models.OwnershipRelation
}

func NewInMemory() *InMemory {
	return &InMemory{relations: make(map[id.EntityID][]models.OwnershipRelation)}
}

// Add records a relation. Test and seed helper; relations are immutable once
// added.
func (s *InMemory) Add(_ context.Context, relation models.OwnershipRelation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[relation.OwnedEntityID] = append(s.relations[relation.OwnedEntityID], relation)
}

// Clear removes all relations. Test helper.
func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations = make(map[id.EntityID][]models.OwnershipRelation)
}

func (s *InMemory) ActiveRelationsFor(_ context.Context, ownedEntityID id.EntityID, asOf time.Time) ([]models.OwnershipRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []models.OwnershipRelation
	for _, rel := range s.relations[ownedEntityID] {
		if rel.ActiveAt(asOf) {
			active = append(active, rel)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].OwnershipPercentage.GreaterThan(active[j].OwnershipPercentage)
	})
	return active, nil
}
