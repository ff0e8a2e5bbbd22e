package locks

import (
	"context"
	"sync"

	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
)

// InMemoryLocker is a process-local Locker for tests and single-node
// deployments.
type InMemoryLocker struct {
	mu   sync.Mutex
	held map[id.EntityID]struct{}
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[id.EntityID]struct{})}
}

func (l *InMemoryLocker) Acquire(_ context.Context, entityID id.EntityID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[entityID]; ok {
		return sentinel.ErrLocked
	}
	l.held[entityID] = struct{}{}
	return nil
}

func (l *InMemoryLocker) Release(_ context.Context, entityID id.EntityID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, entityID)
	return nil
}
