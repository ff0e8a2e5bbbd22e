// Package locks provides per-entity mutual exclusion so only one assessment
// runs for a given entity at a time.
package locks

import (
	"context"

	id "turbofcl/pkg/domain"
)

// Locker acquires and releases a per-entity lock. Acquire returns
// sentinel.ErrLocked when another holder already has the entity.
type Locker interface {
	Acquire(ctx context.Context, entityID id.EntityID) error
	Release(ctx context.Context, entityID id.EntityID) error
}
