package store

import (
	"context"

	"turbofcl/internal/entity/models"
	id "turbofcl/pkg/domain"
)

// Store provides read access to business entities. Soft-deleted records are
// treated as absent: implementations return sentinel.ErrNotFound for them.
type Store interface {
	Get(ctx context.Context, entityID id.EntityID) (*models.Entity, error)
}
