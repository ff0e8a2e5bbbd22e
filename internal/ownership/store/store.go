package store

import (
	"context"
	"time"

	"turbofcl/internal/ownership/models"
	id "turbofcl/pkg/domain"
)

// Store provides read access to ownership relations.
type Store interface {
	// ActiveRelationsFor returns the relations in force for an owned entity
	// on the given date, ordered by direct ownership percentage descending.
	ActiveRelationsFor(ctx context.Context, ownedEntityID id.EntityID, asOf time.Time) ([]models.OwnershipRelation, error)
}
