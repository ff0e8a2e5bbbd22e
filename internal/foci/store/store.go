// Package store persists completed FOCI assessments.
package store

import (
	"context"
	"time"

	"turbofcl/internal/foci/models"
	id "turbofcl/pkg/domain"
)

// Store is the assessment persistence interface. Create must write the
// assessment and its owned indicator and mitigation collections atomically;
// implementations join a transaction from the context when one is present.
type Store interface {
	// Create persists a new assessment. Returns sentinel.ErrConflict if the
	// assessment ID already exists.
	Create(ctx context.Context, assessment *models.FOCIAssessment) error

	// GetByID returns an assessment or sentinel.ErrNotFound.
	GetByID(ctx context.Context, assessmentID id.AssessmentID) (*models.FOCIAssessment, error)

	// FindRecentPassed returns the newest PASSED assessment of the given type
	// for the entity assessed at or after the cutoff, or sentinel.ErrNotFound.
	FindRecentPassed(ctx context.Context, entityID id.EntityID, assessmentType models.AssessmentType, since time.Time) (*models.FOCIAssessment, error)

	// ListByEntity returns all assessments for an entity, newest first.
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]models.FOCIAssessment, error)
}
