package models

import (
	"time"

	id "turbofcl/pkg/domain"
)

// ClassificationCode is an industry classification (NAICS) attached to an
// entity. Technology-transfer checks match codes against configured
// high-technology prefixes.
type ClassificationCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Entity is a business entity subject to facility clearance assessment.
// Owned by the business-entity subsystem; the assessment engine reads it and
// never mutates it.
//
// Invariants:
//   - Name is non-empty
//   - DeletedAt, once set, is never cleared (soft delete is terminal)
type Entity struct {
	ID                  id.EntityID          `json:"id"`
	Name                string               `json:"name"`
	CageCode            string               `json:"cage_code,omitempty"`
	ClassificationCodes []ClassificationCode `json:"classification_codes,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	DeletedAt           *time.Time           `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the entity has been soft-deleted. Deleted
// entities are invisible to the assessment engine.
func (e *Entity) IsDeleted() bool {
	return e.DeletedAt != nil
}
