// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so an EntityID can never be passed
// where an AssessmentID is expected. Parse helpers enforce the invariant
// that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "turbofcl/pkg/domain-errors"
)

type (
	// EntityID identifies a business entity under assessment.
	EntityID uuid.UUID

	// AssessmentID identifies a completed FOCI assessment record.
	AssessmentID uuid.UUID

	// AssessorID identifies the person conducting an assessment.
	AssessorID uuid.UUID

	// RelationID identifies an ownership relation record.
	RelationID uuid.UUID
)

func (id EntityID) String() string     { return uuid.UUID(id).String() }
func (id AssessmentID) String() string { return uuid.UUID(id).String() }
func (id AssessorID) String() string   { return uuid.UUID(id).String() }
func (id RelationID) String() string   { return uuid.UUID(id).String() }

func (id EntityID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AssessmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AssessorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RelationID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewEntityID returns a fresh random EntityID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewAssessmentID returns a fresh random AssessmentID.
func NewAssessmentID() AssessmentID { return AssessmentID(uuid.New()) }

// NewAssessorID returns a fresh random AssessorID.
func NewAssessorID() AssessorID { return AssessorID(uuid.New()) }

// NewRelationID returns a fresh random RelationID.
func NewRelationID() RelationID { return RelationID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must be non-nil")
	}
	return u, nil
}

// ParseEntityID parses and validates an entity ID from its string form.
func ParseEntityID(raw string) (EntityID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(u), nil
}

// ParseAssessmentID parses and validates an assessment ID from its string form.
func ParseAssessmentID(raw string) (AssessmentID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return AssessmentID{}, err
	}
	return AssessmentID(u), nil
}

// ParseAssessorID parses and validates an assessor ID from its string form.
func ParseAssessorID(raw string) (AssessorID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return AssessorID{}, err
	}
	return AssessorID(u), nil
}
