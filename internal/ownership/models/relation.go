package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "turbofcl/pkg/domain"
)

// OwnerType classifies who holds an ownership stake.
type OwnerType string

const (
	OwnerTypeCorporation OwnerType = "CORPORATION"
	OwnerTypeIndividual  OwnerType = "INDIVIDUAL"
	OwnerTypeGovernment  OwnerType = "GOVERNMENT"
	OwnerTypeTrust       OwnerType = "TRUST"
	OwnerTypeFund        OwnerType = "FUND"
)

// OwnershipRelation records one owner's stake in an entity.
//
// Relations are immutable once recorded: a change in ownership is expressed
// by terminating the old relation (TerminationDate) and recording a new one,
// never by editing in place. This keeps historical assessments reproducible.
type OwnershipRelation struct {
	ID            id.RelationID
	OwnedEntityID id.EntityID

	// OwnerEntityID is set when the owner is itself a tracked entity;
	// individual owners carry only a name and citizenship list.
	OwnerEntityID *id.EntityID
	OwnerName     string
	OwnerType     OwnerType
	Citizenship   []string

	// OwnershipPercentage is the direct stake in the owned entity, 0-100.
	OwnershipPercentage decimal.Decimal
	// VotingPercentage is nil when voting rights track ownership.
	VotingPercentage *decimal.Decimal

	EffectiveDate   time.Time
	TerminationDate *time.Time

	IsForeign        bool
	IsControlling    bool
	RelationshipType string
}

// ActiveAt reports whether the relation is in force on the given date:
// effective on or before it, and not terminated by it.
func (r *OwnershipRelation) ActiveAt(asOf time.Time) bool {
	if r.EffectiveDate.After(asOf) {
		return false
	}
	return r.TerminationDate == nil || r.TerminationDate.After(asOf)
}
