package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"turbofcl/internal/ownership/models"
	id "turbofcl/pkg/domain"
)

// Postgres reads ownership relations. Pure I/O; activity filtering and
// ordering live in SQL so the traversal sees exactly the relations in force.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ActiveRelationsFor(ctx context.Context, ownedEntityID id.EntityID, asOf time.Time) ([]models.OwnershipRelation, error) {
	query := `
		SELECT id, owned_entity_id, owner_entity_id, owner_name, owner_type,
		       citizenship, ownership_percentage, voting_percentage,
		       effective_date, termination_date,
		       is_foreign, is_controlling, relationship_type
		FROM ownership_relations
		WHERE owned_entity_id = $1
		  AND effective_date <= $2
		  AND (termination_date IS NULL OR termination_date > $2)
		ORDER BY ownership_percentage DESC
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownedEntityID), asOf)
	if err != nil {
		return nil, fmt.Errorf("query ownership relations: %w", err)
	}
	defer rows.Close()

	var relations []models.OwnershipRelation
	for rows.Next() {
		var (
			rel           models.OwnershipRelation
			relID         uuid.UUID
			ownedID       uuid.UUID
			ownerEntityID *uuid.UUID
			ownershipPct  string
			votingPct     sql.NullString
		)
		if err := rows.Scan(
			&relID,
			&ownedID,
			&ownerEntityID,
			&rel.OwnerName,
			&rel.OwnerType,
			pq.Array(&rel.Citizenship),
			&ownershipPct,
			&votingPct,
			&rel.EffectiveDate,
			&rel.TerminationDate,
			&rel.IsForeign,
			&rel.IsControlling,
			&rel.RelationshipType,
		); err != nil {
			return nil, fmt.Errorf("scan ownership relation: %w", err)
		}

		rel.ID = id.RelationID(relID)
		rel.OwnedEntityID = id.EntityID(ownedID)
		if ownerEntityID != nil {
			eid := id.EntityID(*ownerEntityID)
			rel.OwnerEntityID = &eid
		}
		rel.OwnershipPercentage, err = decimal.NewFromString(ownershipPct)
		if err != nil {
			return nil, fmt.Errorf("parse ownership percentage: %w", err)
		}
		if votingPct.Valid {
			v, err := decimal.NewFromString(votingPct.String)
			if err != nil {
				return nil, fmt.Errorf("parse voting percentage: %w", err)
			}
			rel.VotingPercentage = &v
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}
