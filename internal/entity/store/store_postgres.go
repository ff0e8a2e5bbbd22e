package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"turbofcl/internal/entity/models"
	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
)

// Postgres reads business entities. This store is pure I/O; the soft-delete
// filter lives in SQL so deleted entities never reach the engine.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, entityID id.EntityID) (*models.Entity, error) {
	query := `
		SELECT id, name, cage_code, classification_codes, created_at, deleted_at
		FROM business_entities
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		entity   models.Entity
		rowID    uuid.UUID
		cageCode sql.NullString
		codesRaw []byte
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(entityID)).Scan(
		&rowID,
		&entity.Name,
		&cageCode,
		&codesRaw,
		&entity.CreatedAt,
		&entity.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}

	entity.ID = id.EntityID(rowID)
	entity.CageCode = cageCode.String
	if len(codesRaw) > 0 {
		if err := json.Unmarshal(codesRaw, &entity.ClassificationCodes); err != nil {
			return nil, fmt.Errorf("unmarshal classification codes: %w", err)
		}
	}
	return &entity, nil
}
