package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "turbofcl/pkg/domain"
	audit "turbofcl/pkg/platform/audit"
	txcontext "turbofcl/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table inside the caller's transaction and
// relayed to Kafka by the outbox relay. Kafka is the source of truth for
// downstream audit consumers; audit_events is the queryable materialization.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka.
// Field names match audit.Event for proper deserialization by consumers.
type outboxPayload struct {
	ID           string            `json:"ID"`
	Category     string            `json:"Category"`
	Timestamp    string            `json:"Timestamp"`
	EntityID     string            `json:"EntityID"`
	AssessmentID string            `json:"AssessmentID,omitempty"`
	Action       string            `json:"Action"`
	RiskLevel    string            `json:"RiskLevel,omitempty"`
	Reason       string            `json:"Reason,omitempty"`
	RequestID    string            `json:"RequestID,omitempty"`
	ActorID      string            `json:"ActorID,omitempty"`
	Metadata     map[string]string `json:"Metadata,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
// When the context carries a transaction the insert joins it, so the event
// commits or rolls back with the assessment it describes.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		EntityID:  event.EntityID.String(),
		Action:    event.Action,
		RiskLevel: event.RiskLevel,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		Metadata:  event.Metadata,
	}
	if !event.AssessmentID.IsNil() {
		payload.AssessmentID = event.AssessmentID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID,
		"entity",
		event.EntityID.String(),
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByEntity returns materialized events for an entity, oldest first.
func (s *Store) ListByEntity(ctx context.Context, entityID id.EntityID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, entity_id, assessment_id, action,
			   risk_level, reason, request_id, actor_id, metadata
		FROM audit_events
		WHERE entity_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event        audit.Event
			entityUUID   uuid.UUID
			assessmentID sql.NullString
			metadataRaw  []byte
		)
		if err := rows.Scan(
			&event.Category,
			&event.Timestamp,
			&entityUUID,
			&assessmentID,
			&event.Action,
			&event.RiskLevel,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
			&metadataRaw,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.EntityID = id.EntityID(entityUUID)
		if assessmentID.Valid {
			parsed, err := id.ParseAssessmentID(assessmentID.String)
			if err == nil {
				event.AssessmentID = parsed
			}
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// AppendWithID materializes an event into audit_events with a specific ID.
// Used by the Kafka consumer side; idempotent via ON CONFLICT DO NOTHING.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, entity_id, assessment_id, action,
			risk_level, reason, request_id, actor_id, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	var assessmentID *uuid.UUID
	if !event.AssessmentID.IsNil() {
		aid := uuid.UUID(event.AssessmentID)
		assessmentID = &aid
	}

	var metadataRaw []byte
	if len(event.Metadata) > 0 {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadataRaw = raw
	}

	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		uuid.UUID(event.EntityID),
		assessmentID,
		event.Action,
		event.RiskLevel,
		event.Reason,
		event.RequestID,
		event.ActorID,
		metadataRaw,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
