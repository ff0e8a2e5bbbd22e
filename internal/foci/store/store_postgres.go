package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"turbofcl/internal/foci/models"
	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
	txcontext "turbofcl/pkg/platform/tx"
)

// PostgresStore persists assessments across three tables: foci_assessments
// plus the owned foci_indicators and foci_mitigations rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts the assessment and its indicators and mitigations. The
// caller is expected to supply a transaction in the context so the three
// inserts and any outbox rows commit together.
func (s *PostgresStore) Create(ctx context.Context, assessment *models.FOCIAssessment) error {
	exec := s.execer(ctx)

	query := `
		INSERT INTO foci_assessments (
			id, entity_id, assessment_type, risk_score, risk_level,
			confidence_level, submission_required, submission_urgency,
			assessment_date, assessor_id, next_review_date, validation_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := exec.ExecContext(ctx, query,
		uuid.UUID(assessment.ID),
		uuid.UUID(assessment.EntityID),
		string(assessment.Type),
		assessment.RiskScore,
		string(assessment.RiskLevel),
		string(assessment.ConfidenceLevel),
		assessment.SubmissionRequired,
		string(assessment.SubmissionUrgency),
		assessment.AssessmentDate,
		uuid.UUID(assessment.AssessorID),
		assessment.NextReviewDate,
		string(assessment.ValidationStatus),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert assessment: %w", err)
	}

	for i, ind := range assessment.Indicators {
		evidence, err := json.Marshal(ind.Evidence)
		if err != nil {
			return fmt.Errorf("marshal indicator evidence: %w", err)
		}
		_, err = exec.ExecContext(ctx, `
			INSERT INTO foci_indicators (
				assessment_id, position, category, severity, description,
				evidence, mitigation_required, regulatory_reference
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			uuid.UUID(assessment.ID),
			i,
			string(ind.Category),
			string(ind.Severity),
			ind.Description,
			evidence,
			ind.MitigationRequired,
			ind.RegulatoryReference,
		)
		if err != nil {
			return fmt.Errorf("insert indicator: %w", err)
		}
	}

	for i, m := range assessment.Mitigations {
		_, err = exec.ExecContext(ctx, `
			INSERT INTO foci_mitigations (
				assessment_id, position, measure_type, description,
				implementation_timeline, responsible_party,
				monitoring_requirements, effectiveness
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			uuid.UUID(assessment.ID),
			i,
			string(m.Type),
			m.Description,
			m.ImplementationTimeline,
			m.ResponsibleParty,
			m.MonitoringRequirements,
			m.Effectiveness,
		)
		if err != nil {
			return fmt.Errorf("insert mitigation: %w", err)
		}
	}

	return nil
}

const assessmentColumns = `
	id, entity_id, assessment_type, risk_score, risk_level,
	confidence_level, submission_required, submission_urgency,
	assessment_date, assessor_id, next_review_date, validation_status
`

func (s *PostgresStore) GetByID(ctx context.Context, assessmentID id.AssessmentID) (*models.FOCIAssessment, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM foci_assessments WHERE id = $1`,
		uuid.UUID(assessmentID),
	)
	assessment, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	if err := s.loadChildren(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *PostgresStore) FindRecentPassed(ctx context.Context, entityID id.EntityID, assessmentType models.AssessmentType, since time.Time) (*models.FOCIAssessment, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+assessmentColumns+`
		FROM foci_assessments
		WHERE entity_id = $1
		  AND assessment_type = $2
		  AND validation_status = $3
		  AND assessment_date >= $4
		ORDER BY assessment_date DESC
		LIMIT 1
	`,
		uuid.UUID(entityID),
		string(assessmentType),
		string(models.ValidationPassed),
		since,
	)
	assessment, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query recent assessment: %w", err)
	}
	if err := s.loadChildren(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityID id.EntityID) ([]models.FOCIAssessment, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+assessmentColumns+`
		FROM foci_assessments
		WHERE entity_id = $1
		ORDER BY assessment_date DESC
	`, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	// Drain the result set before loading children: on a transaction only one
	// statement can be active on the connection at a time.
	var out []models.FOCIAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	rows.Close()

	for i := range out {
		if err := s.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.FOCIAssessment, error) {
	var (
		assessment   models.FOCIAssessment
		assessmentID uuid.UUID
		entityID     uuid.UUID
		assessorID   uuid.UUID
		urgency      sql.NullString
	)
	if err := row.Scan(
		&assessmentID,
		&entityID,
		&assessment.Type,
		&assessment.RiskScore,
		&assessment.RiskLevel,
		&assessment.ConfidenceLevel,
		&assessment.SubmissionRequired,
		&urgency,
		&assessment.AssessmentDate,
		&assessorID,
		&assessment.NextReviewDate,
		&assessment.ValidationStatus,
	); err != nil {
		return nil, err
	}
	assessment.ID = id.AssessmentID(assessmentID)
	assessment.EntityID = id.EntityID(entityID)
	assessment.AssessorID = id.AssessorID(assessorID)
	if urgency.Valid {
		assessment.SubmissionUrgency = models.SubmissionUrgency(urgency.String)
	}
	return &assessment, nil
}

func (s *PostgresStore) loadChildren(ctx context.Context, assessment *models.FOCIAssessment) error {
	exec := s.execer(ctx)

	rows, err := exec.QueryContext(ctx, `
		SELECT category, severity, description, evidence,
		       mitigation_required, regulatory_reference
		FROM foci_indicators
		WHERE assessment_id = $1
		ORDER BY position ASC
	`, uuid.UUID(assessment.ID))
	if err != nil {
		return fmt.Errorf("query indicators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ind         models.FOCIIndicator
			evidenceRaw []byte
		)
		if err := rows.Scan(
			&ind.Category,
			&ind.Severity,
			&ind.Description,
			&evidenceRaw,
			&ind.MitigationRequired,
			&ind.RegulatoryReference,
		); err != nil {
			return fmt.Errorf("scan indicator: %w", err)
		}
		if len(evidenceRaw) > 0 {
			if err := json.Unmarshal(evidenceRaw, &ind.Evidence); err != nil {
				return fmt.Errorf("unmarshal indicator evidence: %w", err)
			}
		}
		assessment.Indicators = append(assessment.Indicators, ind)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate indicators: %w", err)
	}

	mRows, err := exec.QueryContext(ctx, `
		SELECT measure_type, description, implementation_timeline,
		       responsible_party, monitoring_requirements, effectiveness
		FROM foci_mitigations
		WHERE assessment_id = $1
		ORDER BY position ASC
	`, uuid.UUID(assessment.ID))
	if err != nil {
		return fmt.Errorf("query mitigations: %w", err)
	}
	defer mRows.Close()

	for mRows.Next() {
		var m models.MitigationMeasure
		if err := mRows.Scan(
			&m.Type,
			&m.Description,
			&m.ImplementationTimeline,
			&m.ResponsibleParty,
			&m.MonitoringRequirements,
			&m.Effectiveness,
		); err != nil {
			return fmt.Errorf("scan mitigation: %w", err)
		}
		assessment.Mitigations = append(assessment.Mitigations, m)
	}
	return mRows.Err()
}
