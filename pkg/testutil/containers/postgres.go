//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers postgres instance with the
// turbofcl schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	DSN       string
}

// schema is the full turbofcl schema. Kept inline so integration tests never
// depend on external migration tooling.
const schema = `
CREATE TABLE IF NOT EXISTS business_entities (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	cage_code TEXT NOT NULL DEFAULT '',
	classification_codes JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS ownership_relations (
	id UUID PRIMARY KEY,
	owned_entity_id UUID NOT NULL,
	owner_entity_id UUID,
	owner_name TEXT NOT NULL,
	owner_type TEXT NOT NULL,
	citizenship TEXT[] NOT NULL DEFAULT '{}',
	ownership_percentage NUMERIC(7,4) NOT NULL,
	voting_percentage NUMERIC(7,4),
	effective_date TIMESTAMPTZ NOT NULL,
	termination_date TIMESTAMPTZ,
	is_foreign BOOLEAN NOT NULL DEFAULT FALSE,
	is_controlling BOOLEAN NOT NULL DEFAULT FALSE,
	relationship_type TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_ownership_owned ON ownership_relations (owned_entity_id);

CREATE TABLE IF NOT EXISTS foci_assessments (
	id UUID PRIMARY KEY,
	entity_id UUID NOT NULL,
	assessment_type TEXT NOT NULL,
	risk_score INT NOT NULL,
	risk_level TEXT NOT NULL,
	confidence_level TEXT NOT NULL,
	submission_required BOOLEAN NOT NULL,
	submission_urgency TEXT,
	assessment_date TIMESTAMPTZ NOT NULL,
	assessor_id UUID NOT NULL,
	next_review_date TIMESTAMPTZ NOT NULL,
	validation_status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_entity ON foci_assessments (entity_id, assessment_date DESC);

CREATE TABLE IF NOT EXISTS foci_indicators (
	assessment_id UUID NOT NULL REFERENCES foci_assessments (id) ON DELETE CASCADE,
	position INT NOT NULL,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	evidence JSONB NOT NULL DEFAULT '[]',
	mitigation_required BOOLEAN NOT NULL,
	regulatory_reference TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (assessment_id, position)
);

CREATE TABLE IF NOT EXISTS foci_mitigations (
	assessment_id UUID NOT NULL REFERENCES foci_assessments (id) ON DELETE CASCADE,
	position INT NOT NULL,
	measure_type TEXT NOT NULL,
	description TEXT NOT NULL,
	implementation_timeline TEXT NOT NULL,
	responsible_party TEXT NOT NULL,
	monitoring_requirements TEXT NOT NULL,
	effectiveness TEXT NOT NULL,
	PRIMARY KEY (assessment_id, position)
);

CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox (created_at) WHERE published_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_events (
	id UUID PRIMARY KEY,
	category TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	entity_id UUID NOT NULL,
	assessment_id UUID,
	action TEXT NOT NULL,
	risk_level TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	actor_id TEXT NOT NULL DEFAULT '',
	metadata JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_events (entity_id, timestamp);
`

// NewPostgresContainer starts a postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("turbofcl_test"),
		tcpostgres.WithUsername("turbofcl"),
		tcpostgres.WithPassword("turbofcl"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Shared across suites; Ryuk reaps the container after the run.
	return &PostgresContainer{Container: container, DB: db, DSN: dsn}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
