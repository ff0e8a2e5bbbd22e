// Package relay moves audit events from the postgres outbox to Kafka.
//
// The business transaction writes events to the outbox table; this relay
// publishes them and marks them published. Rows are claimed with
// FOR UPDATE SKIP LOCKED so multiple relay instances never double-publish
// within a polling cycle, and Kafka consumers must still be idempotent on
// the event ID.
package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Relay polls the outbox and produces pending rows to a Kafka topic.
type Relay struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

// Option configures the Relay.
type Option func(*Relay)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

// WithBatchSize overrides how many outbox rows are claimed per poll.
func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batch = n }
}

// New creates a relay. The Kafka client and database handle are owned by the
// caller; Close the relay before closing either.
func New(db *sql.DB, client *kgo.Client, topic string, logger *slog.Logger, opts ...Option) (*Relay, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if client == nil {
		return nil, fmt.Errorf("kafka client is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	r := &Relay{
		db:       db,
		client:   client,
		topic:    topic,
		interval: defaultInterval,
		batch:    defaultBatchSize,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// EnsureTopic creates the audit topic if it does not exist yet. Safe to call
// on every startup.
func (r *Relay) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(r.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, r.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", r.topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := r.publishPending(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay poll failed", "error", err)
			} else if n > 0 {
				r.logger.DebugContext(ctx, "outbox relay published events", "count", n)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

// publishPending claims a batch of unpublished rows, produces them, and marks
// them published in the same transaction. If producing fails the transaction
// rolls back and the rows are retried on the next poll.
func (r *Relay) publishPending(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin relay tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batch)
	if err != nil {
		return 0, fmt.Errorf("claim outbox rows: %w", err)
	}

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	records := make([]*kgo.Record, 0, len(pending))
	for _, row := range pending {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			// Key by aggregate so one entity's events stay ordered per partition.
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		})
	}
	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return 0, fmt.Errorf("produce audit events: %w", err)
	}

	now := time.Now()
	for _, row := range pending {
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`, now, row.id); err != nil {
			return 0, fmt.Errorf("mark outbox row published: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit relay tx: %w", err)
	}
	return len(pending), nil
}
