// Package repository persists pipeline output in the PostgreSQL warehouse.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/migrations"
)

// PostgresRepository implements warehouse persistence on a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a connection pool and verifies connectivity.
func NewPostgresRepository(ctx context.Context, connString string, maxConns int32) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Migrate applies the embedded schema migrations to the database.
func Migrate(databaseURL string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InsertRawEvents stores a batch of raw events in raw.security_logs.
// Events whose event_id was already loaded are skipped, so replaying a batch
// is safe. Returns the number of rows actually inserted.
func (r *PostgresRepository) InsertRawEvents(ctx context.Context, batchID string, events []schema.RawEvent) (int, error) {
	query := `
		INSERT INTO raw.security_logs (batch_id, event_id, raw_event, ingested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`

	inserted := 0
	now := time.Now().UTC()
	for _, event := range events {
		raw, err := json.Marshal(event)
		if err != nil {
			return inserted, fmt.Errorf("failed to serialize raw event: %w", err)
		}

		var eventID *string
		if id, ok := event[schema.FieldEventID].(string); ok && id != "" {
			eventID = &id
		}

		tag, err := r.pool.Exec(ctx, query, batchID, eventID, raw, now)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert raw event: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// SaveTransformResult stores a batch's normalized events and validation
// errors in one transaction.
func (r *PostgresRepository) SaveTransformResult(ctx context.Context, batchID string, normalized []schema.NormalizedEvent, rejected []schema.RejectedEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	parsedQuery := `
		INSERT INTO staging.parsed_events (
			event_id, batch_id, event_time, source_ip, destination_ip,
			event_type, severity, severity_level, category,
			normalized_message, metadata, processed_at, normalized_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, e := range normalized {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata: %w", err)
		}

		eventTime, err := time.Parse(time.RFC3339, e.EventTime)
		if err != nil {
			return fmt.Errorf("failed to parse event_time %q: %w", e.EventTime, err)
		}

		_, err = tx.Exec(ctx, parsedQuery,
			e.EventID, batchID, eventTime, e.SourceIP, e.DestinationIP,
			e.EventType, e.Severity, e.SeverityLevel, e.Category,
			e.NormalizedMessage, metadata, e.ProcessedAt, e.NormalizedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert parsed event %s: %w", e.EventID, err)
		}
	}

	errorQuery := `
		INSERT INTO staging.validation_errors (
			batch_id, event_id, event_time, source_ip, destination_ip,
			raw_event, error_type, error_message, logged_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, e := range rejected {
		_, err = tx.Exec(ctx, errorQuery,
			batchID, e.EventID, e.EventTime, e.SourceIP, e.DestinationIP,
			e.RawEvent, e.ErrorType, e.ErrorMessage, e.LoggedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert validation error: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transform result: %w", err)
	}
	return nil
}

// IngestionEntry is one per-batch per-stage record in raw.ingestion_log.
type IngestionEntry struct {
	BatchID          string
	Stage            string
	Status           string
	RecordsProcessed int
	RecordsFailed    int
	S3Key            string
	StartedAt        time.Time
	CompletedAt      time.Time
}

// RecordIngestion upserts a stage's ingestion_log row. Re-running a stage
// for the same batch overwrites the previous outcome.
func (r *PostgresRepository) RecordIngestion(ctx context.Context, entry IngestionEntry) error {
	query := `
		INSERT INTO raw.ingestion_log (
			batch_id, stage, status, records_processed, records_failed,
			s3_key, started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (batch_id, stage) DO UPDATE SET
			status            = EXCLUDED.status,
			records_processed = EXCLUDED.records_processed,
			records_failed    = EXCLUDED.records_failed,
			s3_key            = EXCLUDED.s3_key,
			started_at        = EXCLUDED.started_at,
			completed_at      = EXCLUDED.completed_at
	`

	_, err := r.pool.Exec(ctx, query,
		entry.BatchID, entry.Stage, entry.Status,
		entry.RecordsProcessed, entry.RecordsFailed,
		entry.S3Key, entry.StartedAt, entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion log: %w", err)
	}
	return nil
}
