// Package transform orchestrates the per-batch validation run: raw events
// come down from object storage, pass through the engine, and the split
// results land in staging, dead-letter, and warehouse storage.
package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/blobstore"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/metrics"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/repository"
	"github.com/sentryline-systems/sentryline-etl/etl/pkg/engine"
)

// BlobStore is the slice of the blob store the transformer uses.
type BlobStore interface {
	GetJSON(ctx context.Context, key string, v any) error
	PutJSON(ctx context.Context, key string, v any) error
	Newest(ctx context.Context, prefix string) (blobstore.ObjectInfo, error)
}

// Warehouse is the slice of the repository the transformer uses.
type Warehouse interface {
	SaveTransformResult(ctx context.Context, batchID string, normalized []schema.NormalizedEvent, rejected []schema.RejectedEvent) error
	RecordIngestion(ctx context.Context, entry repository.IngestionEntry) error
}

// DeadLetterPublisher mirrors rejected events onto the message bus. A nil
// publisher disables mirroring.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, batchID string, event schema.RejectedEvent) error
}

// Result summarizes one transform run.
type Result struct {
	BatchID       string
	InputCount    int
	Normalized    int
	Rejected      int
	StagingKey    string
	DeadLetterKey string
}

// Transformer runs the transform stage for one batch at a time.
type Transformer struct {
	store     BlobStore
	warehouse Warehouse
	engine    *engine.Engine
	publisher DeadLetterPublisher
	logger    *logging.Logger
	now       func() time.Time
}

// New creates the stage. publisher may be nil.
func New(store BlobStore, warehouse Warehouse, eng *engine.Engine, publisher DeadLetterPublisher, logger *logging.Logger) *Transformer {
	return &Transformer{
		store:     store,
		warehouse: warehouse,
		engine:    eng,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// StagingKey returns the object key for a batch's normalized events.
func StagingKey(batchID string, ts time.Time) string {
	return fmt.Sprintf("staging/%s/valid_events_%s.json", batchID, ts.UTC().Format("20060102_150405"))
}

// DeadLetterKey returns the object key for a batch's rejected events.
func DeadLetterKey(batchID string, ts time.Time) string {
	return fmt.Sprintf("dead_letter/%s/invalid_events_%s.json", batchID, ts.UTC().Format("20060102_150405"))
}

// Run transforms the newest raw object of the given batch. Every input
// event ends up in exactly one of the two result sets.
func (t *Transformer) Run(ctx context.Context, batchID string) (*Result, error) {
	ctx = logging.WithBatchID(ctx, batchID)
	start := t.now()

	result, err := t.run(ctx, batchID, start)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("transform", "error").Inc()
		t.recordIngestion(ctx, repository.IngestionEntry{
			BatchID:     batchID,
			Stage:       "transform",
			Status:      "failed",
			StartedAt:   start.UTC(),
			CompletedAt: t.now().UTC(),
		})
		return nil, err
	}

	metrics.BatchesTotal.WithLabelValues("transform", "ok").Inc()
	metrics.StageDuration.WithLabelValues("transform").Observe(t.now().Sub(start).Seconds())
	return result, nil
}

func (t *Transformer) run(ctx context.Context, batchID string, start time.Time) (*Result, error) {
	rawPrefix := fmt.Sprintf("raw/%s/", batchID)

	obj, err := t.store.Newest(ctx, rawPrefix)
	if err != nil {
		return nil, fmt.Errorf("transform: failed to locate raw batch %s: %w", batchID, err)
	}

	var events []schema.RawEvent
	if err := t.store.GetJSON(ctx, obj.Key, &events); err != nil {
		return nil, fmt.Errorf("transform: failed to download raw batch %s: %w", batchID, err)
	}

	normalized, rejected := t.engine.ProcessBatch(events)

	metrics.EventsProcessedTotal.WithLabelValues("normalized").Add(float64(len(normalized)))
	metrics.EventsProcessedTotal.WithLabelValues("rejected").Add(float64(len(rejected)))
	for _, r := range rejected {
		metrics.RejectionsTotal.WithLabelValues(r.ErrorType).Inc()
	}

	ts := t.now()
	result := &Result{
		BatchID:    batchID,
		InputCount: len(events),
		Normalized: len(normalized),
		Rejected:   len(rejected),
	}

	if len(normalized) > 0 {
		result.StagingKey = StagingKey(batchID, ts)
		if err := t.store.PutJSON(ctx, result.StagingKey, normalized); err != nil {
			return nil, fmt.Errorf("transform: failed to upload staging set: %w", err)
		}
	} else {
		t.logger.InfoContext(ctx, "no valid events, skipping staging upload", logging.Stage("transform"))
	}

	if len(rejected) > 0 {
		result.DeadLetterKey = DeadLetterKey(batchID, ts)
		if err := t.store.PutJSON(ctx, result.DeadLetterKey, rejected); err != nil {
			return nil, fmt.Errorf("transform: failed to upload dead-letter set: %w", err)
		}
	} else {
		t.logger.InfoContext(ctx, "no rejected events, skipping dead-letter upload", logging.Stage("transform"))
	}

	if err := t.warehouse.SaveTransformResult(ctx, batchID, normalized, rejected); err != nil {
		return nil, fmt.Errorf("transform: failed to persist batch %s: %w", batchID, err)
	}

	// Bus mirroring is best effort; the events are already persisted.
	if t.publisher != nil {
		for _, r := range rejected {
			if err := t.publisher.Publish(ctx, batchID, r); err != nil {
				t.logger.WarnContext(ctx, "failed to publish dead-letter event",
					logging.Stage("transform"), logging.ErrorType(r.ErrorType), logging.Error(err))
			}
		}
	}

	t.recordIngestion(ctx, repository.IngestionEntry{
		BatchID:          batchID,
		Stage:            "transform",
		Status:           "completed",
		RecordsProcessed: len(normalized),
		RecordsFailed:    len(rejected),
		S3Key:            result.StagingKey,
		StartedAt:        start.UTC(),
		CompletedAt:      t.now().UTC(),
	})

	t.logger.InfoContext(ctx, "transformed batch",
		logging.Stage("transform"),
		logging.Count(len(events)),
		"normalized", len(normalized),
		"rejected", len(rejected),
	)

	return result, nil
}

func (t *Transformer) recordIngestion(ctx context.Context, entry repository.IngestionEntry) {
	if err := t.warehouse.RecordIngestion(ctx, entry); err != nil {
		t.logger.WarnContext(ctx, "failed to record ingestion log",
			logging.Stage(entry.Stage), logging.Error(err))
	}
}
