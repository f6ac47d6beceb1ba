// Package load copies a batch's raw events from object storage into the
// warehouse's raw schema.
package load

import (
	"context"
	"fmt"
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/blobstore"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/metrics"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/repository"
)

// BlobStore is the slice of the blob store the loader reads from.
type BlobStore interface {
	GetJSON(ctx context.Context, key string, v any) error
	Newest(ctx context.Context, prefix string) (blobstore.ObjectInfo, error)
}

// Warehouse is the slice of the repository the loader writes to.
type Warehouse interface {
	InsertRawEvents(ctx context.Context, batchID string, events []schema.RawEvent) (int, error)
	RecordIngestion(ctx context.Context, entry repository.IngestionEntry) error
}

// Result summarizes one load run.
type Result struct {
	BatchID    string
	EventCount int
	Inserted   int
	Skipped    int
}

// Loader runs the load stage.
type Loader struct {
	store     BlobStore
	warehouse Warehouse
	logger    *logging.Logger
	now       func() time.Time
}

// New creates the stage.
func New(store BlobStore, warehouse Warehouse, logger *logging.Logger) *Loader {
	return &Loader{
		store:     store,
		warehouse: warehouse,
		logger:    logger,
		now:       time.Now,
	}
}

// Run loads the newest raw object of the given batch into raw.security_logs.
// Previously loaded event IDs are skipped, so re-running a batch is safe.
func (l *Loader) Run(ctx context.Context, batchID string) (*Result, error) {
	ctx = logging.WithBatchID(ctx, batchID)
	start := l.now()

	obj, err := l.store.Newest(ctx, fmt.Sprintf("raw/%s/", batchID))
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("load: failed to locate raw batch %s: %w", batchID, err)
	}

	var events []schema.RawEvent
	if err := l.store.GetJSON(ctx, obj.Key, &events); err != nil {
		metrics.BatchesTotal.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("load: failed to download raw batch %s: %w", batchID, err)
	}

	inserted, err := l.warehouse.InsertRawEvents(ctx, batchID, events)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("load", "error").Inc()
		l.recordIngestion(ctx, repository.IngestionEntry{
			BatchID:     batchID,
			Stage:       "load",
			Status:      "failed",
			S3Key:       obj.Key,
			StartedAt:   start.UTC(),
			CompletedAt: l.now().UTC(),
		})
		return nil, fmt.Errorf("load: failed to insert raw batch %s: %w", batchID, err)
	}

	metrics.BatchesTotal.WithLabelValues("load", "ok").Inc()
	metrics.EventsLoadedTotal.Add(float64(inserted))
	metrics.StageDuration.WithLabelValues("load").Observe(l.now().Sub(start).Seconds())

	l.recordIngestion(ctx, repository.IngestionEntry{
		BatchID:          batchID,
		Stage:            "load",
		Status:           "completed",
		RecordsProcessed: inserted,
		S3Key:            obj.Key,
		StartedAt:        start.UTC(),
		CompletedAt:      l.now().UTC(),
	})

	l.logger.InfoContext(ctx, "loaded batch",
		logging.Stage("load"),
		logging.S3Key(obj.Key),
		logging.Count(len(events)),
		"inserted", inserted,
		"skipped", len(events)-inserted,
	)

	return &Result{
		BatchID:    batchID,
		EventCount: len(events),
		Inserted:   inserted,
		Skipped:    len(events) - inserted,
	}, nil
}

func (l *Loader) recordIngestion(ctx context.Context, entry repository.IngestionEntry) {
	if err := l.warehouse.RecordIngestion(ctx, entry); err != nil {
		l.logger.WarnContext(ctx, "failed to record ingestion log",
			logging.Stage(entry.Stage), logging.Error(err))
	}
}
