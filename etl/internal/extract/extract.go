// Package extract pulls event batches from the source API and lands them in
// object storage for the transform stage.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/metrics"
)

// The API echoes fault_rate back as a float; tolerate representation noise.
const faultRateTolerance = 1e-6

// BlobStore is the slice of the blob store the extractor writes to.
type BlobStore interface {
	PutJSON(ctx context.Context, key string, v any) error
}

// Client fetches batches from the mock ingestion API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchBatch requests a batch of size events at the given fault rate and
// validates the response envelope before returning it.
func (c *Client) FetchBatch(ctx context.Context, size int, faultRate float64) (*schema.BatchResponse, error) {
	q := url.Values{}
	q.Set("size", strconv.Itoa(size))
	q.Set("fault_rate", strconv.FormatFloat(faultRate, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/events/batch?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("extract: failed to build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: batch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: batch request returned status %d", resp.StatusCode)
	}

	var batch schema.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("extract: failed to decode batch response: %w", err)
	}

	if err := ValidateResponse(&batch, size, faultRate); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ValidateResponse checks the batch envelope against what was requested.
func ValidateResponse(batch *schema.BatchResponse, requestedSize int, requestedFaultRate float64) error {
	if batch.Events == nil {
		return fmt.Errorf("extract: response has no events list")
	}
	if batch.Size != requestedSize {
		return fmt.Errorf("extract: response size %d does not match requested %d", batch.Size, requestedSize)
	}
	if len(batch.Events) != batch.Size {
		return fmt.Errorf("extract: events length %d does not match size %d", len(batch.Events), batch.Size)
	}
	if batch.ValidEvents < 0 || batch.InvalidEvents < 0 {
		return fmt.Errorf("extract: negative event counts (valid=%d invalid=%d)", batch.ValidEvents, batch.InvalidEvents)
	}
	if batch.ValidEvents+batch.InvalidEvents != batch.Size {
		return fmt.Errorf("extract: counts do not add up (valid=%d invalid=%d size=%d)",
			batch.ValidEvents, batch.InvalidEvents, batch.Size)
	}
	if math.Abs(batch.FaultRate-requestedFaultRate) > faultRateTolerance {
		return fmt.Errorf("extract: response fault_rate %g does not match requested %g", batch.FaultRate, requestedFaultRate)
	}
	return nil
}

// Result summarizes one extract run.
type Result struct {
	BatchID       string
	Key           string
	EventCount    int
	ValidEvents   int
	InvalidEvents int
}

// Extractor runs the extract stage: fetch a batch, assign it a batch ID,
// land the raw events in object storage.
type Extractor struct {
	client *Client
	store  BlobStore
	logger *logging.Logger

	size      int
	faultRate float64
	now       func() time.Time
}

// NewExtractor creates the stage.
func NewExtractor(client *Client, store BlobStore, size int, faultRate float64, logger *logging.Logger) *Extractor {
	return &Extractor{
		client:    client,
		store:     store,
		logger:    logger,
		size:      size,
		faultRate: faultRate,
		now:       time.Now,
	}
}

// RawKey returns the object key for a batch's raw events.
func RawKey(batchID string, ts time.Time) string {
	return fmt.Sprintf("raw/%s/raw_events_%s.json", batchID, ts.UTC().Format("20060102_150405"))
}

// Run executes one extract.
func (e *Extractor) Run(ctx context.Context) (*Result, error) {
	start := e.now()

	batch, err := e.client.FetchBatch(ctx, e.size, e.faultRate)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("extract", "error").Inc()
		return nil, err
	}

	batchID := uuid.NewString()
	ctx = logging.WithBatchID(ctx, batchID)
	key := RawKey(batchID, e.now())

	if err := e.store.PutJSON(ctx, key, batch.Events); err != nil {
		metrics.BatchesTotal.WithLabelValues("extract", "error").Inc()
		return nil, fmt.Errorf("extract: failed to land batch %s: %w", batchID, err)
	}

	metrics.BatchesTotal.WithLabelValues("extract", "ok").Inc()
	metrics.EventsExtractedTotal.Add(float64(len(batch.Events)))
	metrics.StageDuration.WithLabelValues("extract").Observe(e.now().Sub(start).Seconds())

	e.logger.InfoContext(ctx, "extracted batch",
		logging.Stage("extract"),
		logging.S3Key(key),
		logging.Count(len(batch.Events)),
		"valid_events", batch.ValidEvents,
		"invalid_events", batch.InvalidEvents,
	)

	return &Result{
		BatchID:       batchID,
		Key:           key,
		EventCount:    len(batch.Events),
		ValidEvents:   batch.ValidEvents,
		InvalidEvents: batch.InvalidEvents,
	}, nil
}
