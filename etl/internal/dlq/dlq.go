// Package dlq publishes rejected events to a NATS JetStream dead-letter
// stream, in addition to their S3 and warehouse persistence. Consumers can
// subscribe per error type via the subject hierarchy.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// StreamName is the JetStream stream that captures all dead-letter subjects.
const StreamName = "ETL_DLQ"

var streamConfig = jetstream.StreamConfig{
	Name:      StreamName,
	Subjects:  []string{"etl.dlq.>"},
	MaxAge:    7 * 24 * time.Hour,
	MaxBytes:  1024 * 1024 * 1024, // 1GB
	Retention: jetstream.LimitsPolicy,
	Storage:   jetstream.FileStorage,
}

// Entry is the message body published for each rejected event.
type Entry struct {
	BatchID   string               `json:"batch_id"`
	Event     schema.RejectedEvent `json:"event"`
	Timestamp time.Time            `json:"timestamp"`
}

// Publisher writes rejected events to the dead-letter stream.
type Publisher struct {
	conn      *nats.Conn
	js        jetstream.JetStream
	published atomic.Uint64
}

// NewPublisher connects to NATS and ensures the dead-letter stream exists.
func NewPublisher(ctx context.Context, natsURL string) (*Publisher, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("dlq: failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dlq: failed to create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dlq: failed to create stream %s: %w", StreamName, err)
	}

	return &Publisher{conn: conn, js: js}, nil
}

// Publish writes one rejected event to etl.dlq.<error_type> and waits for
// the stream acknowledgment.
func (p *Publisher) Publish(ctx context.Context, batchID string, event schema.RejectedEvent) error {
	if p == nil {
		return nil
	}

	entry := Entry{
		BatchID:   batchID,
		Event:     event,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("dlq: failed to marshal entry: %w", err)
	}

	subject := fmt.Sprintf("etl.dlq.%s", event.ErrorType)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("dlq: failed to publish to %s: %w", subject, err)
	}

	p.published.Add(1)
	return nil
}

// Published returns the number of entries published by this instance.
func (p *Publisher) Published() uint64 {
	if p == nil {
		return 0
	}
	return p.published.Load()
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
