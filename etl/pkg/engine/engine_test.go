package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/pkg/engine"
)

// fixedEngine pins the clock so classifications are reproducible.
func fixedEngine() *engine.Engine {
	policy := engine.DefaultPolicy()
	policy.Now = func() time.Time { return testNow }
	return engine.New(policy)
}

func rawFixture() schema.RawEvent {
	return schema.RawEvent{
		"event_id":       "evt_1",
		"timestamp":      "2025-10-29T13:05:44Z",
		"source_ip":      "45.19.34.10",
		"destination_ip": "10.0.0.5",
		"event_type":     "UNAUTHORIZED_LOGIN",
		"severity":       "HIGH",
		"description":    "test",
	}
}

func TestProcess_ValidRecordRoundTrip(t *testing.T) {
	outcome := fixedEngine().Process(rawFixture())

	require.NotNil(t, outcome.Normalized)
	require.Nil(t, outcome.Rejected)

	n := outcome.Normalized
	assert.Equal(t, "evt_1", n.EventID)
	assert.Equal(t, "unauthorized_login", n.EventType)
	assert.Equal(t, "high", n.Severity)
	assert.Equal(t, "unauthorized_login", n.Category)
	assert.Equal(t, "high", n.SeverityLevel)
	assert.Equal(t, "test", n.NormalizedMessage)
	assert.Equal(t, testNow, n.ProcessedAt)
	assert.Equal(t, testNow, n.NormalizedAt)
}

func TestProcess_OffsetlessTimestampCanonicalized(t *testing.T) {
	raw := rawFixture()
	raw["timestamp"] = "2025-10-29T13:05:44"

	outcome := fixedEngine().Process(raw)
	require.NotNil(t, outcome.Normalized)

	// Downstream consumers parse event_time strictly, so the accepted
	// offset-less form must come out with an explicit offset.
	n := outcome.Normalized
	assert.Equal(t, "2025-10-29T13:05:44Z", n.EventTime)
	parsed, err := time.Parse(time.RFC3339, n.EventTime)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 29, 13, 5, 44, 0, time.UTC), parsed)
}

func TestProcess_Rejections(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(schema.RawEvent)
		errorType string
		contains  string
	}{
		{
			name:      "missing source_ip",
			mutate:    func(e schema.RawEvent) { delete(e, "source_ip") },
			errorType: "MissingFieldError",
			contains:  "source_ip",
		},
		{
			name:      "invalid destination_ip",
			mutate:    func(e schema.RawEvent) { e["destination_ip"] = "999.999.999.999" },
			errorType: "FormatError",
			contains:  "destination_ip",
		},
		{
			name:      "unknown event type",
			mutate:    func(e schema.RawEvent) { e["event_type"] = "not_a_real_type" },
			errorType: "DomainError",
			contains:  "not_a_real_type",
		},
		{
			name:      "unparseable timestamp",
			mutate:    func(e schema.RawEvent) { e["timestamp"] = "BAD_TIMESTAMP" },
			errorType: "TimestampFormatError",
			contains:  "BAD_TIMESTAMP",
		},
		{
			name:      "future timestamp",
			mutate:    func(e schema.RawEvent) { e["timestamp"] = testNow.Add(time.Second).Format(time.RFC3339) },
			errorType: "FutureTimestampError",
			contains:  "future",
		},
		{
			name: "stale timestamp",
			mutate: func(e schema.RawEvent) {
				e["timestamp"] = testNow.Add(-engine.DefaultRetentionWindow - time.Second).Format(time.RFC3339)
			},
			errorType: "StaleTimestampError",
			contains:  "retention",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawFixture()
			tc.mutate(raw)

			outcome := fixedEngine().Process(raw)
			require.Nil(t, outcome.Normalized)
			require.NotNil(t, outcome.Rejected)

			r := outcome.Rejected
			assert.Equal(t, tc.errorType, r.ErrorType)
			assert.Contains(t, r.ErrorMessage, tc.contains)
			assert.Equal(t, testNow, r.LoggedAt)
			assert.NotEmpty(t, r.RawEvent)
		})
	}
}

func TestProcess_RejectionCarriesPartialRecord(t *testing.T) {
	raw := rawFixture()
	delete(raw, "source_ip")

	outcome := fixedEngine().Process(raw)
	require.NotNil(t, outcome.Rejected)

	r := outcome.Rejected
	if assert.NotNil(t, r.EventID) {
		assert.Equal(t, "evt_1", *r.EventID)
	}
	assert.Nil(t, r.SourceIP)

	// The serialized record is the canonical form, with upstream aliases
	// already mapped.
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.RawEvent), &payload))
	assert.Equal(t, "2025-10-29T13:05:44Z", payload["event_time"])
	assert.NotContains(t, payload, "timestamp")
}

func TestProcess_Deterministic(t *testing.T) {
	e := fixedEngine()
	raw := rawFixture()
	raw["event_type"] = "not_a_real_type"

	first := e.Process(raw)
	second := e.Process(raw)

	require.NotNil(t, first.Rejected)
	require.NotNil(t, second.Rejected)
	assert.Equal(t, first.Rejected, second.Rejected)
}

func TestProcess_DoesNotMutateCallerRecord(t *testing.T) {
	raw := rawFixture()
	fixedEngine().Process(raw)

	assert.Equal(t, "UNAUTHORIZED_LOGIN", raw["event_type"])
	assert.Contains(t, raw, "timestamp")
	assert.NotContains(t, raw, "host")
}

func TestProcessBatch_Completeness(t *testing.T) {
	batch := []schema.RawEvent{}
	for i := 0; i < 6; i++ {
		batch = append(batch, rawFixture())
	}
	batch[1]["severity"] = "urgent"
	delete(batch[3], "destination_ip")
	batch[4]["timestamp"] = "BAD_TIMESTAMP"

	normalized, rejected := fixedEngine().ProcessBatch(batch)

	assert.Len(t, normalized, 3)
	assert.Len(t, rejected, 3)
	assert.Equal(t, len(batch), len(normalized)+len(rejected))

	assert.Equal(t, "DomainError", rejected[0].ErrorType)
	assert.Equal(t, "MissingFieldError", rejected[1].ErrorType)
	assert.Equal(t, "TimestampFormatError", rejected[2].ErrorType)
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	normalized, rejected := fixedEngine().ProcessBatch(nil)
	assert.Empty(t, normalized)
	assert.Empty(t, rejected)
}
