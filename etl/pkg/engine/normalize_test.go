package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/pkg/engine"
)

func TestNormalize_DerivedFields(t *testing.T) {
	validated := &schema.ValidatedEvent{
		EventID:       "evt_1001",
		EventTime:     "2025-10-29T13:05:44Z",
		SourceIP:      "45.19.34.10",
		DestinationIP: "10.0.0.5",
		EventType:     "unauthorized_login",
		Severity:      "high",
		Message:       "  Multiple failed SSH login attempts.  ",
		NormalizedAt:  testNow,
	}

	n := engine.Normalize(validated, testNow)

	assert.Equal(t, validated.Severity, n.SeverityLevel)
	assert.Equal(t, validated.EventType, n.Category)
	assert.Equal(t, "Multiple failed SSH login attempts.", n.NormalizedMessage)
	assert.Equal(t, testNow, n.ProcessedAt)
	assert.Equal(t, time.UTC, n.ProcessedAt.Location())
	assert.Equal(t, testNow, n.NormalizedAt)
}

func TestNormalize_StampsNormalizedAtWhenUnset(t *testing.T) {
	n := engine.Normalize(&schema.ValidatedEvent{
		EventID:  "evt_1002",
		Severity: "low",
		Message:  "blocked",
	}, testNow)

	assert.Equal(t, testNow, n.NormalizedAt)
}

func TestNormalize_CanonicalEventTime(t *testing.T) {
	n := engine.Normalize(&schema.ValidatedEvent{
		EventID:    "evt_1004",
		EventTime:  "2025-10-29T13:05:44",
		ParsedTime: time.Date(2025, 10, 29, 13, 5, 44, 0, time.UTC),
		Severity:   "low",
		Message:    "blocked",
	}, testNow)

	assert.Equal(t, "2025-10-29T13:05:44Z", n.EventTime)
}

func TestNormalize_CarriesMetadata(t *testing.T) {
	host := "workstation-12"
	n := engine.Normalize(&schema.ValidatedEvent{
		EventID:  "evt_1003",
		Severity: "low",
		Message:  "blocked",
		Metadata: schema.Metadata{Host: &host},
	}, testNow)

	if assert.NotNil(t, n.Metadata.Host) {
		assert.Equal(t, "workstation-12", *n.Metadata.Host)
	}
	assert.Nil(t, n.Metadata.Vendor)
}
