package engine

import (
	"strings"
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// Normalize derives the warehouse-facing fields from a validated record:
// severity_level mirrors severity, category mirrors event_type, the message
// is trimmed into normalized_message, and processed_at is stamped with the
// current UTC instant. normalized_at keeps the validator's stamp when
// present. event_time is re-serialized from the parsed instant so downstream
// consumers always see RFC 3339 with an explicit offset, even when the
// producer omitted one.
//
// Normalization never fails; defects surface in ValidateTransform instead.
func Normalize(v *schema.ValidatedEvent, now time.Time) *schema.NormalizedEvent {
	normalizedAt := v.NormalizedAt
	if normalizedAt.IsZero() {
		normalizedAt = now.UTC()
	}

	eventTime := v.EventTime
	if !v.ParsedTime.IsZero() {
		eventTime = v.ParsedTime.UTC().Format(time.RFC3339)
	}

	return &schema.NormalizedEvent{
		EventID:           v.EventID,
		EventTime:         eventTime,
		SourceIP:          v.SourceIP,
		DestinationIP:     v.DestinationIP,
		EventType:         v.EventType,
		Severity:          v.Severity,
		SeverityLevel:     v.Severity,
		Category:          v.EventType,
		NormalizedMessage: strings.TrimSpace(v.Message),
		Metadata:          v.Metadata,
		ProcessedAt:       now.UTC(),
		NormalizedAt:      normalizedAt,
	}
}
