// Package engine implements the event validation and normalization core of
// the pipeline: canonicalization of heterogeneous raw input, structural and
// temporal validation, enrichment with warehouse-facing fields, and
// classification of each record as normalized or dead-lettered.
//
// The engine is pure aside from reading the clock. Records are evaluated
// independently with no shared mutable state, so batches can be fanned out
// across workers without coordination.
package engine

import (
	"encoding/json"
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// Engine runs the per-record pipeline: canonicalize, validate structure,
// validate temporal rules, normalize, post-validate.
type Engine struct {
	policy Policy
}

// New creates an engine with the given policy. Zero-valued policy fields
// fall back to the production defaults.
func New(policy Policy) *Engine {
	return &Engine{policy: policy.withDefaults()}
}

// Default creates an engine with the production policy.
func Default() *Engine {
	return New(DefaultPolicy())
}

// Outcome is the classification of one raw record. Exactly one of the two
// fields is set.
type Outcome struct {
	Normalized *schema.NormalizedEvent
	Rejected   *schema.RejectedEvent
}

// Process classifies a single raw record. Every stage failure is converted
// into a rejection here, at the per-record boundary; no error escapes to the
// batch driver. The clock is sampled once so a record's future and staleness
// determinations agree.
func (e *Engine) Process(raw schema.RawEvent) Outcome {
	now := e.policy.Now().UTC()

	canonical, err := Canonicalize(raw)
	if err != nil {
		return Outcome{Rejected: reject(raw, err, now)}
	}

	validated, err := ValidateStructure(canonical, e.policy)
	if err != nil {
		return Outcome{Rejected: reject(canonical, err, now)}
	}

	parsed, err := ValidateTemporal(RawTime(validated.EventTime), e.policy, now)
	if err != nil {
		return Outcome{Rejected: reject(canonical, err, now)}
	}
	validated.ParsedTime = parsed
	validated.NormalizedAt = now

	normalized := Normalize(validated, now)

	if err := ValidateTransform(normalized); err != nil {
		return Outcome{Rejected: reject(canonical, err, now)}
	}

	return Outcome{Normalized: normalized}
}

// ProcessBatch classifies every record in a batch into two disjoint result
// sets. len(normalized) + len(rejected) always equals len(batch); one
// malformed record never aborts the rest.
func (e *Engine) ProcessBatch(batch []schema.RawEvent) ([]schema.NormalizedEvent, []schema.RejectedEvent) {
	normalized := make([]schema.NormalizedEvent, 0, len(batch))
	rejected := make([]schema.RejectedEvent, 0)

	for _, raw := range batch {
		outcome := e.Process(raw)
		if outcome.Normalized != nil {
			normalized = append(normalized, *outcome.Normalized)
		} else {
			rejected = append(rejected, *outcome.Rejected)
		}
	}
	return normalized, rejected
}

// reject captures the failing rule and the best-available partial record
// into a dead-letter entry.
func reject(record schema.RawEvent, err *Error, now time.Time) *schema.RejectedEvent {
	serialized, marshalErr := json.Marshal(record)
	if marshalErr != nil {
		serialized = []byte("{}")
	}

	return &schema.RejectedEvent{
		EventID:       stringField(record, schema.FieldEventID),
		EventTime:     stringField(record, schema.FieldEventTime),
		SourceIP:      stringField(record, schema.FieldSourceIP),
		DestinationIP: stringField(record, schema.FieldDestinationIP),
		RawEvent:      string(serialized),
		ErrorType:     string(err.Kind),
		ErrorMessage:  err.Message,
		LoggedAt:      now,
	}
}

func stringField(record schema.RawEvent, field string) *string {
	v, ok := record[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := coerceString(v)
	if !ok {
		return nil
	}
	return &s
}
