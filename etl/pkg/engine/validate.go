package engine

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// maxRawPayloadChars bounds the serialized size of the auxiliary raw_payload
// field (~50KB).
const maxRawPayloadChars = 50000

// Length bounds (inclusive) for the required fields.
const (
	eventIDMinLen  = 1
	eventIDMaxLen  = 128
	ipMinLen       = 7
	ipMaxLen       = 15
	typeMinLen     = 1
	typeMaxLen     = 50
	severityMinLen = 1
	severityMaxLen = 10
	messageMinLen  = 1
	messageMaxLen  = 2000
)

// Dotted-quad IPv4 with each octet in [0,255].
var ipv4Pattern = regexp.MustCompile(
	`^(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
		`(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
		`(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
		`(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)

// ValidateStructure enforces the structural, type, domain, and length rules
// on a canonical-shaped mapping and returns the typed, trimmed record. The
// input is read but never mutated; all trimming happens on the returned
// value. Checks run in a fixed order and fail fast with the first violated
// rule, except the required-field check which reports every missing field.
func ValidateStructure(event schema.RawEvent, p Policy) (*schema.ValidatedEvent, *Error) {
	// 1. Input must be a non-empty mapping.
	if len(event) == 0 {
		return nil, newError(KindStructure, "", "event must be a non-empty object")
	}

	// 2. Required fields present, reported as a complete list.
	var missing []string
	for _, field := range schema.RequiredFields() {
		if _, ok := event[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	// 3. Primitive types. Severity also accepts integer codes from legacy
	// producers; everything else must be a string.
	for _, field := range schema.RequiredFields() {
		v := event[field]
		if field == schema.FieldSeverity {
			if !isString(v) && !isInteger(v) {
				return nil, newError(KindType, field, "%s must be a string or integer", field)
			}
			continue
		}
		if !isString(v) {
			return nil, newError(KindType, field, "%s must be a string", field)
		}
	}

	// 4. Auxiliary raw payload: mapping or JSON-serializable, bounded size.
	var rawPayload schema.RawEvent
	if v, ok := event[schema.FieldRawPayload]; ok && v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, newError(KindPayload, schema.FieldRawPayload, "raw_payload contains non-serializable data")
		}
		if len(data) > maxRawPayloadChars {
			return nil, newError(KindPayload, schema.FieldRawPayload, "raw_payload is too large")
		}
		if m, ok := v.(map[string]any); ok {
			rawPayload = m
		}
	}

	// Local trimmed snapshot; the caller's map stays untouched.
	values := make(map[string]string, len(schema.RequiredFields()))
	for _, field := range schema.RequiredFields() {
		s, _ := coerceString(event[field])
		s = strings.TrimSpace(s)
		if field == schema.FieldEventType || field == schema.FieldSeverity {
			s = strings.ToLower(s)
		}
		values[field] = s
	}

	// 5. Non-empty after trimming.
	for _, field := range schema.RequiredFields() {
		if values[field] == "" {
			return nil, newError(KindEmptyField, field, "%s is empty", field)
		}
	}

	// 6. Format and domain rules.
	if !ipv4Pattern.MatchString(values[schema.FieldSourceIP]) {
		return nil, newError(KindFormat, schema.FieldSourceIP, "invalid source_ip format: %s", values[schema.FieldSourceIP])
	}
	if !ipv4Pattern.MatchString(values[schema.FieldDestinationIP]) {
		return nil, newError(KindFormat, schema.FieldDestinationIP, "invalid destination_ip format: %s", values[schema.FieldDestinationIP])
	}
	if _, ok := p.AllowedEventTypes[values[schema.FieldEventType]]; !ok {
		return nil, newError(KindDomain, schema.FieldEventType, "invalid event type: %s", values[schema.FieldEventType])
	}
	if _, ok := p.AllowedSeverities[values[schema.FieldSeverity]]; !ok {
		return nil, newError(KindDomain, schema.FieldSeverity, "invalid severity: %s", values[schema.FieldSeverity])
	}

	// 7. Length bounds, inclusive.
	lengthChecks := []struct {
		field    string
		min, max int
	}{
		{schema.FieldEventID, eventIDMinLen, eventIDMaxLen},
		{schema.FieldSourceIP, ipMinLen, ipMaxLen},
		{schema.FieldDestinationIP, ipMinLen, ipMaxLen},
		{schema.FieldEventType, typeMinLen, typeMaxLen},
		{schema.FieldSeverity, severityMinLen, severityMaxLen},
		{schema.FieldMessage, messageMinLen, messageMaxLen},
	}
	for _, c := range lengthChecks {
		if n := len(values[c.field]); n < c.min || n > c.max {
			return nil, newError(KindLength, c.field, "%s length must be between %d and %d characters", c.field, c.min, c.max)
		}
	}

	meta, err := extractMetadata(event)
	if err != nil {
		return nil, err
	}

	return &schema.ValidatedEvent{
		EventID:       values[schema.FieldEventID],
		EventTime:     values[schema.FieldEventTime],
		SourceIP:      values[schema.FieldSourceIP],
		DestinationIP: values[schema.FieldDestinationIP],
		EventType:     values[schema.FieldEventType],
		Severity:      values[schema.FieldSeverity],
		Message:       values[schema.FieldMessage],
		Metadata:      meta,
		RawPayload:    rawPayload,
	}, nil
}

// extractMetadata pulls the optional fields into the typed metadata block.
// Records that skipped canonicalization may still carry raw values here, so
// non-nil values must at least be strings.
func extractMetadata(event schema.RawEvent) (schema.Metadata, *Error) {
	var meta schema.Metadata
	targets := map[string]**string{
		"host":        &meta.Host,
		"device_id":   &meta.DeviceID,
		"username":    &meta.Username,
		"application": &meta.Application,
		"platform":    &meta.Platform,
		"vendor":      &meta.Vendor,
	}
	for _, field := range schema.OptionalFields() {
		v, ok := event[field]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return schema.Metadata{}, newError(KindType, field, "%s must be a string", field)
		}
		s = strings.ToLower(strings.TrimSpace(s))
		*targets[field] = &s
	}
	return meta, nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// isInteger accepts native integers and whole JSON numbers, which decode as
// float64.
func isInteger(v any) bool {
	switch t := v.(type) {
	case int, int64:
		return true
	case float64:
		return t == float64(int64(t))
	default:
		return false
	}
}
