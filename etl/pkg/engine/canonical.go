package engine

import (
	"strconv"
	"strings"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// Canonicalize coerces a raw event into the fixed canonical shape: upstream
// field aliases are mapped onto canonical names, required scalar values are
// stringified and trimmed (event_type and severity additionally lower-cased),
// and every recognized optional field is present afterwards, either as a
// normalized string or as an explicit nil.
//
// The input map is never mutated; a fresh map is returned. Canonicalization
// is idempotent: running it on an already-canonical record yields an
// identical record.
func Canonicalize(raw schema.RawEvent) (schema.RawEvent, *Error) {
	out := make(schema.RawEvent, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	// Upstream producers send "timestamp" and "description"; the pipeline
	// speaks "event_time" and "message".
	mapAlias(out, schema.UpstreamFieldTimestamp, schema.FieldEventTime)
	mapAlias(out, schema.UpstreamFieldDescription, schema.FieldMessage)

	for _, field := range schema.RequiredFields() {
		v, ok := out[field]
		if !ok || v == nil {
			continue // reported by the structural validator, with the full list
		}
		s, ok := coerceString(v)
		if !ok {
			continue // wrong-type values are left for the type check to name
		}
		s = strings.TrimSpace(s)
		if field == schema.FieldEventType || field == schema.FieldSeverity {
			s = strings.ToLower(s)
		}
		out[field] = s
	}

	for _, field := range schema.OptionalFields() {
		v, ok := out[field]
		if !ok || v == nil {
			out[field] = nil
			continue
		}
		s, ok := coerceString(v)
		if !ok {
			return nil, newError(KindType, field, "%s is not string-coercible", field)
		}
		out[field] = strings.ToLower(strings.TrimSpace(s))
	}

	return out, nil
}

// mapAlias moves src to dst unless dst is already populated.
func mapAlias(m schema.RawEvent, src, dst string) {
	v, ok := m[src]
	if !ok {
		return
	}
	if _, exists := m[dst]; !exists {
		m[dst] = v
	}
	delete(m, src)
}

// coerceString converts scalar values to their string representation.
// Composite values (maps, slices) are not coercible.
func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
