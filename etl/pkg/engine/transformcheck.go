package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// ValidateTransform re-checks a normalized record for pipeline defects:
// enrichment silently dropping a canonical field, derived fields falling out
// of sync with their sources, or a processed_at stamp that is not UTC-aware.
// A failure here signals a bug in the pipeline itself, not bad input.
func ValidateTransform(n *schema.NormalizedEvent) *Error {
	if n == nil {
		return transformError("normalized event is nil")
	}

	canonical := []struct {
		name, value string
	}{
		{schema.FieldEventID, n.EventID},
		{schema.FieldEventTime, n.EventTime},
		{schema.FieldSourceIP, n.SourceIP},
		{schema.FieldDestinationIP, n.DestinationIP},
		{schema.FieldEventType, n.EventType},
		{schema.FieldSeverity, n.Severity},
	}
	var missing []string
	for _, f := range canonical {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return transformError("canonical field(s) missing after transform: [%s]", strings.Join(missing, ", "))
	}

	derived := []struct {
		name  string
		empty bool
	}{
		{"severity_level", n.SeverityLevel == ""},
		{"category", n.Category == ""},
		{"normalized_message", n.NormalizedMessage == ""},
		{"processed_at", n.ProcessedAt.IsZero()},
	}
	missing = missing[:0]
	for _, f := range derived {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return transformError("missing transformed field(s): [%s]", strings.Join(missing, ", "))
	}

	if n.SeverityLevel != n.Severity {
		return transformError("severity_level %q does not match severity %q", n.SeverityLevel, n.Severity)
	}
	if n.Category != n.EventType {
		return transformError("category %q does not match event_type %q", n.Category, n.EventType)
	}
	if strings.TrimSpace(n.NormalizedMessage) == "" {
		return transformError("normalized_message is blank")
	}
	if n.ProcessedAt.Location() != time.UTC {
		return transformError("processed_at must be a UTC instant")
	}

	return nil
}

func transformError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindTransformValidation,
		Message: fmt.Sprintf(format, args...),
	}
}
