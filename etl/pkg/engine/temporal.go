package engine

import (
	"regexp"
	"strings"
	"time"
)

// TimeValue is a tagged timestamp input: either a raw string still to be
// parsed or an instant that was parsed upstream. The explicit tag keeps the
// temporal validator's branch visible instead of relying on runtime type
// inspection.
type TimeValue struct {
	raw    string
	parsed time.Time
	isRaw  bool
}

// RawTime wraps an unparsed timestamp string.
func RawTime(s string) TimeValue {
	return TimeValue{raw: s, isRaw: true}
}

// ParsedTime wraps an instant that was already parsed upstream.
func ParsedTime(t time.Time) TimeValue {
	return TimeValue{parsed: t}
}

var utcOffsetSuffix = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

// ValidateTemporal parses the event time and enforces the business rules
// against now: the event must not lie in the future and must not be older
// than the policy's retention window. Both boundaries are inclusive on the
// accepting side; an event stamped exactly now or exactly retention-window
// old passes.
//
// now must be sampled once per record so the future and staleness decisions
// stay internally consistent.
func ValidateTemporal(tv TimeValue, p Policy, now time.Time) (time.Time, *Error) {
	t := tv.parsed
	if tv.isRaw {
		parsed, err := parseEventTime(tv.raw)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	}
	t = t.UTC()

	if t.After(now) {
		return time.Time{}, newError(KindFutureTimestamp, "event_time", "event_time cannot be from the future")
	}
	if now.Sub(t) > p.RetentionWindow {
		return time.Time{}, newError(KindStaleTimestamp, "event_time",
			"event_time is older than the retention window of %s", p.RetentionWindow)
	}
	return t, nil
}

// parseEventTime parses an extended ISO-8601 date-time. A trailing literal
// "Z" is rewritten as "+00:00", and a date-time with no offset at all is
// assumed UTC.
func parseEventTime(raw string) (time.Time, *Error) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasSuffix(s, "Z"):
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	case strings.Contains(s, "T") && !utcOffsetSuffix.MatchString(s):
		s += "+00:00"
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, newError(KindTimestampFormat, "event_time",
			"event_time %q does not follow ISO-8601 format", raw)
	}
	return t, nil
}
