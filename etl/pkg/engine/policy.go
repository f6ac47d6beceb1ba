package engine

import (
	"time"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// DefaultRetentionWindow is how far back an event time may lie before the
// record is considered stale.
const DefaultRetentionWindow = 90 * 24 * time.Hour

// Policy carries the configurable validation rules. Passing it at engine
// construction keeps the allowed sets and the retention window out of global
// state so tests can substitute alternate policies.
type Policy struct {
	AllowedEventTypes map[string]struct{}
	AllowedSeverities map[string]struct{}
	RetentionWindow   time.Duration

	// Now supplies the clock for temporal rules. It is sampled exactly once
	// per record evaluation.
	Now func() time.Time
}

// DefaultPolicy returns the production rule set.
func DefaultPolicy() Policy {
	return Policy{
		AllowedEventTypes: schema.EventTypes(),
		AllowedSeverities: schema.Severities(),
		RetentionWindow:   DefaultRetentionWindow,
		Now:               time.Now,
	}
}

func (p Policy) withDefaults() Policy {
	if p.AllowedEventTypes == nil {
		p.AllowedEventTypes = schema.EventTypes()
	}
	if p.AllowedSeverities == nil {
		p.AllowedSeverities = schema.Severities()
	}
	if p.RetentionWindow <= 0 {
		p.RetentionWindow = DefaultRetentionWindow
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return p
}
