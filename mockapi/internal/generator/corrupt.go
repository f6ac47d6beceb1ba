package generator

import (
	"strings"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

// Corruption kinds injected by CorruptEvent.
const (
	CorruptMissingField     = "missing_field"
	CorruptBadSourceIP      = "bad_source_ip"
	CorruptBadDestinationIP = "bad_destination_ip"
	CorruptBadTimestamp     = "bad_timestamp"
	CorruptBadType          = "bad_type"
	CorruptBadSeverity      = "bad_severity"
	CorruptOversizedPayload = "oversized_payload"
)

var corruptions = []string{
	CorruptMissingField,
	CorruptBadSourceIP,
	CorruptBadDestinationIP,
	CorruptBadTimestamp,
	CorruptBadType,
	CorruptBadSeverity,
	CorruptOversizedPayload,
}

// Fields eligible for removal; event_id stays so rejections remain
// traceable.
var droppableFields = []string{
	"timestamp",
	"source_ip",
	"destination_ip",
	"event_type",
	"severity",
	"description",
}

// CorruptEvent generates a valid event and then breaks it in one randomly
// chosen way. Returns the event and the corruption kind applied.
func (g *Generator) CorruptEvent() (event schema.RawEvent, kind string) {
	e := g.ValidEvent()
	kind = corruptions[g.rng.Intn(len(corruptions))]

	switch kind {
	case CorruptMissingField:
		delete(e, droppableFields[g.rng.Intn(len(droppableFields))])
	case CorruptBadSourceIP:
		e["source_ip"] = "999.999.999.999"
	case CorruptBadDestinationIP:
		e["destination_ip"] = "999.999.999.999"
	case CorruptBadTimestamp:
		e["timestamp"] = "BAD_TIMESTAMP"
	case CorruptBadType:
		e["event_type"] = "UNKNOWN_TYPE"
	case CorruptBadSeverity:
		e["severity"] = "apocalyptic"
	case CorruptOversizedPayload:
		e["raw_payload"] = map[string]any{"blob": strings.Repeat("x", 60000)}
	}

	return e, kind
}
