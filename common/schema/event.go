// Package schema defines the canonical security event shapes shared by the
// mock ingestion API and the ETL pipeline, along with the allowed value sets
// every stage validates against.
//
// Field naming follows the warehouse convention: event_id, event_time,
// source_ip, destination_ip, event_type, severity, message. Upstream
// producers use "timestamp" and "description" for the last two; the
// canonicalizer owns that mapping.
package schema

import "time"

// Canonical field names.
const (
	FieldEventID       = "event_id"
	FieldEventTime     = "event_time"
	FieldSourceIP      = "source_ip"
	FieldDestinationIP = "destination_ip"
	FieldEventType     = "event_type"
	FieldSeverity      = "severity"
	FieldMessage       = "message"
	FieldRawPayload    = "raw_payload"
)

// Upstream producer field names mapped onto canonical names during
// canonicalization.
const (
	UpstreamFieldTimestamp   = "timestamp"
	UpstreamFieldDescription = "description"
)

// RequiredFields lists the seven fields every event must carry, in canonical
// order.
func RequiredFields() []string {
	return []string{
		FieldEventID,
		FieldEventTime,
		FieldSourceIP,
		FieldDestinationIP,
		FieldEventType,
		FieldSeverity,
		FieldMessage,
	}
}

// OptionalFields lists the recognized optional metadata fields.
func OptionalFields() []string {
	return []string{"host", "device_id", "username", "application", "platform", "vendor"}
}

// EventTypes returns the fixed allowed set of event categories.
func EventTypes() map[string]struct{} {
	return map[string]struct{}{
		"unauthorized_login":  {},
		"malware_detected":    {},
		"port_scan":           {},
		"brute_force":         {},
		"policy_violation":    {},
		"dns_tunnel_detected": {},
		"data_exfiltration":   {},
		"unauthorized_access": {},
		"phishing_click":      {},
		"firewall_block":      {},
	}
}

// Severities returns the four-level ordinal severity set.
func Severities() map[string]struct{} {
	return map[string]struct{}{
		"low":      {},
		"medium":   {},
		"high":     {},
		"critical": {},
	}
}

// RawEvent is an untyped mapping as received from an upstream producer.
// No invariants are guaranteed; keys may be missing, mistyped, or corrupted.
type RawEvent map[string]any

// Metadata holds the optional event fields. A nil pointer is the explicit
// absent marker; the key is always serialized so downstream code can assume
// presence.
type Metadata struct {
	Host        *string `json:"host"`
	DeviceID    *string `json:"device_id"`
	Username    *string `json:"username"`
	Application *string `json:"application"`
	Platform    *string `json:"platform"`
	Vendor      *string `json:"vendor"`
}

// ValidatedEvent is a record that passed every structural, type, domain, and
// temporal rule. All required fields are trimmed, case-normalized, and within
// their format and length constraints.
type ValidatedEvent struct {
	EventID       string    `json:"event_id"`
	EventTime     string    `json:"event_time"`
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip"`
	EventType     string    `json:"event_type"`
	Severity      string    `json:"severity"`
	Message       string    `json:"message"`
	Metadata      Metadata  `json:"metadata"`
	RawPayload    RawEvent  `json:"raw_payload,omitempty"`
	ParsedTime    time.Time `json:"-"`
	NormalizedAt  time.Time `json:"normalized_at"`
}

// NormalizedEvent is a ValidatedEvent enriched with the warehouse-facing
// derived fields. severity_level always equals severity and category always
// equals event_type; the post-transform validator enforces both.
type NormalizedEvent struct {
	EventID           string    `json:"event_id"`
	EventTime         string    `json:"event_time"`
	SourceIP          string    `json:"source_ip"`
	DestinationIP     string    `json:"destination_ip"`
	EventType         string    `json:"event_type"`
	Severity          string    `json:"severity"`
	SeverityLevel     string    `json:"severity_level"`
	Category          string    `json:"category"`
	NormalizedMessage string    `json:"normalized_message"`
	Metadata          Metadata  `json:"metadata"`
	ProcessedAt       time.Time `json:"processed_at"`
	NormalizedAt      time.Time `json:"normalized_at"`
}

// RejectedEvent pairs the best-available partial record with a structured
// error for the dead-letter path. Nullable fields stay nil when the source
// record never carried them.
type RejectedEvent struct {
	EventID       *string   `json:"event_id"`
	EventTime     *string   `json:"event_time"`
	SourceIP      *string   `json:"source_ip"`
	DestinationIP *string   `json:"destination_ip"`
	RawEvent      string    `json:"raw_event"`
	ErrorType     string    `json:"error_type"`
	ErrorMessage  string    `json:"error_message"`
	LoggedAt      time.Time `json:"logged_at"`
}

// BatchResponse is the envelope returned by the mock API batch endpoint and
// consumed by the extract stage.
type BatchResponse struct {
	Events        []RawEvent `json:"events"`
	Size          int        `json:"size"`
	FaultRate     float64    `json:"fault_rate"`
	ValidEvents   int        `json:"valid_events"`
	InvalidEvents int        `json:"invalid_events"`
}
