// Package generator produces synthetic security events for the mock
// ingestion API: realistic valid records and, at a configurable fault rate,
// deliberately corrupted ones for exercising the pipeline's dead-letter
// path.
package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
)

var eventDescriptions = map[string]string{
	"unauthorized_login":  "Failed SSH login attempt detected.",
	"malware_detected":    "Malware signature detected by antivirus.",
	"port_scan":           "Suspicious port scanning activity observed.",
	"brute_force":         "Multiple failed authentication attempts triggered lockout.",
	"policy_violation":    "User attempted to download restricted file.",
	"dns_tunnel_detected": "Unusual DNS query volume detected.",
	"data_exfiltration":   "Outbound data transfer exceeded threshold.",
	"unauthorized_access": "Privileged access attempt from non-admin workstation.",
	"phishing_click":      "Employee clicked on a phishing simulation link.",
	"firewall_block":      "Inbound connection blocked by firewall rule set.",
}

// Generator creates synthetic events. Not safe for concurrent use; give each
// goroutine its own instance.
type Generator struct {
	rng       *rand.Rand
	faker     *gofakeit.Faker
	types     []string
	sevs      []string
	catalogue []schema.RawEvent
}

// New creates a generator. A zero seed derives one from the clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}

	for t := range schema.EventTypes() {
		g.types = append(g.types, t)
	}
	sort.Strings(g.types)
	for s := range schema.Severities() {
		g.sevs = append(g.sevs, s)
	}
	sort.Strings(g.sevs)

	g.catalogue = g.buildCatalogue()
	return g
}

// Catalogue returns the fixed demo set: one event per allowed type, with
// stable IDs so the lookup endpoint has something to find.
func (g *Generator) Catalogue() []schema.RawEvent {
	out := make([]schema.RawEvent, len(g.catalogue))
	copy(out, g.catalogue)
	return out
}

func (g *Generator) buildCatalogue() []schema.RawEvent {
	events := make([]schema.RawEvent, 0, len(g.types))
	for i, eventType := range g.types {
		e := g.ValidEvent()
		e["event_id"] = fmt.Sprintf("evt_%d", 1001+i)
		e["event_type"] = eventType
		e["description"] = eventDescriptions[eventType]
		events = append(events, e)
	}
	return events
}

// ValidEvent generates one well-formed event with a timestamp inside the
// last hour.
func (g *Generator) ValidEvent() schema.RawEvent {
	eventType := g.types[g.rng.Intn(len(g.types))]

	event := schema.RawEvent{
		"event_id":       g.eventID(),
		"timestamp":      g.timestamp(),
		"source_ip":      g.publicIPv4(),
		"destination_ip": g.privateIPv4(),
		"event_type":     eventType,
		"severity":       g.sevs[g.rng.Intn(len(g.sevs))],
		"description":    eventDescriptions[eventType],
	}

	// Sprinkle optional metadata on most events.
	if g.rng.Float64() < 0.8 {
		event["host"] = fmt.Sprintf("workstation-%d", g.rng.Intn(200)+1)
		event["username"] = g.faker.Username()
	}
	if g.rng.Float64() < 0.5 {
		event["application"] = g.faker.AppName()
		event["vendor"] = g.faker.Company()
		event["platform"] = g.faker.RandomString([]string{"linux", "windows", "macos"})
	}
	if g.rng.Float64() < 0.3 {
		event["device_id"] = uuid.NewString()[:12]
	}

	return event
}

// BatchStats summarizes what a generated batch actually contains.
type BatchStats struct {
	Valid   int
	Invalid int
	Faults  map[string]int
}

// Batch generates size events, each corrupted with probability faultRate.
func (g *Generator) Batch(size int, faultRate float64) ([]schema.RawEvent, BatchStats) {
	events := make([]schema.RawEvent, 0, size)
	stats := BatchStats{Faults: make(map[string]int)}

	for i := 0; i < size; i++ {
		if g.rng.Float64() < faultRate {
			event, kind := g.CorruptEvent()
			events = append(events, event)
			stats.Invalid++
			stats.Faults[kind]++
		} else {
			events = append(events, g.ValidEvent())
			stats.Valid++
		}
	}
	return events, stats
}

func (g *Generator) eventID() string {
	return "evt_" + uuid.NewString()[:8]
}

func (g *Generator) timestamp() string {
	offset := time.Duration(g.rng.Intn(60)) * time.Minute
	return time.Now().UTC().Add(-offset).Format("2006-01-02T15:04:05Z")
}

// publicIPv4 picks a first octet outside the common private/reserved
// blocks.
func (g *Generator) publicIPv4() string {
	first := g.rng.Intn(223) + 1
	for first == 10 || first == 127 || first == 172 || first == 192 {
		first = g.rng.Intn(223) + 1
	}
	return fmt.Sprintf("%d.%d.%d.%d", first, g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(254)+1)
}

func (g *Generator) privateIPv4() string {
	switch g.rng.Intn(3) {
	case 0:
		return fmt.Sprintf("10.%d.%d.%d", g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(254)+1)
	case 1:
		return fmt.Sprintf("192.168.%d.%d", g.rng.Intn(256), g.rng.Intn(254)+1)
	default:
		return fmt.Sprintf("172.%d.%d.%d", g.rng.Intn(16)+16, g.rng.Intn(256), g.rng.Intn(254)+1)
	}
}
