package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/etl/pkg/engine"
)

func TestCanonicalize_MapsUpstreamAliases(t *testing.T) {
	raw := schema.RawEvent{
		"event_id":       "evt_1",
		"timestamp":      "2025-10-29T13:05:44Z",
		"source_ip":      "45.19.34.10",
		"destination_ip": "10.0.0.5",
		"event_type":     "UNAUTHORIZED_LOGIN",
		"severity":       "HIGH",
		"description":    "  test  ",
	}

	canonical, err := engine.Canonicalize(raw)
	require.Nil(t, err)

	assert.Equal(t, "2025-10-29T13:05:44Z", canonical["event_time"])
	assert.Equal(t, "test", canonical["message"])
	assert.NotContains(t, canonical, "timestamp")
	assert.NotContains(t, canonical, "description")

	// Case normalization applies only to event_type and severity.
	assert.Equal(t, "unauthorized_login", canonical["event_type"])
	assert.Equal(t, "high", canonical["severity"])
	assert.Equal(t, "evt_1", canonical["event_id"])
}

func TestCanonicalize_DoesNotMutateInput(t *testing.T) {
	raw := schema.RawEvent{
		"event_id":   "  evt_2  ",
		"event_type": "PORT_SCAN",
	}

	_, err := engine.Canonicalize(raw)
	require.Nil(t, err)

	assert.Equal(t, "  evt_2  ", raw["event_id"])
	assert.Equal(t, "PORT_SCAN", raw["event_type"])
	assert.NotContains(t, raw, "host")
}

func TestCanonicalize_OptionalFields(t *testing.T) {
	t.Run("absent fields get explicit nil markers", func(t *testing.T) {
		canonical, err := engine.Canonicalize(schema.RawEvent{"event_id": "evt_3"})
		require.Nil(t, err)

		for _, field := range schema.OptionalFields() {
			require.Contains(t, canonical, field)
			assert.Nil(t, canonical[field])
		}
	})

	t.Run("present fields are trimmed and lower-cased", func(t *testing.T) {
		canonical, err := engine.Canonicalize(schema.RawEvent{
			"event_id": "evt_4",
			"host":     "  Workstation-12  ",
			"username": "ALICE",
		})
		require.Nil(t, err)

		assert.Equal(t, "workstation-12", canonical["host"])
		assert.Equal(t, "alice", canonical["username"])
	})

	t.Run("scalar values coerce permissively", func(t *testing.T) {
		canonical, err := engine.Canonicalize(schema.RawEvent{
			"event_id":  "evt_5",
			"device_id": float64(4412),
		})
		require.Nil(t, err)
		assert.Equal(t, "4412", canonical["device_id"])
	})

	t.Run("composite values are rejected", func(t *testing.T) {
		_, err := engine.Canonicalize(schema.RawEvent{
			"event_id": "evt_6",
			"vendor":   map[string]any{"name": "acme"},
		})
		require.NotNil(t, err)
		assert.Equal(t, engine.KindType, err.Kind)
		assert.Equal(t, "vendor", err.Field)
	})
}

func TestCanonicalize_Idempotent(t *testing.T) {
	raw := schema.RawEvent{
		"event_id":       "evt_7",
		"timestamp":      "2025-10-29T13:05:44Z",
		"source_ip":      "45.19.34.10",
		"destination_ip": "10.0.0.5",
		"event_type":     "Brute_Force",
		"severity":       "Medium",
		"description":    "lockout triggered",
		"host":           "GW-01",
	}

	once, err := engine.Canonicalize(raw)
	require.Nil(t, err)
	twice, err := engine.Canonicalize(once)
	require.Nil(t, err)

	assert.Equal(t, once, twice)
}
