package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(env string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithWriter(env, &buf), &buf
}

// entries decodes one JSON object per line.
func entries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("development").GetZerolog().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("production").GetZerolog().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("staging").GetZerolog().GetLevel())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		env  string
		want []string
	}{
		{"development", []string{"debug", "info", "warn", "error"}},
		{"production", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log, buf := newBuffered(tt.env)
			log.Debug("debug", nil)
			log.Info("info", nil)
			log.Warn("warn", nil)
			log.Error("error", errors.New("boom"), nil)

			var levels []string
			for _, entry := range entries(t, buf) {
				levels = append(levels, entry["level"].(string))
				assert.Contains(t, entry, "time")
			}
			assert.Equal(t, tt.want, levels)
		})
	}
}

func TestFields(t *testing.T) {
	log, buf := newBuffered("production")

	log.Info("Lease created", map[string]interface{}{
		"lease_id": 7,
		"rent":     1250.5,
		"email":    "landlord@example.com",
	})
	log.Error("Failed to generate payments", errors.New("unit locked"), map[string]interface{}{
		"lease_id": 7,
	})

	logged := entries(t, buf)
	require.Len(t, logged, 2)

	assert.Equal(t, "Lease created", logged[0]["message"])
	assert.Equal(t, float64(7), logged[0]["lease_id"])
	assert.Equal(t, 1250.5, logged[0]["rent"])
	assert.Equal(t, "landlord@example.com", logged[0]["email"])

	assert.Equal(t, "error", logged[1]["level"])
	assert.Equal(t, "unit locked", logged[1]["error"])
	assert.Equal(t, float64(7), logged[1]["lease_id"])
}

func TestNilFields(t *testing.T) {
	log, buf := newBuffered("production")

	log.Info("no fields", nil)
	log.Warn("no fields", map[string]interface{}{})
	log.Error("no fields", nil, nil)

	assert.Len(t, entries(t, buf), 3)
}

func TestChildLoggers(t *testing.T) {
	log, buf := newBuffered("production")

	log.WithRequestID("req-42").Info("Request completed", nil)
	log.WithComponent("stripe").Warn("Retrying request", nil)
	log.With(map[string]interface{}{"user_id": 3, "role": "LANDLORD"}).Info("Property created", nil)
	log.Info("parent", nil)

	logged := entries(t, buf)
	require.Len(t, logged, 4)

	assert.Equal(t, "req-42", logged[0]["request_id"])
	assert.Equal(t, "stripe", logged[1]["component"])
	assert.Equal(t, float64(3), logged[2]["user_id"])
	assert.Equal(t, "LANDLORD", logged[2]["role"])

	assert.NotContains(t, logged[3], "request_id")
	assert.NotContains(t, logged[3], "component")
	assert.NotContains(t, logged[3], "user_id")
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("ignored", map[string]interface{}{"k": "v"})
		log.Error("ignored", errors.New("boom"), nil)
		log.WithRequestID("req").WithComponent("cli").Warn("ignored", nil)
	})
	assert.Equal(t, zerolog.Disabled, log.GetZerolog().GetLevel())
}
