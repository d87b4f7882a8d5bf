package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "conciliacion-api", Out: &buf})

	log := l.Component("generator")
	log.Debug().Msg("descartado")
	log.Info().Str("key", "2025-03-14/1/tarde").Msg("diferencias generadas")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "conciliacion-api", line["service"])
	assert.Equal(t, "generator", line["component"])
	assert.Equal(t, "2025-03-14/1/tarde", line["key"])
	assert.Equal(t, "info", line["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}
