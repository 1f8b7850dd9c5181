package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false)
	log.Debug("hidden")
	log.Info("signup", "email", "a@x.com")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "signup", line["msg"])
	assert.Equal(t, "a@x.com", line["email"])
}

func TestNewLoggerPretty(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, true).With("op", "test")
	log.Debug("visible", "n", 1)
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), `"op": "test"`)
}

func TestLogAdapter(t *testing.T) {
	var buf bytes.Buffer
	std := LogAdapter(newLogger(&buf, false))
	std.Print("http: TLS handshake error")
	assert.Contains(t, buf.String(), "TLS handshake error")
}
