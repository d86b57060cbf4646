package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate(), "disabled config is always valid")

	cfg.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = "collector.example.com:4317"
	assert.Error(t, cfg.Validate(), "plaintext to a remote endpoint is rejected")

	cfg.Insecure = false
	assert.NoError(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Enabled = true
	cfg.Sampling.Rate = 1.5
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Enabled = true
	cfg.Protocol = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestIsLocalEndpoint(t *testing.T) {
	local := []string{"localhost:4317", "127.0.0.1:4317", "[::1]:4317", "127.0.0.2:9999"}
	for _, ep := range local {
		cfg := &Config{Endpoint: ep}
		assert.True(t, cfg.isLocalEndpoint(), ep)
	}
	cfg := &Config{Endpoint: "collector.example.com:4317"}
	assert.False(t, cfg.isLocalEndpoint())
}

func TestNew_DisabledIsNoop(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.False(t, tel.IsEnabled())
	assert.NotNil(t, tel.Tracer("x"), "no-op tracer, never nil")
	assert.NotNil(t, tel.Meter("x"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNilTelemetryIsSafe(t *testing.T) {
	var tel *Telemetry
	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.Nil(t, tel.LoggerProvider())
	assert.False(t, tel.IsEnabled())
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
}

func TestTestTelemetryRecordsSpans(t *testing.T) {
	tt := NewTestTelemetry()
	tracer := tt.Tracer("campusfeed.test")

	_, span := tracer.Start(context.Background(), "feed.refresh")
	span.End()

	tt.AssertSpanExists(t, "feed.refresh")
	assert.Nil(t, tt.SpanByName("missing"))
}
