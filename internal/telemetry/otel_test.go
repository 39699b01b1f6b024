package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_NoEndpoint_Noop(t *testing.T) {
	shutdown, err := Init(context.Background(), "authcore", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_URLEndpoint_SetsPropagator(t *testing.T) {
	// エクスポーターは遅延接続なので、到達できない先でも作れる
	shutdown, err := Init(context.Background(), "authcore", "http://127.0.0.1:4318")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     otlpTarget
	}{
		{"plain http url", "http://collector:4318", otlpTarget{host: "collector:4318", insecure: true}},
		{"https with path", "https://otel.example.com/v1/traces", otlpTarget{host: "otel.example.com", path: "/v1/traces"}},
		{"trailing slash", "http://collector:4318/", otlpTarget{host: "collector:4318", insecure: true}},
		{"host and port only", "collector:4318", otlpTarget{host: "collector:4318", insecure: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEndpoint(tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.options())
		})
	}
}

func TestParseEndpoint_MissingHost(t *testing.T) {
	_, err := parseEndpoint("http://")
	assert.Error(t, err)
}
