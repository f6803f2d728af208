package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arstack/internal/config"
)

func TestInitTelemetry_Disabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTelemetry_Enabled(t *testing.T) {
	// Экспортер подключается лениво, поэтому инициализация не требует коллектора
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: true, ServiceName: "arstack-test"})
	require.NoError(t, err)
	_ = shutdown(context.Background())
}
