package telemetry_test

import (
	"context"
	"testing"

	"github.com/TechXTT/sqlsrv/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("SQLSRV_OTEL_ENDPOINT", "")
	t.Setenv("SQLSRV_OTEL_ENABLED", "")

	shutdown, enabled, err := telemetry.Setup(context.Background(), "sqlsrv")
	require.NoError(t, err)
	assert.False(t, enabled)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("SQLSRV_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("SQLSRV_OTEL_ENABLED", "false")

	_, enabled, err := telemetry.Setup(context.Background(), "sqlsrv")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so nothing is exported.
	t.Setenv("SQLSRV_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("SQLSRV_OTEL_ENABLED", "")

	shutdown, enabled, err := telemetry.Setup(context.Background(), "sqlsrv")
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NoError(t, shutdown(context.Background()))
}
