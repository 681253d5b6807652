package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/telemetry"
)

func TestNewProviderMetrics(t *testing.T) {
	pm, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)
	assert.NotNil(t, pm)
}

func TestProviderMetrics_Record(t *testing.T) {
	pm, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	// Recording against the noop global meter must not panic.
	pm.RecordRequest("openmeteo", "fetch-hourly", 120*time.Millisecond, nil)
	pm.RecordRequest("openmeteo", "fetch-hourly", 3*time.Second, errors.New("timeout"))
	pm.RecordCacheHit("openmeteo", "fetch-hourly")
	pm.RecordCacheMiss("openmeteo", "fetch-hourly")
}
