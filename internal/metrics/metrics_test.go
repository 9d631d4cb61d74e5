package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledRecordersDoNotPanic(t *testing.T) {
	Init(false)
	assert.False(t, IsEnabled())
	require.NotPanics(t, func() {
		RecordSteps("alt", 5)
		RecordWatchdogReset()
		RecordEmergencyStop()
		RecordReconnectAttempt()
		SetTrackingError(1.2)
		SetSecondsSinceUpdate(3.4)
		SetPIDOutput(0.1)
	})
}

func TestEnabledHandlerExposesRegisteredMetrics(t *testing.T) {
	Init(true)
	assert.True(t, IsEnabled())

	RecordSteps("az", 3)
	RecordEmergencyStop()
	SetTrackingError(0.5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "skytrack_controller_motor_steps_total")
	assert.Contains(t, body, "skytrack_controller_emergency_stops_total 1")
	assert.Contains(t, body, "skytrack_host_tracking_error_degrees 0.5")
}
