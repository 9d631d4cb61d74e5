// Package metrics exposes Prometheus counters/gauges for both binaries.
// Call Init once at startup; Handler serves them on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry

	// Controller-side.
	stepsTotal       *prometheus.CounterVec
	watchdogResets   prometheus.Counter
	emergencyStops   prometheus.Counter
	reconnectAttempt prometheus.Counter

	// Host-side.
	trackingErrorDeg   prometheus.Gauge
	secondsSinceUpdate prometheus.Gauge
	pidOutput          prometheus.Gauge
)

// Init registers all metrics against a fresh registry. Calling it a second
// time replaces the registry (used in tests); when on is false, recording
// functions become no-ops and Handler serves an empty registry.
func Init(on bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = on
	registry = prometheus.NewRegistry()
	if !on {
		return
	}

	f := promauto.With(registry)

	stepsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "skytrack_controller_motor_steps_total",
		Help: "Total motor steps issued, by axis.",
	}, []string{"axis"})

	watchdogResets = f.NewCounter(prometheus.CounterOpts{
		Name: "skytrack_controller_watchdog_resets_total",
		Help: "Total times the safety watchdog expired and halted motion.",
	})

	emergencyStops = f.NewCounter(prometheus.CounterOpts{
		Name: "skytrack_controller_emergency_stops_total",
		Help: "Total emergency stop commands executed.",
	})

	reconnectAttempt = f.NewCounter(prometheus.CounterOpts{
		Name: "skytrack_controller_reconnect_attempts_total",
		Help: "Total TCP reconnect attempts made to the host.",
	})

	trackingErrorDeg = f.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_host_tracking_error_degrees",
		Help: "Current angular distance between the mount and the tracked target.",
	})

	secondsSinceUpdate = f.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_host_seconds_since_state_update",
		Help: "Seconds since the host last received a state report from the controller.",
	})

	pidOutput = f.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_host_pid_output",
		Help: "Most recent tracking PID controller output.",
	})
}

// IsEnabled reports whether Init(true) has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	mu.RLock()
	reg := registry
	mu.RUnlock()
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RecordSteps adds n steps to the axis counter ("alt", "az", "focus").
func RecordSteps(axis string, n int) {
	if !IsEnabled() || n <= 0 {
		return
	}
	stepsTotal.WithLabelValues(axis).Add(float64(n))
}

// RecordWatchdogReset increments the watchdog-expiry counter.
func RecordWatchdogReset() {
	if !IsEnabled() {
		return
	}
	watchdogResets.Inc()
}

// RecordEmergencyStop increments the emergency-stop counter.
func RecordEmergencyStop() {
	if !IsEnabled() {
		return
	}
	emergencyStops.Inc()
}

// RecordReconnectAttempt increments the reconnect-attempt counter.
func RecordReconnectAttempt() {
	if !IsEnabled() {
		return
	}
	reconnectAttempt.Inc()
}

// SetTrackingError records the current tracking angular error in degrees.
func SetTrackingError(deg float64) {
	if !IsEnabled() {
		return
	}
	trackingErrorDeg.Set(deg)
}

// SetSecondsSinceUpdate records staleness of the host's mirrored state.
func SetSecondsSinceUpdate(seconds float64) {
	if !IsEnabled() {
		return
	}
	secondsSinceUpdate.Set(seconds)
}

// SetPIDOutput records the tracking PID controller's latest output.
func SetPIDOutput(output float64) {
	if !IsEnabled() {
		return
	}
	pidOutput.Set(output)
}
