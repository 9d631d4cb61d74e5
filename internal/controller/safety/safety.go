// Package safety implements the controller's three independent safety
// checks — limit switches, position bounds, and a feed watchdog — plus the
// idempotent emergency-stop path they all funnel into.
package safety

import (
	"log/slog"
	"time"

	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/controller/timer"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// Stoppable is the subset of hardware.MotorDriver the safety supervisor
// needs to halt every axis during an emergency stop.
type Stoppable interface {
	Stop()
	Disable()
}

// Manager runs the three independent safety checks every dispatch tick and
// owns the emergency-stop path.
type Manager struct {
	sensors  hardware.SensorReader
	state    *state.Manager
	errors   *state.ErrorState
	motors   []Stoppable
	watchdog *timer.Timeout
	log      *slog.Logger
}

// NewManager builds a Manager whose watchdog trips after watchdogTimeout of
// unfed ticks, matching SafetyConfig.WatchdogTimeout.
func NewManager(sensors hardware.SensorReader, st *state.Manager, errs *state.ErrorState, motors []Stoppable, watchdogTimeout time.Duration) *Manager {
	return &Manager{
		sensors:  sensors,
		state:    st,
		errors:   errs,
		motors:   motors,
		watchdog: timer.NewTimeout(watchdogTimeout),
		log:      logger.Named("safety"),
	}
}

// Check runs every independent check and reports whether the system is
// currently safe. Each sub-check sets or clears its own error code
// independently of the others' outcome.
func (m *Manager) Check() bool {
	safe := true
	if !m.checkLimitSwitches() {
		safe = false
	}
	if !m.checkPositionBounds() {
		safe = false
	}
	if !m.checkWatchdog() {
		safe = false
	}
	return safe
}

// ValidateMoveTarget rejects a Move command whose target lies outside the
// mount's alt/az bounds, before any motion begins.
func (m *Manager) ValidateMoveTarget(altDeg, azDeg float64) bool {
	if altDeg < telescope.AltMinDeg || altDeg > telescope.AltMaxDeg {
		m.log.Warn("move target outside alt bounds", logger.KeyTargetPos, altDeg)
		return false
	}
	if azDeg < telescope.AzMinDeg || azDeg > telescope.AzMaxDeg {
		m.log.Warn("move target outside az bounds", logger.KeyTargetPos, azDeg)
		return false
	}
	return true
}

// EmergencyStop halts every motor, marks the emergency_stop error active,
// and sets the telescope status accordingly. It is idempotent: calling it
// repeatedly while already stopped re-asserts the same state without side
// effects beyond re-logging.
func (m *Manager) EmergencyStop(reason string) {
	m.log.Error("emergency stop", logger.KeyError, reason)
	metrics.RecordEmergencyStop()
	for _, motor := range m.motors {
		motor.Stop()
		motor.Disable()
	}
	m.errors.AddError(telescope.ErrSafetyEmergencyStop, reason)
	m.state.SetStatus(telescope.StatusEmergencyStop)
}

// FeedWatchdog resets the watchdog deadline; the dispatch loop calls this
// once per tick while it is alive and responsive.
func (m *Manager) FeedWatchdog() {
	m.watchdog.Reset()
}

// Reset clears the emergency-stop, limit-hit, and watchdog errors and
// returns the telescope to idle, gated on limit switches currently reading
// clear. SAFETY_LIMIT_EXCEEDED is left to checkPositionBounds. This implements
// the Reset command's recovery semantics (see DESIGN.md Open Question
// decisions).
func (m *Manager) Reset() bool {
	if m.sensors.ReadLimitSwitches().AnyHit() {
		return false
	}
	m.errors.ClearError(telescope.ErrSafetyEmergencyStop)
	m.errors.ClearError(telescope.ErrPositionLimitHit)
	m.errors.ClearError(telescope.ErrSafetyWatchdogTimeout)
	m.watchdog.Reset()
	m.state.SetStatus(telescope.StatusIdle)
	return true
}

func (m *Manager) checkWatchdog() bool {
	if m.watchdog.IsExpired() {
		m.errors.AddError(telescope.ErrSafetyWatchdogTimeout, "watchdog timeout")
		metrics.RecordWatchdogReset()
		m.EmergencyStop("watchdog timeout")
		return false
	}
	m.errors.ClearError(telescope.ErrSafetyWatchdogTimeout)
	return true
}

func (m *Manager) checkLimitSwitches() bool {
	if m.sensors.ReadLimitSwitches().AnyHit() {
		m.errors.AddError(telescope.ErrPositionLimitHit, "limit switch triggered")
		m.EmergencyStop("limit switch triggered")
		return false
	}
	m.errors.ClearError(telescope.ErrPositionLimitHit)
	return true
}

func (m *Manager) checkPositionBounds() bool {
	alt, az := m.state.Position()
	if alt < telescope.AltMinDeg || alt > telescope.AltMaxDeg {
		m.errors.AddError(telescope.ErrSafetyLimitExceeded, "altitude outside bounds")
		return false
	}
	if az < telescope.AzMinDeg || az > telescope.AzMaxDeg {
		m.errors.AddError(telescope.ErrSafetyLimitExceeded, "azimuth outside bounds")
		return false
	}
	m.errors.ClearError(telescope.ErrSafetyLimitExceeded)
	return true
}
