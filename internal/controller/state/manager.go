package state

import (
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// Manager is the controller's single source of truth for current position,
// status, focus position, and tracking flag. Every mutation takes the same
// lock a Snapshot read takes, so a reader never observes a torn update.
type Manager struct {
	mu            sync.Mutex
	errors        *ErrorState
	currentAlt    float64
	currentAz     float64
	targetAlt     *float64
	targetAz      *float64
	status        telescope.StatusCode
	focusPosition *int
	isTracking    bool
}

func NewManager(errors *ErrorState) *Manager {
	return &Manager{errors: errors, status: telescope.StatusIdle}
}

func (m *Manager) UpdatePosition(altDeg, azDeg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentAlt, m.currentAz = altDeg, azDeg
}

func (m *Manager) SetTarget(altDeg, azDeg *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targetAlt, m.targetAz = altDeg, azDeg
}

func (m *Manager) SetStatus(status telescope.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

func (m *Manager) SetFocusPosition(position *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focusPosition = position
}

func (m *Manager) SetTracking(tracking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isTracking = tracking
}

func (m *Manager) Position() (alt, az float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentAlt, m.currentAz
}

func (m *Manager) Status() telescope.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Snapshot returns a StateReport-ready copy of the current state.
func (m *Manager) Snapshot() telescope.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return telescope.Snapshot{
		CurrentAltDeg: m.currentAlt,
		CurrentAzDeg:  m.currentAz,
		Status:        m.status,
		TargetAltDeg:  m.targetAlt,
		TargetAzDeg:   m.targetAz,
		ErrorCodes:    m.errors.ActiveCodes(),
		FocusPosition: m.focusPosition,
		IsTracking:    m.isTracking,
		Timestamp:     float64(time.Now().UnixNano()) / 1e9,
	}
}
