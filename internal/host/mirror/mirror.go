// Package mirror holds the host's single source of truth for the latest
// telescope state received from the controller, plus the currently tracked
// target name if any.
package mirror

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// State is a thread-safe store of the latest telescope.Snapshot received
// from the controller, matching the source's HostTelescopeState.
type State struct {
	mu             sync.Mutex
	snapshot       *telescope.Snapshot
	lastUpdate     time.Time
	trackingTarget string
	log            *slog.Logger
}

func New() *State {
	return &State{log: logger.Named("mirror")}
}

// UpdateFromController records the latest snapshot reported by the
// controller and the wall-clock time it arrived.
func (s *State) UpdateFromController(snap telescope.Snapshot) {
	s.mu.Lock()
	s.snapshot = &snap
	s.lastUpdate = time.Now()
	s.mu.Unlock()
	s.log.Debug("state updated",
		logger.KeyTargetPos, snap.CurrentAltDeg,
		"az", snap.CurrentAzDeg,
		"status", string(snap.Status),
	)
}

// Latest returns the most recent snapshot, or nil if none has arrived yet.
func (s *State) Latest() *telescope.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	clone := s.snapshot.Clone()
	return &clone
}

// Position returns (alt, az, ok); ok is false if no snapshot has arrived.
func (s *State) Position() (alt, az float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return 0, 0, false
	}
	return s.snapshot.CurrentAltDeg, s.snapshot.CurrentAzDeg, true
}

// Status returns the last reported status, defaulting to idle until the
// first snapshot arrives.
func (s *State) Status() telescope.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return telescope.StatusIdle
	}
	return s.snapshot.Status
}

// SecondsSinceUpdate returns math.Inf(1) if no snapshot has ever arrived.
func (s *State) SecondsSinceUpdate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdate.IsZero() {
		return math.Inf(1)
	}
	return time.Since(s.lastUpdate).Seconds()
}

func (s *State) SetTrackingTarget(name string) {
	s.mu.Lock()
	s.trackingTarget = name
	s.mu.Unlock()
	s.log.Info("tracking target set", logger.KeyTarget, name)
}

func (s *State) ClearTrackingTarget() {
	s.mu.Lock()
	s.trackingTarget = ""
	s.mu.Unlock()
	s.log.Info("tracking target cleared")
}

func (s *State) TrackingTarget() (name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackingTarget, s.trackingTarget != ""
}

func (s *State) HasState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot != nil
}
