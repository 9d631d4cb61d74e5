// Package simulate provides an in-process stand-in for the controller, for
// exercising the host's command/response flow without TCP or real
// hardware.
package simulate

import (
	"math"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

const slewUpdateInterval = 50 * time.Millisecond

// Simulator answers commands the way a controller would, slewing toward a
// Move target at a configurable rate and publishing state reports onto
// States as it moves.
type Simulator struct {
	slewSpeedDegPerSec float64

	mu            sync.Mutex
	currentAlt    float64
	currentAz     float64
	targetAlt     *float64
	targetAz      *float64
	status        telescope.StatusCode
	focusPosition int
	isTracking    bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	// States receives a Snapshot every slew tick and once on completion.
	States chan telescope.Snapshot
}

func New(slewSpeedDegPerSec float64) *Simulator {
	if slewSpeedDegPerSec <= 0 {
		slewSpeedDegPerSec = 5.0
	}
	return &Simulator{
		slewSpeedDegPerSec: slewSpeedDegPerSec,
		status:             telescope.StatusIdle,
		focusPosition:      telescope.FocusPositionMax / 2,
		States:             make(chan telescope.Snapshot, 256),
	}
}

// SendCommand answers cmd synchronously the way a controller's dispatch
// loop would, returning the Ack/Error/StateReport response.
func (s *Simulator) SendCommand(cmd telescope.Command) telescope.Response {
	switch cmd.CommandType {
	case telescope.CommandMove:
		s.startSlew(cmd)
		return telescope.NewAckResponse(cmd.CommandID)
	case telescope.CommandFocus:
		s.executeFocus(cmd)
		return telescope.NewAckResponse(cmd.CommandID)
	case telescope.CommandStop:
		s.executeStop(cmd)
		return telescope.NewAckResponse(cmd.CommandID)
	case telescope.CommandStatusRequest:
		return telescope.NewStateReportResponse(s.GetState())
	default:
		return telescope.NewErrorResponse(cmd.CommandID, "unknown command: "+string(cmd.CommandType))
	}
}

// GetState returns the simulator's current state as a Snapshot.
func (s *Simulator) GetState() telescope.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	focus := s.focusPosition
	return telescope.Snapshot{
		CurrentAltDeg: s.currentAlt,
		CurrentAzDeg:  s.currentAz,
		Status:        s.status,
		TargetAltDeg:  s.targetAlt,
		TargetAzDeg:   s.targetAz,
		FocusPosition: &focus,
		IsTracking:    s.isTracking,
	}
}

func (s *Simulator) startSlew(cmd telescope.Command) {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
	}
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	s.targetAlt = cmd.TargetAltDeg
	s.targetAz = cmd.TargetAzDeg
	s.status = telescope.StatusMoving
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	speed := 0.5
	if cmd.Speed != nil {
		speed = *cmd.Speed
	}

	s.wg.Add(1)
	go s.slewLoop(*cmd.TargetAltDeg, *cmd.TargetAzDeg, speed, stop)
}

func (s *Simulator) slewLoop(targetAlt, targetAz, speed float64, stop chan struct{}) {
	defer s.wg.Done()
	rate := s.slewSpeedDegPerSec * speed

	ticker := time.NewTicker(slewUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		dAlt := targetAlt - s.currentAlt
		dAz := targetAz - s.currentAz
		if dAz > 180 {
			dAz -= 360
		} else if dAz < -180 {
			dAz += 360
		}
		dist := math.Sqrt(dAlt*dAlt + dAz*dAz)

		if dist < 0.01 {
			s.currentAlt = targetAlt
			s.currentAz = targetAz
			s.status = telescope.StatusIdle
			s.targetAlt = nil
			s.targetAz = nil
			s.mu.Unlock()
			s.publishState()
			return
		}

		step := math.Min(rate*slewUpdateInterval.Seconds(), dist)
		s.currentAlt += dAlt / dist * step
		s.currentAz += dAz / dist * step
		s.mu.Unlock()
		s.publishState()
	}
}

func (s *Simulator) executeFocus(cmd telescope.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Direction == nil || cmd.Steps == nil {
		return
	}
	if *cmd.Direction == telescope.FocusIn {
		s.focusPosition = minInt(telescope.FocusPositionMax, s.focusPosition+*cmd.Steps)
	} else {
		s.focusPosition = maxInt(telescope.FocusPositionMin, s.focusPosition-*cmd.Steps)
	}
}

func (s *Simulator) executeStop(cmd telescope.Command) {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	emergency := cmd.Emergency != nil && *cmd.Emergency
	if emergency {
		s.status = telescope.StatusEmergencyStop
	} else {
		s.status = telescope.StatusIdle
	}
	s.targetAlt = nil
	s.targetAz = nil
	s.isTracking = false
	s.mu.Unlock()
}

func (s *Simulator) publishState() {
	select {
	case s.States <- s.GetState():
	default:
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
