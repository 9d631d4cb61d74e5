package tracker

import (
	"time"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// PID implements a standard proportional-integral-derivative controller
// with output clamping, mirroring the source's PIDController.
type PID struct {
	kp, ki, kd     float64
	outputMin      float64
	outputMax      float64
	integral       float64
	prevError      *float64
	prevTime       *time.Time
	now            func() time.Time
}

func NewPID(kp, ki, kd, outputMin, outputMax float64) *PID {
	return &PID{kp: kp, ki: ki, kd: kd, outputMin: outputMin, outputMax: outputMax, now: time.Now}
}

// Compute returns the clamped PID output for the current error sample.
func (p *PID) Compute(errVal float64) float64 {
	now := p.now()

	var dt float64
	if p.prevTime != nil {
		dt = now.Sub(*p.prevTime).Seconds()
	}

	pTerm := p.kp * errVal

	if dt > 0 {
		p.integral += errVal * dt
	}
	iTerm := p.ki * p.integral

	var dTerm float64
	if p.prevError != nil && dt > 0 {
		dTerm = p.kd * (errVal - *p.prevError) / dt
	}

	p.prevError = &errVal
	p.prevTime = &now

	output := pTerm + iTerm + dTerm
	return telescope.Clamp(output, p.outputMin, p.outputMax)
}

// Reset clears accumulated integral and derivative history.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = nil
	p.prevTime = nil
}
