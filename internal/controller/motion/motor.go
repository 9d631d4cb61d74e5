// Package motion executes Move/Focus/Stop commands against the motor
// drivers, chunking steps so a stop signal can preempt an in-flight move.
package motion

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/safety"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// MotorController drives the alt and az axes to execute Move and Stop
// commands, owning the stop signal a Stop command closes to preempt an
// in-flight move. Focus moves and the safety supervisor's emergency stop do
// not use this signal.
type MotorController struct {
	altMotor   hardware.MotorDriver
	azMotor    hardware.MotorDriver
	safety     *safety.Manager
	state      *state.Manager
	errors     *state.ErrorState
	chunkSteps int
	log        *slog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// NewMotorController builds a MotorController that steps each axis
// chunkSteps at a time, matching MotionConfig.ChunkSteps.
func NewMotorController(altMotor, azMotor hardware.MotorDriver, sm *safety.Manager, st *state.Manager, errs *state.ErrorState, chunkSteps int) *MotorController {
	return &MotorController{
		altMotor:   altMotor,
		azMotor:    azMotor,
		safety:     sm,
		state:      st,
		errors:     errs,
		chunkSteps: chunkSteps,
		log:        logger.Named("motion"),
		stopCh:     make(chan struct{}),
	}
}

// ExecuteMove drives both axes toward the command's target, alt first then
// az, returning false if the target failed safety validation or either axis
// failed to complete (stop signaled or motor timeout).
func (c *MotorController) ExecuteMove(cmd telescope.Command) bool {
	targetAlt, targetAz := *cmd.TargetAltDeg, *cmd.TargetAzDeg
	if !c.safety.ValidateMoveTarget(targetAlt, targetAz) {
		c.errors.AddError(telescope.ErrPositionOutOfRange, "move target outside bounds")
		return false
	}

	c.resetStop()
	c.state.SetStatus(telescope.StatusMoving)
	c.state.SetTarget(&targetAlt, &targetAz)

	speed := 0.5
	if cmd.Speed != nil {
		speed = *cmd.Speed
	}
	rateHz := SpeedToRate(speed)
	timeout := telescope.DefaultCommandTimeout
	if cmd.TimeoutS != nil {
		timeout = time.Duration(*cmd.TimeoutS * float64(time.Second))
	}

	currentAlt, currentAz := c.state.Position()

	altOK := c.moveAxis(c.altMotor, currentAlt, targetAlt, telescope.StepsPerDegreeAlt, rateHz, timeout, "alt")
	azOK := false
	if altOK && !c.isStopped() {
		azOK = c.moveAxis(c.azMotor, currentAz, targetAz, telescope.StepsPerDegreeAz, rateHz, timeout, "az")
	}

	if !azOK || c.isStopped() {
		c.state.SetStatus(telescope.StatusIdle)
		return false
	}

	c.state.UpdatePosition(targetAlt, targetAz)
	c.state.SetStatus(telescope.StatusIdle)
	c.state.SetTarget(nil, nil)
	return true
}

// ExecuteStop halts both axes immediately. An emergency stop additionally
// routes through the safety supervisor; a normal stop just returns the
// telescope to idle.
func (c *MotorController) ExecuteStop(cmd telescope.Command) {
	c.signalStop()
	c.altMotor.Stop()
	c.azMotor.Stop()

	emergency := cmd.Emergency != nil && *cmd.Emergency
	if emergency {
		reason := "emergency stop command"
		if cmd.Reason != nil && *cmd.Reason != "" {
			reason = *cmd.Reason
		}
		c.safety.EmergencyStop(reason)
	} else {
		c.state.SetStatus(telescope.StatusIdle)
	}
}

func (c *MotorController) moveAxis(motor hardware.MotorDriver, currentDeg, targetDeg, stepsPerDeg, rateHz float64, timeout time.Duration, axisName string) bool {
	deltaDeg := targetDeg - currentDeg
	if math.Abs(deltaDeg) < 1e-6 {
		return true
	}

	direction := hardware.DirectionForward
	if deltaDeg < 0 {
		direction = hardware.DirectionReverse
	}
	totalSteps := int(math.Abs(deltaDeg) * stepsPerDeg)

	stepsDone := 0
	for stepsDone < totalSteps {
		if c.isStopped() {
			return false
		}
		chunk := c.chunkSteps
		if remaining := totalSteps - stepsDone; remaining < chunk {
			chunk = remaining
		}
		actual := motor.Step(direction, chunk, rateHz, timeout, c.stopChannel())
		stepsDone += actual
		metrics.RecordSteps(axisName, actual)

		if actual < chunk {
			c.errors.AddError(telescope.ErrMotorTimeout, axisName+" motor timeout")
			c.log.Warn("motor timeout", logger.KeyAxis, axisName)
			return false
		}
	}
	return true
}

// SpeedToRate maps a normalized [0,1] speed onto the configured step-rate
// range.
func SpeedToRate(speed float64) float64 {
	speed = telescope.Clamp(speed, 0, 1)
	return telescope.MinStepRateHz + speed*(telescope.MaxStepRateHz-telescope.MinStepRateHz)
}

func (c *MotorController) resetStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCh = make(chan struct{})
	c.stopped = false
}

func (c *MotorController) signalStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
}

func (c *MotorController) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *MotorController) stopChannel() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopCh
}
