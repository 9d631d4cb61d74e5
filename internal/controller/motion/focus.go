package motion

import (
	"fmt"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// FocusController drives the focus motor, tracking an absolute position
// counter that is rejected before motion if it would cross the configured
// soft limits.
type FocusController struct {
	motor  hardware.MotorDriver
	state  *state.Manager
	errors *state.ErrorState

	mu       sync.Mutex
	position int
}

func NewFocusController(motor hardware.MotorDriver, st *state.Manager, errs *state.ErrorState) *FocusController {
	return &FocusController{motor: motor, state: st, errors: errs}
}

// ExecuteFocus moves the focus motor by cmd.Steps in cmd.Direction,
// rejecting the move before any motion if it would cross FocusPositionMin
// or FocusPositionMax. Returns true only if every requested step completed.
func (c *FocusController) ExecuteFocus(cmd telescope.Command) bool {
	direction := hardware.DirectionForward
	if *cmd.Direction != telescope.FocusIn {
		direction = hardware.DirectionReverse
	}

	c.mu.Lock()
	current := c.position
	c.mu.Unlock()

	delta := *cmd.Steps
	if *cmd.Direction != telescope.FocusIn {
		delta = -delta
	}
	newPosition := current + delta

	if newPosition < telescope.FocusPositionMin {
		c.errors.AddError(telescope.ErrFocusLimitHit, fmt.Sprintf("focus would go below min (%d < %d)", newPosition, telescope.FocusPositionMin))
		return false
	}
	if newPosition > telescope.FocusPositionMax {
		c.errors.AddError(telescope.ErrFocusLimitHit, fmt.Sprintf("focus would exceed max (%d > %d)", newPosition, telescope.FocusPositionMax))
		return false
	}

	c.state.SetStatus(telescope.StatusFocusing)

	timeout := telescope.DefaultCommandTimeout
	if cmd.TimeoutS != nil {
		timeout = time.Duration(*cmd.TimeoutS * float64(time.Second))
	}
	noStop := make(chan struct{})
	actual := c.motor.Step(direction, *cmd.Steps, telescope.MinStepRateHz, timeout, noStop)
	metrics.RecordSteps("focus", actual)

	c.mu.Lock()
	if actual < *cmd.Steps {
		c.errors.AddError(telescope.ErrFocusTimeout, fmt.Sprintf("focus timeout: %d/%d steps", actual, *cmd.Steps))
		moved := actual
		if *cmd.Direction != telescope.FocusIn {
			moved = -actual
		}
		c.position += moved
	} else {
		c.position = newPosition
	}
	final := c.position
	c.mu.Unlock()

	c.state.SetFocusPosition(&final)
	c.state.SetStatus(telescope.StatusIdle)
	return actual == *cmd.Steps
}

// Position returns the focus controller's current absolute step count.
func (c *FocusController) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}
