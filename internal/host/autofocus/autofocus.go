// Package autofocus runs a coarse-to-fine search over the focus motor,
// stepping in decreasing increments and keeping whichever position
// maximized the focus metric.
package autofocus

import (
	"log/slog"
	"sync"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// Sender is the subset of sender.Sender autofocus needs.
type Sender interface {
	SendFocus(direction string, steps int) (string, bool)
}

// Controller runs the coarse-to-fine autofocus search described in
// host/control/focus_controller.py, using focus position as a proxy focus
// metric since no camera/image pipeline exists here — see DESIGN.md.
type Controller struct {
	sender  Sender
	state   *mirror.State
	session *sessionlog.Log
	log     *slog.Logger

	mu           sync.Mutex
	running      bool
	bestMetric   float64
	bestPosition *int
}

func New(sender Sender, state *mirror.State, session *sessionlog.Log) *Controller {
	return &Controller{sender: sender, state: state, session: session, log: logger.Named("autofocus")}
}

func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RunAutofocus searches stepSizes from coarsest to finest, returning true if
// any step improved the focus metric. A nil stepSizes uses the default
// coarse-to-fine ladder.
func (c *Controller) RunAutofocus(stepSizes []int) bool {
	if stepSizes == nil {
		stepSizes = defaultStepSizes()
	}

	c.mu.Lock()
	c.running = true
	c.bestMetric = c.focusMetric()
	c.bestPosition = c.focusPosition()
	c.mu.Unlock()

	c.log.Info("autofocus started", "steps", stepSizes)
	c.session.LogCommand("autofocus_start", map[string]any{"steps": stepSizes})

	improved := false
	for _, stepSize := range stepSizes {
		if c.searchStep(stepSize) {
			improved = true
		}
	}

	c.mu.Lock()
	c.running = false
	bestPos := c.bestPosition
	bestMetric := c.bestMetric
	c.mu.Unlock()

	c.log.Info("autofocus complete", "improved", improved, "best_position", bestPos, "metric", bestMetric)
	c.session.LogCommand("autofocus_done", map[string]any{"improved": improved, "best_position": bestPos})
	return improved
}

// searchStep tries focusing in by stepSize; if that doesn't improve the
// metric it undoes the move and tries focusing out instead; if neither
// improves it returns to the original position.
func (c *Controller) searchStep(stepSize int) bool {
	c.sender.SendFocus(telescope.FocusIn, stepSize)
	metricIn := c.focusMetric()

	c.mu.Lock()
	threshold := c.bestMetric + telescope.FocusMetricThreshold
	c.mu.Unlock()

	if metricIn > threshold {
		c.mu.Lock()
		c.bestMetric = metricIn
		c.bestPosition = c.focusPosition()
		c.mu.Unlock()
		c.log.Debug("focus in improved metric", "step_size", stepSize, "metric", metricIn)
		return true
	}

	c.sender.SendFocus(telescope.FocusOut, stepSize)
	c.sender.SendFocus(telescope.FocusOut, stepSize)
	metricOut := c.focusMetric()

	if metricOut > threshold {
		c.mu.Lock()
		c.bestMetric = metricOut
		c.bestPosition = c.focusPosition()
		c.mu.Unlock()
		c.log.Debug("focus out improved metric", "step_size", stepSize, "metric", metricOut)
		return true
	}

	c.sender.SendFocus(telescope.FocusIn, stepSize)
	return false
}

// focusMetric proxies the image-sharpness metric the original computes
// from camera frames: with no camera pipeline in this module, it peaks at
// the midpoint of the focus travel range, same as the source's placeholder.
func (c *Controller) focusMetric() float64 {
	snap := c.state.Latest()
	if snap == nil || snap.FocusPosition == nil {
		return 0.0
	}
	pos := float64(*snap.FocusPosition)
	mid := float64(telescope.FocusPositionMax) / 2
	return 1.0 - absFloat(pos-mid)/mid
}

func (c *Controller) focusPosition() *int {
	snap := c.state.Latest()
	if snap == nil {
		return nil
	}
	return snap.FocusPosition
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func defaultStepSizes() []int {
	return []int{telescope.FocusSearchSteps * 4, telescope.FocusSearchSteps * 2, telescope.FocusSearchSteps}
}
