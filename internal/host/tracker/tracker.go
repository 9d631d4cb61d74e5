// Package tracker drives the telescope toward a resolved celestial target,
// re-resolving its position every tick to follow sidereal motion and
// issuing corrective Move commands sized by a PID controller.
package tracker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/resolve"
	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/internal/telemetry"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// Sender is the subset of sender.Sender the tracker needs, kept narrow so
// tests can substitute a fake.
type Sender interface {
	SendMove(alt, az, speed float64) (string, bool)
	SendStop(emergency bool) (string, bool)
}

// Info mirrors the source's get_tracking_info dict for UI/telemetry
// consumers.
type Info struct {
	Tracking        bool    `json:"tracking"`
	Target          string  `json:"target"`
	TargetAltDeg    float64 `json:"target_alt_deg"`
	TargetAzDeg     float64 `json:"target_az_deg"`
	ErrorDeg        float64 `json:"error_deg"`
	WithinTolerance bool    `json:"within_tolerance"`
}

// Controller resolves a target name to alt/az and nudges the telescope
// toward it on every Update call, using AngularDistance as the PID's error
// signal.
type Controller struct {
	sender  Sender
	state   *mirror.State
	session *sessionlog.Log
	lat     float64
	lon     float64
	elev    float64
	resolve resolve.Resolver
	pid     *PID
	log     *slog.Logger

	mu         sync.Mutex
	tracking   bool
	targetName string
	targetAlt  float64
	targetAz   float64
}

func New(sender Sender, state *mirror.State, session *sessionlog.Log, lat, lon, elev float64, resolver resolve.Resolver) *Controller {
	return NewWithPID(sender, state, session, lat, lon, elev, resolver, NewPID(telescope.PIDKp, telescope.PIDKi, telescope.PIDKd, 0.05, 1.0))
}

// NewWithPID is New with caller-supplied PID gains, letting the host binary
// wire HostConfig.PID instead of the telescope package's built-in defaults.
func NewWithPID(sender Sender, state *mirror.State, session *sessionlog.Log, lat, lon, elev float64, resolver resolve.Resolver, pid *PID) *Controller {
	return &Controller{
		sender:  sender,
		state:   state,
		session: session,
		lat:     lat,
		lon:     lon,
		elev:    elev,
		resolve: resolver,
		pid:     pid,
		log:     logger.Named("tracker"),
	}
}

// StartTracking resolves targetName and begins tracking it, rejecting
// targets currently below the horizon.
func (c *Controller) StartTracking(targetName string) bool {
	res, err := c.resolve.Resolve(targetName, c.lat, c.lon, c.elev)
	if err != nil {
		c.log.Error("target resolution failed", logger.KeyTarget, targetName, logger.KeyError, err.Error())
		c.session.LogError("target resolution failed: "+err.Error(), map[string]any{"target": targetName})
		return false
	}
	if !res.Visible {
		c.log.Warn("target below horizon", logger.KeyTarget, targetName, logger.KeyTargetPos, res.AltDeg)
		c.session.LogError("target below horizon", map[string]any{"target": targetName, "alt": res.AltDeg})
		return false
	}

	c.mu.Lock()
	c.targetName = targetName
	c.targetAlt = res.AltDeg
	c.targetAz = res.AzDeg
	c.tracking = true
	c.mu.Unlock()

	c.pid.Reset()
	c.state.SetTrackingTarget(targetName)
	c.log.Info("tracking started", logger.KeyTarget, targetName, logger.KeyTargetPos, res.AltDeg)
	c.session.LogCommand("track_start", map[string]any{"target": targetName, "alt": res.AltDeg, "az": res.AzDeg})
	return true
}

// StopTracking halts the telescope (a non-emergency stop) and clears
// tracking state.
func (c *Controller) StopTracking() {
	c.mu.Lock()
	wasTracking := c.tracking
	c.tracking = false
	c.targetName = ""
	c.mu.Unlock()

	if wasTracking {
		c.sender.SendStop(false)
	}
	c.pid.Reset()
	c.state.ClearTrackingTarget()
	c.log.Info("tracking stopped")
}

func (c *Controller) IsTracking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracking
}

// Update re-resolves the current target and sends a corrective Move if the
// angular error exceeds telescope.TrackingToleranceDeg. It is a no-op when
// not currently tracking.
func (c *Controller) Update() {
	c.mu.Lock()
	tracking := c.tracking
	name := c.targetName
	c.mu.Unlock()
	if !tracking || name == "" {
		return
	}

	ctx, span := telemetry.StartTrackingSpan(context.Background(), name)
	defer span.End()

	res, err := c.resolve.Resolve(name, c.lat, c.lon, c.elev)
	if err != nil {
		c.log.Error("re-resolve failed", logger.KeyTarget, name, logger.KeyError, err.Error())
		telemetry.RecordError(ctx, err)
		return
	}
	if !res.Visible {
		c.log.Warn("target set below horizon, stopping", logger.KeyTarget, name)
		c.StopTracking()
		return
	}

	c.mu.Lock()
	c.targetAlt = res.AltDeg
	c.targetAz = res.AzDeg
	c.mu.Unlock()

	metrics.SetSecondsSinceUpdate(c.state.SecondsSinceUpdate())

	curAlt, curAz, ok := c.state.Position()
	if !ok {
		return
	}

	distance := telescope.AngularDistance(curAlt, curAz, res.AltDeg, res.AzDeg)
	metrics.SetTrackingError(distance)
	if distance < telescope.TrackingToleranceDeg {
		return
	}

	speed := telescope.Clamp(c.pid.Compute(distance), telescope.TrackSlewSpeedMin, telescope.TrackSlewSpeedMax)
	metrics.SetPIDOutput(speed)
	telemetry.SetAttributes(ctx, telemetry.AltDeg(res.AltDeg), telemetry.AzDeg(res.AzDeg))
	c.sender.SendMove(res.AltDeg, res.AzDeg, speed)
}

// GetTrackingInfo reports the current tracking status for UI/telemetry
// consumers.
func (c *Controller) GetTrackingInfo() Info {
	c.mu.Lock()
	tracking := c.tracking
	name := c.targetName
	targetAlt := c.targetAlt
	targetAz := c.targetAz
	c.mu.Unlock()

	curAlt, curAz, ok := c.state.Position()
	var distance float64
	if tracking && ok {
		distance = telescope.AngularDistance(curAlt, curAz, targetAlt, targetAz)
	}

	return Info{
		Tracking:        tracking,
		Target:          name,
		TargetAltDeg:    targetAlt,
		TargetAzDeg:     targetAz,
		ErrorDeg:        distance,
		WithinTolerance: distance < telescope.TrackingToleranceDeg,
	}
}
