// Package dispatch runs the controller's fixed-rate main loop: feed the
// watchdog, run the safety tick, drain one inbound command, send a periodic
// state report, and repeat at the configured main-loop rate. This is the
// controller-side analogue of the teacher's per-connection accept loop,
// adapted from "one goroutine per connection" to "one goroutine ticking the
// whole machine."
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cascade-ridge/skytrack/internal/controller/motion"
	"github.com/cascade-ridge/skytrack/internal/controller/safety"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/controller/timer"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/telemetry"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/validate"
)

// Sender is the subset of session.Session the loop needs to publish
// responses; kept narrow so tests can substitute a fake.
type Sender interface {
	Send(resp telescope.Response) bool
}

// Loop owns every collaborator the dispatch tick touches.
type Loop struct {
	inbound       <-chan telescope.Command
	sender        Sender
	motor         *motion.MotorController
	focus         *motion.FocusController
	safety        *safety.Manager
	state         *state.Manager
	errors        *state.ErrorState
	mainLoopHz    float64
	stateReportHz float64
	log           *slog.Logger
}

// New builds a Loop that ticks at mainLoopHz and emits a state report at
// stateReportHz, matching MotionConfig.
func New(
	inbound <-chan telescope.Command,
	sender Sender,
	motor *motion.MotorController,
	focus *motion.FocusController,
	sm *safety.Manager,
	st *state.Manager,
	errs *state.ErrorState,
	mainLoopHz float64,
	stateReportHz float64,
) *Loop {
	return &Loop{
		inbound:       inbound,
		sender:        sender,
		motor:         motor,
		focus:         focus,
		safety:        sm,
		state:         st,
		errors:        errs,
		mainLoopHz:    mainLoopHz,
		stateReportHz: stateReportHz,
		log:           logger.Named("dispatch"),
	}
}

// Run ticks the loop at l.mainLoopHz until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	loopTimer := timer.NewLoopTimer(l.mainLoopHz)
	reportDue := timer.NewTimeout(time.Duration(float64(time.Second) / l.stateReportHz))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.safety.FeedWatchdog()
		l.safety.Check()

		select {
		case cmd := <-l.inbound:
			l.dispatchCommand(ctx, cmd)
		default:
		}

		if reportDue.IsExpired() {
			l.sender.Send(telescope.NewStateReportResponse(l.state.Snapshot()))
			reportDue.Reset()
		}

		loopTimer.Tick()
	}
}

// dispatchCommand validates and acks a single command, then routes it to
// the motor/focus/safety collaborator that executes it. StatusRequest
// bypasses validation and the ack entirely, matching the source's
// is_status_request short-circuit.
func (l *Loop) dispatchCommand(ctx context.Context, cmd telescope.Command) {
	if cmd.CommandType == telescope.CommandStatusRequest {
		l.sender.Send(telescope.NewStateReportResponse(l.state.Snapshot()))
		return
	}

	_, span := telemetry.StartDispatchSpan(ctx, string(cmd.CommandType), cmd.CommandID)
	defer span.End()

	if errs := validate.Command(cmd); len(errs) > 0 {
		telemetry.RecordError(ctx, fmt.Errorf("%s", errs[0]))
		l.log.Warn("invalid command", logger.KeyCommandType, string(cmd.CommandType), logger.KeyError, errs[0])
		l.sender.Send(telescope.NewErrorResponse(cmd.CommandID, "Invalid command"))
		return
	}

	l.sender.Send(telescope.NewAckResponse(cmd.CommandID))

	switch cmd.CommandType {
	case telescope.CommandMove:
		l.motor.ExecuteMove(cmd)
	case telescope.CommandFocus:
		l.focus.ExecuteFocus(cmd)
	case telescope.CommandStop:
		l.motor.ExecuteStop(cmd)
	case telescope.CommandReset:
		if !l.safety.Reset() {
			l.sender.Send(telescope.NewErrorResponse(cmd.CommandID, "reset rejected: limit switch still held"))
		}
	default:
		l.log.Warn("unhandled command type", logger.KeyCommandType, string(cmd.CommandType))
	}
}
