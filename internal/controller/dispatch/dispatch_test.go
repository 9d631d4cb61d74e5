package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/motion"
	"github.com/cascade-ridge/skytrack/internal/controller/safety"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []telescope.Response
}

func (f *fakeSender) Send(resp telescope.Response) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, resp)
	return true
}

func (f *fakeSender) messages() []telescope.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]telescope.Response, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestLoop() (*Loop, chan telescope.Command, *fakeSender, *state.Manager, *state.ErrorState) {
	inbound := make(chan telescope.Command, 8)
	sender := &fakeSender{}
	altMotor := hardware.NewMockMotorDriver()
	azMotor := hardware.NewMockMotorDriver()
	focusMotor := hardware.NewMockMotorDriver()
	sensors := hardware.NewMockSensorReader()
	errs := state.NewErrorState()
	st := state.NewManager(errs)
	sm := safety.NewManager(sensors, st, errs, []safety.Stoppable{altMotor, azMotor, focusMotor}, telescope.WatchdogTimeout)
	motor := motion.NewMotorController(altMotor, azMotor, sm, st, errs, telescope.StepChunkSize)
	focus := motion.NewFocusController(focusMotor, st, errs)
	loop := New(inbound, sender, motor, focus, sm, st, errs, telescope.MainLoopHz, telescope.StateReportHz)
	return loop, inbound, sender, st, errs
}

func TestDispatchStatusRequestSendsStateReportWithoutAck(t *testing.T) {
	loop, _, sender, _, _ := newTestLoop()
	loop.dispatchCommand(context.Background(), telescope.NewStatusRequestCommand())

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, telescope.MessageStateReport, msgs[0].MessageType)
}

func TestDispatchInvalidCommandSendsError(t *testing.T) {
	loop, _, sender, _, _ := newTestLoop()
	cmd := telescope.NewMoveCommand(200, 20, nil, nil) // alt out of validator range
	loop.dispatchCommand(context.Background(), cmd)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, telescope.MessageError, msgs[0].MessageType)
}

func TestDispatchMoveAcksThenExecutes(t *testing.T) {
	loop, _, sender, st, _ := newTestLoop()
	cmd := telescope.NewMoveCommand(10, 20, nil, nil)
	loop.dispatchCommand(context.Background(), cmd)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, telescope.MessageAck, msgs[0].MessageType)
	assert.Equal(t, cmd.CommandID, msgs[0].CommandID)

	alt, az := st.Position()
	assert.Equal(t, 10.0, alt)
	assert.Equal(t, 20.0, az)
}

func TestDispatchResetSucceedsWhenLimitSwitchesClear(t *testing.T) {
	loop, _, sender, st, _ := newTestLoop()
	cmd := telescope.NewResetCommand("clear")
	loop.dispatchCommand(context.Background(), cmd)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, telescope.MessageAck, msgs[0].MessageType)
	assert.Equal(t, telescope.StatusIdle, st.Status())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	loop, _, _, _, _ := newTestLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
}

func TestRunSendsPeriodicStateReports(t *testing.T) {
	loop, _, sender, _, _ := newTestLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	time.Sleep(400 * time.Millisecond)
	cancel()

	found := false
	for _, m := range sender.messages() {
		if m.MessageType == telescope.MessageStateReport {
			found = true
			break
		}
	}
	assert.True(t, found)
}
