package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/safety"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

func newTestMotorController() (*MotorController, *hardware.MockMotorDriver, *hardware.MockMotorDriver, *state.Manager, *state.ErrorState) {
	altMotor := hardware.NewMockMotorDriver()
	azMotor := hardware.NewMockMotorDriver()
	errs := state.NewErrorState()
	st := state.NewManager(errs)
	sensors := hardware.NewMockSensorReader()
	sm := safety.NewManager(sensors, st, errs, []safety.Stoppable{altMotor, azMotor}, telescope.WatchdogTimeout)
	mc := NewMotorController(altMotor, azMotor, sm, st, errs, telescope.StepChunkSize)
	return mc, altMotor, azMotor, st, errs
}

func TestExecuteMoveCompletesAndUpdatesPosition(t *testing.T) {
	mc, altMotor, azMotor, st, _ := newTestMotorController()
	speed := 0.5
	cmd := telescope.NewMoveCommand(10, 20, &speed, nil)

	ok := mc.ExecuteMove(cmd)
	require.True(t, ok)
	alt, az := st.Position()
	assert.Equal(t, 10.0, alt)
	assert.Equal(t, 20.0, az)
	assert.Equal(t, telescope.StatusIdle, st.Status())
	assert.NotEmpty(t, altMotor.Calls())
	assert.NotEmpty(t, azMotor.Calls())
}

func TestExecuteMoveRejectsOutOfRangeTarget(t *testing.T) {
	mc, _, _, _, errs := newTestMotorController()
	cmd := telescope.NewMoveCommand(120, 20, nil, nil)
	ok := mc.ExecuteMove(cmd)
	assert.False(t, ok)
	assert.True(t, errs.HasError())
}

func TestExecuteMoveSkipsNoOpAxis(t *testing.T) {
	mc, altMotor, _, st, _ := newTestMotorController()
	st.UpdatePosition(10, 10)
	cmd := telescope.NewMoveCommand(10, 20, nil, nil)
	ok := mc.ExecuteMove(cmd)
	require.True(t, ok)
	assert.Empty(t, altMotor.Calls())
}

func TestExecuteStopHaltsBothAxes(t *testing.T) {
	mc, _, _, st, _ := newTestMotorController()
	cmd := telescope.NewStopCommand(false, "")
	mc.ExecuteStop(cmd)
	assert.Equal(t, telescope.StatusIdle, st.Status())
}

func TestExecuteStopEmergencyRoutesToSafety(t *testing.T) {
	mc, _, _, st, errs := newTestMotorController()
	cmd := telescope.NewStopCommand(true, "user requested emergency stop")
	mc.ExecuteStop(cmd)
	assert.Equal(t, telescope.StatusEmergencyStop, st.Status())
	assert.True(t, errs.HasSafetyError())
}

func TestSpeedToRateClampsAndScales(t *testing.T) {
	assert.Equal(t, telescope.MinStepRateHz, SpeedToRate(0))
	assert.Equal(t, telescope.MaxStepRateHz, SpeedToRate(1))
	assert.Equal(t, telescope.MinStepRateHz, SpeedToRate(-5))
	assert.Equal(t, telescope.MaxStepRateHz, SpeedToRate(5))
}

func newTestFocusController() (*FocusController, *hardware.MockMotorDriver, *state.Manager, *state.ErrorState) {
	motor := hardware.NewMockMotorDriver()
	errs := state.NewErrorState()
	st := state.NewManager(errs)
	return NewFocusController(motor, st, errs), motor, st, errs
}

func TestExecuteFocusInAccumulatesPosition(t *testing.T) {
	fc, _, st, _ := newTestFocusController()
	cmd := telescope.NewFocusCommand(telescope.FocusIn, 100, nil)
	ok := fc.ExecuteFocus(cmd)
	require.True(t, ok)
	assert.Equal(t, 100, fc.Position())
	snap := st.Snapshot()
	require.NotNil(t, snap.FocusPosition)
	assert.Equal(t, 100, *snap.FocusPosition)
}

func TestExecuteFocusOutDecrementsBelowMinRejected(t *testing.T) {
	fc, _, _, errs := newTestFocusController()
	cmd := telescope.NewFocusCommand(telescope.FocusOut, 50, nil)
	ok := fc.ExecuteFocus(cmd)
	assert.False(t, ok)
	assert.True(t, errs.HasError())
}

func TestExecuteFocusRejectsAboveMax(t *testing.T) {
	fc, _, _, errs := newTestFocusController()
	cmd := telescope.NewFocusCommand(telescope.FocusIn, telescope.FocusPositionMax+1, nil)
	ok := fc.ExecuteFocus(cmd)
	assert.False(t, ok)
	assert.True(t, errs.HasError())
}

func TestExecuteFocusPartialStepRecordsTimeoutAndPartialPosition(t *testing.T) {
	motor := hardware.NewMockMotorDriver()
	errs := state.NewErrorState()
	st := state.NewManager(errs)
	fc := NewFocusController(&partialStepMotor{MockMotorDriver: motor, completed: 30}, st, errs)

	cmd := telescope.NewFocusCommand(telescope.FocusIn, 100, nil)
	ok := fc.ExecuteFocus(cmd)
	assert.False(t, ok)
	assert.Equal(t, 30, fc.Position())
	_, hasTimeout := errs.Detail(telescope.ErrFocusTimeout)
	assert.True(t, hasTimeout)
}

// partialStepMotor wraps MockMotorDriver to simulate a motor that stalls
// partway through a requested step count.
type partialStepMotor struct {
	*hardware.MockMotorDriver
	completed int
}

func (p *partialStepMotor) Step(direction hardware.Direction, numSteps int, rateHz float64, timeout time.Duration, stopCh <-chan struct{}) int {
	p.MockMotorDriver.Step(direction, p.completed, rateHz, timeout, stopCh)
	return p.completed
}
