package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

func TestValidMoveCommandHasNoErrors(t *testing.T) {
	cmd := telescope.NewMoveCommand(45, 180, nil, nil)
	assert.Empty(t, Command(cmd))
}

func TestMoveCommandOutOfRangeAltitude(t *testing.T) {
	cmd := telescope.NewMoveCommand(120, 180, nil, nil)
	errs := Command(cmd)
	assert.NotEmpty(t, errs)
}

func TestMoveCommandOutOfRangeAzimuth(t *testing.T) {
	cmd := telescope.NewMoveCommand(45, 400, nil, nil)
	assert.NotEmpty(t, Command(cmd))
}

func TestMoveCommandBoundaryValuesAccepted(t *testing.T) {
	cmd := telescope.NewMoveCommand(0, 0, nil, nil)
	assert.Empty(t, Command(cmd))
	cmd2 := telescope.NewMoveCommand(90, 360, nil, nil)
	assert.Empty(t, Command(cmd2))
}

func TestMoveCommandSpeedOutOfRange(t *testing.T) {
	speed := 1.5
	cmd := telescope.NewMoveCommand(10, 10, &speed, nil)
	assert.NotEmpty(t, Command(cmd))
}

func TestFocusCommandValidDirection(t *testing.T) {
	cmd := telescope.NewFocusCommand(telescope.FocusIn, 500, nil)
	assert.Empty(t, Command(cmd))
}

func TestFocusCommandInvalidDirection(t *testing.T) {
	cmd := telescope.NewFocusCommand("sideways", 500, nil)
	assert.NotEmpty(t, Command(cmd))
}

func TestFocusCommandStepsOutOfRange(t *testing.T) {
	cmd := telescope.NewFocusCommand(telescope.FocusIn, 0, nil)
	assert.NotEmpty(t, Command(cmd))

	cmd2 := telescope.NewFocusCommand(telescope.FocusIn, 20000, nil)
	assert.NotEmpty(t, Command(cmd2))
}

func TestStopCommandAlwaysValid(t *testing.T) {
	cmd := telescope.NewStopCommand(true, "limit hit")
	assert.Empty(t, Command(cmd))
}

func TestStatusRequestAlwaysValid(t *testing.T) {
	cmd := telescope.NewStatusRequestCommand()
	assert.Empty(t, Command(cmd))
}

func TestUnknownCommandTypeReported(t *testing.T) {
	cmd := telescope.Command{CommandType: "bogus"}
	assert.NotEmpty(t, Command(cmd))
}

func TestMoveCommandMissingTargetFields(t *testing.T) {
	cmd := telescope.Command{CommandType: telescope.CommandMove}
	errs := Command(cmd)
	assert.Len(t, errs, 2)
}
