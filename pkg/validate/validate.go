// Package validate checks Command payloads against the numeric ranges and
// tagged-union shape the wire protocol requires, both before a host sends a
// command and before a controller dispatches one it received.
package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

var v = validator.New()

// moveFields/focusFields mirror Command's optional pointer
// fields with validator struct tags; validator can express required/range
// checks but not "exactly one variant of a tagged union is populated", so
// that check is done by hand in Command below.
type moveFields struct {
	TargetAltDeg float64 `validate:"gte=0,lte=90"`
	TargetAzDeg  float64 `validate:"gte=0,lte=360"`
	Speed        float64 `validate:"gte=0,lte=1"`
}

type focusFields struct {
	Direction string `validate:"required,oneof=in out"`
	Steps     int    `validate:"required,gte=1,lte=10000"`
}

// Command validates cmd's shape and ranges according to its CommandType.
// It returns every violation found, matching the source's
// validate_move_command/validate_focus_command/validate_stop_command
// accumulate-all-errors behavior rather than failing fast.
func Command(cmd telescope.Command) []string {
	var errs []string

	switch cmd.CommandType {
	case telescope.CommandMove:
		if cmd.TargetAltDeg == nil {
			errs = append(errs, "missing required field: target_alt_deg")
		}
		if cmd.TargetAzDeg == nil {
			errs = append(errs, "missing required field: target_az_deg")
		}
		if cmd.TargetAltDeg == nil || cmd.TargetAzDeg == nil {
			return errs
		}
		speed := 0.5
		if cmd.Speed != nil {
			speed = *cmd.Speed
		}
		fields := moveFields{
			TargetAltDeg: *cmd.TargetAltDeg,
			TargetAzDeg:  *cmd.TargetAzDeg,
			Speed:        speed,
		}
		errs = append(errs, structErrors(fields)...)

	case telescope.CommandFocus:
		if cmd.Direction == nil {
			errs = append(errs, "missing required field: direction")
		}
		if cmd.Steps == nil {
			errs = append(errs, "missing required field: steps")
		}
		if cmd.Direction == nil || cmd.Steps == nil {
			return errs
		}
		fields := focusFields{Direction: *cmd.Direction, Steps: *cmd.Steps}
		errs = append(errs, structErrors(fields)...)

	case telescope.CommandStop, telescope.CommandStatusRequest, telescope.CommandReset:
		// No required numeric fields beyond the envelope.

	default:
		errs = append(errs, fmt.Sprintf("unknown command_type: %s", cmd.CommandType))
	}

	return errs
}

func structErrors(fields any) []string {
	err := v.Struct(fields)
	if err == nil {
		return nil
	}
	var out []string
	for _, fe := range err.(validator.ValidationErrors) {
		out = append(out, fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag()))
	}
	return out
}
