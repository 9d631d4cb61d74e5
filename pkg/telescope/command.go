package telescope

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CommandType names the discriminant of the Command tagged union.
type CommandType string

const (
	CommandMove          CommandType = "move"
	CommandFocus         CommandType = "focus"
	CommandStop          CommandType = "stop"
	CommandStatusRequest CommandType = "status_request"
	// CommandReset is additive: see the Open Question decision in
	// DESIGN.md for the emergency-stop recovery path.
	CommandReset CommandType = "reset"
)

const (
	FocusIn  = "in"
	FocusOut = "out"
)

// Command is the common envelope every command variant carries.
type Command struct {
	CommandType CommandType `json:"command_type"`
	CommandID   string      `json:"command_id"`
	Timestamp   float64     `json:"timestamp"`

	// Move fields.
	TargetAltDeg *float64 `json:"target_alt_deg,omitempty"`
	TargetAzDeg  *float64 `json:"target_az_deg,omitempty"`
	Speed        *float64 `json:"speed,omitempty"`
	TimeoutS     *float64 `json:"timeout_s,omitempty"`

	// Focus fields.
	Direction *string `json:"direction,omitempty"`
	Steps     *int    `json:"steps,omitempty"`

	// Stop fields.
	Emergency *bool   `json:"emergency,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func newCommandID() string { return uuid.NewString() }

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

// NewMoveCommand builds a Move command with the source's 0.5 default speed
// and 30s default timeout when either is not supplied.
func NewMoveCommand(targetAlt, targetAz float64, speed, timeoutS *float64) Command {
	s := 0.5
	if speed != nil {
		s = *speed
	}
	t := DefaultCommandTimeout.Seconds()
	if timeoutS != nil {
		t = *timeoutS
	}
	return Command{
		CommandType:  CommandMove,
		CommandID:    newCommandID(),
		Timestamp:    nowUnix(),
		TargetAltDeg: floatPtr(targetAlt),
		TargetAzDeg:  floatPtr(targetAz),
		Speed:        floatPtr(s),
		TimeoutS:     floatPtr(t),
	}
}

func NewFocusCommand(direction string, steps int, timeoutS *float64) Command {
	t := DefaultCommandTimeout.Seconds()
	if timeoutS != nil {
		t = *timeoutS
	}
	return Command{
		CommandType: CommandFocus,
		CommandID:   newCommandID(),
		Timestamp:   nowUnix(),
		Direction:   strPtr(direction),
		Steps:       intPtr(steps),
		TimeoutS:    floatPtr(t),
	}
}

func NewStopCommand(emergency bool, reason string) Command {
	return Command{
		CommandType: CommandStop,
		CommandID:   newCommandID(),
		Timestamp:   nowUnix(),
		Emergency:   boolPtr(emergency),
		Reason:      strPtr(reason),
	}
}

func NewStatusRequestCommand() Command {
	return Command{
		CommandType: CommandStatusRequest,
		CommandID:   newCommandID(),
		Timestamp:   nowUnix(),
	}
}

func NewResetCommand(reason string) Command {
	return Command{
		CommandType: CommandReset,
		CommandID:   newCommandID(),
		Timestamp:   nowUnix(),
		Reason:      strPtr(reason),
	}
}

func nowUnix() float64 { return float64(time.Now().UnixNano()) / 1e9 }

// DecodeCommand parses a raw JSON payload into a Command, rejecting an
// object without a command_type and filling a missing command_id with a
// fresh one.
func DecodeCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if cmd.CommandType == "" {
		return Command{}, fmt.Errorf("%w: missing command_type", ErrInvalidMessage)
	}
	if cmd.CommandID == "" {
		cmd.CommandID = newCommandID()
	}
	return cmd, nil
}
