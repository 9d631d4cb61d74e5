// Package telescope holds the wire-level data model shared by the
// controller and host binaries: commands, responses, state snapshots, the
// error code taxonomy, and the angle arithmetic used to drive a motion.
package telescope

import "time"

// Network defaults.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 5050
	ConnectTimeout      = 10 * time.Second
	RecvTimeout         = 5 * time.Second
	MaxReconnectAttempt = 5
	ReconnectDelay      = 2 * time.Second
)

// Wire framing.
const (
	HeaderSize      = 4
	MaxMessageSize  = 65536
)

// Alt/az mount and focus ranges.
const (
	AltMinDeg     = 0.0
	AltMaxDeg     = 90.0
	AzMinDeg      = 0.0
	AzMaxDeg      = 360.0
	SpeedMin      = 0.0
	SpeedMax      = 1.0
	FocusStepsMin = 1
	FocusStepsMax = 10000

	DefaultCommandTimeout = 30 * time.Second
)

// Controller motion and safety tuning. These were not present in the
// retrieved pi/config/constants.py (not captured by the retrieval), so the
// concrete values below are an invented, documented default set — see
// DESIGN.md "Open Question decisions" for the constants-invention note.
const (
	MainLoopHz        = 50.0
	StateReportHz     = 5.0
	StepChunkSize     = 20
	StepsPerDegreeAlt = 200.0
	StepsPerDegreeAz  = 200.0
	MaxStepRateHz     = 2000.0
	MinStepRateHz     = 50.0
	WatchdogTimeout   = 2 * time.Second

	FocusPositionMin = 0
	FocusPositionMax = FocusStepsMax * 10
)

// Host tracking loop tuning, similarly invented against the gap in
// host/config/constants.py.
const (
	TrackingLoopHz        = 2.0
	PIDKp                 = 0.8
	PIDKi                 = 0.05
	PIDKd                 = 0.1
	TrackingToleranceDeg  = 0.05
	CommandAckTimeout     = 5 * time.Second
	FocusMetricThreshold  = 0.01
	FocusSearchSteps      = 50

	// TrackSlewSpeedMin/Max bound the corrective Move speed the tracking
	// loop computes from PID output, independent of the PID's own output
	// clamp. A negative or zero speed fails Move's "speed gte=0" wire
	// validation and the command is dropped instead of correcting the
	// mount, so this floor is enforced unconditionally.
	TrackSlewSpeedMin = 0.05
	TrackSlewSpeedMax = 1.0
)
