package telescope

import "fmt"

// ErrorCode is the flat, decade-grouped error namespace reported in
// StateReport snapshots and Error responses.
type ErrorCode int

const (
	// Motor errors (10-19)
	ErrMotorStall           ErrorCode = 10
	ErrMotorOvercurrent     ErrorCode = 11
	ErrMotorTimeout         ErrorCode = 12
	ErrMotorNotInitialized  ErrorCode = 13

	// Position errors (20-29)
	ErrPositionOutOfRange ErrorCode = 20
	ErrPositionLimitHit   ErrorCode = 21
	ErrPositionUnknown    ErrorCode = 22

	// Focus errors (30-39)
	ErrFocusStall   ErrorCode = 30
	ErrFocusLimitHit ErrorCode = 31
	ErrFocusTimeout ErrorCode = 32

	// Communication errors (40-49)
	ErrCommsTimeout        ErrorCode = 40
	ErrCommsDisconnect     ErrorCode = 41
	ErrCommsInvalidMessage ErrorCode = 42
	ErrCommsProtocolError  ErrorCode = 43

	// Camera errors (50-59)
	ErrCameraDisconnect    ErrorCode = 50
	ErrCameraCaptureFailed ErrorCode = 51
	ErrCameraTimeout       ErrorCode = 52

	// Sensor errors (60-69)
	ErrSensorReadFailed  ErrorCode = 60
	ErrSensorOutOfRange  ErrorCode = 61

	// Safety errors (70-79)
	ErrSafetyLimitExceeded  ErrorCode = 70
	ErrSafetyEmergencyStop  ErrorCode = 71
	ErrSafetyWatchdogTimeout ErrorCode = 72
)

var errorDescriptions = map[ErrorCode]string{
	ErrMotorStall:            "Motor stalled during movement",
	ErrMotorOvercurrent:      "Motor drawing excessive current",
	ErrMotorTimeout:          "Motor operation timed out",
	ErrMotorNotInitialized:   "Motor not initialized before use",
	ErrPositionOutOfRange:    "Requested position outside valid range",
	ErrPositionLimitHit:      "Physical position limit reached",
	ErrPositionUnknown:       "Current position is unknown",
	ErrFocusStall:            "Focus motor stalled",
	ErrFocusLimitHit:         "Focus limit reached",
	ErrFocusTimeout:          "Focus operation timed out",
	ErrCommsTimeout:          "Communication timed out",
	ErrCommsDisconnect:       "Connection lost",
	ErrCommsInvalidMessage:   "Received invalid message",
	ErrCommsProtocolError:    "Protocol framing error",
	ErrCameraDisconnect:      "Camera disconnected",
	ErrCameraCaptureFailed:   "Image capture failed",
	ErrCameraTimeout:         "Camera operation timed out",
	ErrSensorReadFailed:      "Sensor read failed",
	ErrSensorOutOfRange:      "Sensor value out of expected range",
	ErrSafetyLimitExceeded:   "Safety limit exceeded",
	ErrSafetyEmergencyStop:   "Emergency stop triggered",
	ErrSafetyWatchdogTimeout: "Safety watchdog timed out",
}

// Description returns the human-readable meaning of code, or a fallback for
// an unrecognized value.
func (c ErrorCode) Description() string {
	if desc, ok := errorDescriptions[c]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown error code: %d", int(c))
}

func (c ErrorCode) String() string {
	return c.Description()
}
