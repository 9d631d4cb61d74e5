package telescope

import "errors"

// Sentinel errors returned by command/response decoding, wrapped with %w at
// each boundary.
var (
	ErrInvalidMessage  = errors.New("invalid message")
	ErrUnknownCommand  = errors.New("unknown command type")
	ErrUnknownResponse = errors.New("unknown response type")
)
