package logger

import "log/slog"

// Standard field keys for structured logging across the controller and host
// binaries. Use these consistently so log lines stay greppable across both
// processes.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Session & connection
	KeySessionID    = "session_id"
	KeyConnectionID = "connection_id"
	KeyRemoteAddr   = "remote_addr"

	// Commands
	KeyCommandID   = "command_id"
	KeyCommandType = "command_type"

	// Motion
	KeyAxis      = "axis"
	KeyTargetPos = "target_position"
	KeySpeed     = "speed"
	KeyStepRate  = "step_rate_hz"

	// Errors
	KeyError     = "error"
	KeyErrorCode = "error_code"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"

	// Tracking
	KeyTrackingErrorDeg = "tracking_error_deg"
	KeyTarget           = "target"
)

func TraceID(id string) slog.Attr        { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr         { return slog.String(KeySpanID, id) }
func SessionID(id string) slog.Attr      { return slog.String(KeySessionID, id) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func CommandID(id string) slog.Attr      { return slog.String(KeyCommandID, id) }
func CommandType(t string) slog.Attr     { return slog.String(KeyCommandType, t) }
func Axis(a string) slog.Attr            { return slog.String(KeyAxis, a) }
func ErrorCode(code int) slog.Attr       { return slog.Int(KeyErrorCode, code) }
func Attempt(n int) slog.Attr            { return slog.Int(KeyAttempt, n) }
func TrackingErrorDeg(d float64) slog.Attr {
	return slog.Float64(KeyTrackingErrorDeg, d)
}
