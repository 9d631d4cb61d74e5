package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for telescope command/tracking spans.
const (
	AttrCommandType = "telescope.command_type"
	AttrCommandID   = "telescope.command_id"
	AttrAxis        = "telescope.axis"
	AttrErrorCode   = "telescope.error_code"
	AttrTarget      = "telescope.target"
	AttrAltDeg      = "telescope.alt_deg"
	AttrAzDeg       = "telescope.az_deg"
)

// Span names.
const (
	SpanDispatchCommand = "controller.dispatch_command"
	SpanTrackingTick    = "host.tracking_tick"
)

func CommandType(t string) attribute.KeyValue { return attribute.String(AttrCommandType, t) }
func CommandID(id string) attribute.KeyValue  { return attribute.String(AttrCommandID, id) }
func Axis(axis string) attribute.KeyValue     { return attribute.String(AttrAxis, axis) }
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}
func Target(name string) attribute.KeyValue { return attribute.String(AttrTarget, name) }
func AltDeg(v float64) attribute.KeyValue   { return attribute.Float64(AttrAltDeg, v) }
func AzDeg(v float64) attribute.KeyValue    { return attribute.Float64(AttrAzDeg, v) }

// StartDispatchSpan starts a span covering one controller dispatch loop's
// handling of a single command.
func StartDispatchSpan(ctx context.Context, commandType, commandID string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanDispatchCommand, trace.WithAttributes(CommandType(commandType), CommandID(commandID)))
}

// StartTrackingSpan starts a span covering one host tracking-loop tick.
func StartTrackingSpan(ctx context.Context, target string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanTrackingTick, trace.WithAttributes(Target(target)))
}
