package telescope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAckResponseRoundTrip(t *testing.T) {
	resp := NewAckResponse("cmd-123")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	decoded, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageAck, decoded.MessageType)
	assert.Equal(t, "cmd-123", decoded.CommandID)
	assert.Nil(t, decoded.Snapshot)
}

func TestErrorResponseRoundTrip(t *testing.T) {
	resp := NewErrorResponse("cmd-456", "target_alt_deg out of range")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	decoded, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageError, decoded.MessageType)
	assert.Equal(t, "target_alt_deg out of range", decoded.Error)
}

func TestStateReportResponseRoundTripFlattensSnapshot(t *testing.T) {
	snap := Snapshot{
		CurrentAltDeg: 45.0,
		CurrentAzDeg:  180.0,
		Status:        StatusMoving,
		ErrorCodes:    []int{},
		IsTracking:    true,
	}
	resp := NewStateReportResponse(snap)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "state_report", m["message_type"])
	assert.Equal(t, 45.0, m["current_alt_deg"])

	decoded, err := DecodeResponse(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.Snapshot)
	assert.Equal(t, 45.0, decoded.CurrentAltDeg)
	assert.Equal(t, StatusMoving, decoded.Status)
	assert.True(t, decoded.IsTracking)
}

func TestDecodeResponseRejectsMissingMessageType(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"command_id": "x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSnapshotFocusPositionNilUntilSet(t *testing.T) {
	snap := Snapshot{CurrentAltDeg: 10, CurrentAzDeg: 20, Status: StatusIdle, ErrorCodes: []int{}}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "focus_position")
}

func TestSnapshotHasError(t *testing.T) {
	snap := Snapshot{ErrorCodes: []int{int(ErrSafetyEmergencyStop)}}
	assert.True(t, snap.HasError(ErrSafetyEmergencyStop))
	assert.False(t, snap.HasError(ErrMotorStall))
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	alt := 1.0
	focus := 5
	snap := Snapshot{TargetAltDeg: &alt, FocusPosition: &focus, ErrorCodes: []int{1, 2}}
	clone := snap.Clone()
	*clone.TargetAltDeg = 99.0
	*clone.FocusPosition = 100
	clone.ErrorCodes[0] = 999

	assert.Equal(t, 1.0, *snap.TargetAltDeg)
	assert.Equal(t, 5, *snap.FocusPosition)
	assert.Equal(t, 1, snap.ErrorCodes[0])
}
