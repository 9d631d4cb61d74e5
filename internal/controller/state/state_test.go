package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

func TestErrorStateAddAndHasError(t *testing.T) {
	es := NewErrorState()
	assert.False(t, es.HasError())
	es.AddError(telescope.ErrMotorStall, "stalled")
	assert.True(t, es.HasError())
	detail, ok := es.Detail(telescope.ErrMotorStall)
	assert.True(t, ok)
	assert.Equal(t, "stalled", detail)
}

func TestErrorStateClearError(t *testing.T) {
	es := NewErrorState()
	es.AddError(telescope.ErrMotorStall, "stalled")
	es.ClearError(telescope.ErrMotorStall)
	assert.False(t, es.HasError())
}

func TestErrorStateHasSafetyError(t *testing.T) {
	es := NewErrorState()
	es.AddError(telescope.ErrMotorStall, "")
	assert.False(t, es.HasSafetyError())
	es.AddError(telescope.ErrSafetyEmergencyStop, "")
	assert.True(t, es.HasSafetyError())
}

func TestErrorStateActiveCodesSorted(t *testing.T) {
	es := NewErrorState()
	es.AddError(telescope.ErrSafetyEmergencyStop, "")
	es.AddError(telescope.ErrMotorStall, "")
	assert.Equal(t, []int{10, 71}, es.ActiveCodes())
}

func TestManagerSnapshotFocusPositionNilInitially(t *testing.T) {
	m := NewManager(NewErrorState())
	snap := m.Snapshot()
	assert.Nil(t, snap.FocusPosition)
	assert.Equal(t, telescope.StatusIdle, snap.Status)
}

func TestManagerSnapshotReflectsUpdates(t *testing.T) {
	m := NewManager(NewErrorState())
	m.UpdatePosition(45, 180)
	m.SetStatus(telescope.StatusMoving)
	alt, az := 50.0, 200.0
	m.SetTarget(&alt, &az)
	pos := 123
	m.SetFocusPosition(&pos)
	m.SetTracking(true)

	snap := m.Snapshot()
	assert.Equal(t, 45.0, snap.CurrentAltDeg)
	assert.Equal(t, 180.0, snap.CurrentAzDeg)
	assert.Equal(t, telescope.StatusMoving, snap.Status)
	assert.Equal(t, 50.0, *snap.TargetAltDeg)
	assert.Equal(t, 123, *snap.FocusPosition)
	assert.True(t, snap.IsTracking)
}

func TestManagerSnapshotIncludesActiveErrors(t *testing.T) {
	errs := NewErrorState()
	m := NewManager(errs)
	errs.AddError(telescope.ErrPositionLimitHit, "limit")
	snap := m.Snapshot()
	assert.Contains(t, snap.ErrorCodes, int(telescope.ErrPositionLimitHit))
}
