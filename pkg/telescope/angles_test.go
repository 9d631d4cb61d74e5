package telescope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngularDistanceZeroAtSamePoint(t *testing.T) {
	assert.InDelta(t, 0.0, AngularDistance(45, 180, 45, 180), 1e-9)
}

func TestAngularDistanceSymmetric(t *testing.T) {
	d1 := AngularDistance(10, 20, 50, 300)
	d2 := AngularDistance(50, 300, 10, 20)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestAngularDistanceBoundedRange(t *testing.T) {
	d := AngularDistance(0, 0, 90, 180)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 180.0)
}

func TestAngularDistancePoleToPole(t *testing.T) {
	assert.InDelta(t, 90.0, AngularDistance(0, 0, 90, 0), 1e-6)
}

func TestNormalizeAngleWrapsIntoRange(t *testing.T) {
	assert.InDelta(t, 10.0, NormalizeAngle(370, 0, 360), 1e-9)
	assert.InDelta(t, 350.0, NormalizeAngle(-10, 0, 360), 1e-9)
	assert.InDelta(t, 0.0, NormalizeAngle(0, 0, 360), 1e-9)
}

func TestNormalizeAngleDegenerateSpan(t *testing.T) {
	assert.Equal(t, 42.0, NormalizeAngle(42, 5, 5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 90))
	assert.Equal(t, 90.0, Clamp(200, 0, 90))
	assert.Equal(t, 45.0, Clamp(45, 0, 90))
}

func TestAltAzDeltaShortestPathWrap(t *testing.T) {
	_, dAz := AltAzDelta(0, 350, 0, 10)
	assert.InDelta(t, 20.0, dAz, 1e-9)

	_, dAz2 := AltAzDelta(0, 10, 0, 350)
	assert.InDelta(t, -20.0, dAz2, 1e-9)
}

func TestAltAzDeltaWithinRangeNoWrap(t *testing.T) {
	dAlt, dAz := AltAzDelta(30, 100, 40, 120)
	assert.InDelta(t, 10.0, dAlt, 1e-9)
	assert.InDelta(t, 20.0, dAz, 1e-9)
}

func TestDegreesArcsecRoundTrip(t *testing.T) {
	deg := 1.5
	assert.InDelta(t, deg, ArcsecToDegrees(DegreesToArcsec(deg)), 1e-9)
}

func TestDegreesToArcsec(t *testing.T) {
	assert.InDelta(t, 3600.0, DegreesToArcsec(1.0), 1e-9)
}

func TestAngularDistanceNeverNaN(t *testing.T) {
	d := AngularDistance(90, 0, 90, 180)
	assert.False(t, math.IsNaN(d))
}
