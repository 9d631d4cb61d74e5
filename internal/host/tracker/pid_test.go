package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeClampsToOutputRange(t *testing.T) {
	pid := NewPID(10, 0, 0, 0.05, 1.0)
	assert.Equal(t, 1.0, pid.Compute(100))

	pid2 := NewPID(10, 0, 0, 0.05, 1.0)
	assert.Equal(t, 0.05, pid2.Compute(-100))
}

func TestComputeProportionalOnlyOnFirstSample(t *testing.T) {
	pid := NewPID(0.5, 0, 0, 0.0, 10.0)
	out := pid.Compute(2.0)
	assert.Equal(t, 1.0, out) // no dt yet, i/d terms are zero
}

func TestResetClearsIntegralHistory(t *testing.T) {
	base := time.Now()
	tick := 0
	pid := NewPID(0, 1, 0, 0, 100)
	pid.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	pid.Compute(5) // dt=0, no accumulation yet
	withAccumulation := pid.Compute(5) // dt=1s, integral becomes 5
	assert.Greater(t, withAccumulation, 0.0)

	pid.Reset()
	afterReset := pid.Compute(5) // dt=0 again post-reset
	assert.Equal(t, 0.0, afterReset)
}
