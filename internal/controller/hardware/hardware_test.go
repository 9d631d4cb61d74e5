package hardware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockGPIOProviderWriteRead(t *testing.T) {
	gpio := NewMockGPIOProvider()
	gpio.SetupOutput(17)
	gpio.Write(17, High)
	assert.Equal(t, High, gpio.Read(17))
}

func TestMockGPIOProviderPullUpDefaultsHigh(t *testing.T) {
	gpio := NewMockGPIOProvider()
	gpio.SetupInput(13, true)
	assert.Equal(t, High, gpio.Read(13))
}

func TestMockMotorDriverRecordsSteps(t *testing.T) {
	m := NewMockMotorDriver()
	stop := make(chan struct{})
	done := m.Step(DirectionForward, 50, 500.0, 5*time.Second, stop)
	assert.Equal(t, 50, done)
	assert.Equal(t, 50, m.CumulativeSteps())
	assert.Len(t, m.Calls(), 1)
}

func TestMockMotorDriverRespectsStopSignal(t *testing.T) {
	m := NewMockMotorDriver()
	stop := make(chan struct{})
	close(stop)
	done := m.Step(DirectionForward, 50, 500.0, 5*time.Second, stop)
	assert.Equal(t, 0, done)
}

func TestMockMotorDriverFaultFlag(t *testing.T) {
	m := NewMockMotorDriver()
	assert.False(t, m.IsFault())
	m.SetFault(true)
	assert.True(t, m.IsFault())
}

func TestMockSensorReaderLimits(t *testing.T) {
	s := NewMockSensorReader()
	assert.False(t, s.ReadLimitSwitches().AnyHit())
	s.SetLimits(LimitSwitchState{AltHigh: true})
	assert.True(t, s.ReadLimitSwitches().AnyHit())
}

func TestStepperMotorDriverStepsOverMockGPIO(t *testing.T) {
	gpio := NewMockGPIOProvider()
	gpio.SetupOutput(AltMotor.Step)
	gpio.SetupOutput(AltMotor.Direction)
	gpio.SetupOutput(AltMotor.Enable)
	driver := NewStepperMotorDriver(gpio, AltMotor)

	stop := make(chan struct{})
	done := driver.Step(DirectionForward, 3, 2000.0, time.Second, stop)
	assert.Equal(t, 3, done)
	assert.Equal(t, High, gpio.Read(AltMotor.Enable))
}

func TestStepperMotorDriverStopsEarlyOnSignal(t *testing.T) {
	gpio := NewMockGPIOProvider()
	gpio.SetupOutput(AltMotor.Step)
	gpio.SetupOutput(AltMotor.Direction)
	gpio.SetupOutput(AltMotor.Enable)
	driver := NewStepperMotorDriver(gpio, AltMotor)

	stop := make(chan struct{})
	close(stop)
	done := driver.Step(DirectionForward, 1000, 2000.0, time.Second, stop)
	assert.Equal(t, 0, done)
}
