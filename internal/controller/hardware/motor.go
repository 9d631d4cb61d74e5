package hardware

import (
	"sync"
	"time"
)

type Direction int

const (
	DirectionReverse Direction = 0
	DirectionForward Direction = 1
)

// MotorDriver drives a single stepper axis, stepping in chunks so the
// caller can check a stop signal between chunks rather than blocking for
// an entire move.
type MotorDriver interface {
	Enable()
	Disable()
	// Step pulses num_steps steps at rate_hz, returning early if stopCh
	// is closed or timeout elapses, and reports how many steps actually
	// completed.
	Step(direction Direction, numSteps int, rateHz float64, timeout time.Duration, stopCh <-chan struct{}) int
	Stop()
	IsFault() bool
}

// StepperMotorDriver drives a real GPIOProvider-backed stepper.
type StepperMotorDriver struct {
	gpio    GPIOProvider
	pins    MotorPins
	enabled bool
}

func NewStepperMotorDriver(gpio GPIOProvider, pins MotorPins) *StepperMotorDriver {
	return &StepperMotorDriver{gpio: gpio, pins: pins}
}

func (d *StepperMotorDriver) Enable() {
	d.gpio.Write(d.pins.Enable, High)
	d.enabled = true
}

func (d *StepperMotorDriver) Disable() {
	d.gpio.Write(d.pins.Enable, Low)
	d.enabled = false
}

func (d *StepperMotorDriver) Step(direction Direction, numSteps int, rateHz float64, timeout time.Duration, stopCh <-chan struct{}) int {
	if !d.enabled {
		d.Enable()
	}
	d.gpio.Write(d.pins.Direction, PinLevel(direction))

	period := time.Duration(float64(time.Second) / rateHz)
	half := period / 2
	deadline := time.Now().Add(timeout)
	stepsDone := 0

	for i := 0; i < numSteps; i++ {
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-stopCh:
			return stepsDone
		default:
		}

		d.gpio.Write(d.pins.Step, High)
		time.Sleep(half)
		d.gpio.Write(d.pins.Step, Low)
		time.Sleep(half)
		stepsDone++
	}
	return stepsDone
}

func (d *StepperMotorDriver) Stop() {
	d.gpio.Write(d.pins.Step, Low)
}

func (d *StepperMotorDriver) IsFault() bool {
	if d.pins.Fault == nil {
		return false
	}
	return d.gpio.Read(*d.pins.Fault) == Low
}

// MockMotorDriver records every Step call instead of touching GPIO, for
// controller unit tests.
type MockMotorDriver struct {
	mu              sync.Mutex
	enabled         bool
	cumulativeSteps int
	lastDirection   Direction
	calls           []StepCall
	fault           bool
}

type StepCall struct {
	Direction Direction
	NumSteps  int
	RateHz    float64
}

func NewMockMotorDriver() *MockMotorDriver { return &MockMotorDriver{} }

func (m *MockMotorDriver) Enable()  { m.mu.Lock(); m.enabled = true; m.mu.Unlock() }
func (m *MockMotorDriver) Disable() { m.mu.Lock(); m.enabled = false; m.mu.Unlock() }

func (m *MockMotorDriver) Step(direction Direction, numSteps int, rateHz float64, _ time.Duration, stopCh <-chan struct{}) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-stopCh:
		return 0
	default:
	}
	m.calls = append(m.calls, StepCall{direction, numSteps, rateHz})
	m.lastDirection = direction
	m.cumulativeSteps += numSteps
	return numSteps
}

func (m *MockMotorDriver) Stop() {}

func (m *MockMotorDriver) IsFault() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault
}

func (m *MockMotorDriver) SetFault(fault bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = fault
}

func (m *MockMotorDriver) CumulativeSteps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cumulativeSteps
}

func (m *MockMotorDriver) Calls() []StepCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StepCall(nil), m.calls...)
}
