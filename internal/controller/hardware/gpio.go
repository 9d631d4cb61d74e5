// Package hardware abstracts the GPIO, motor-driver, and sensor boundary
// the motion and safety layers are built against. Only a mock
// implementation is complete; a real pin-level backend is left a thin stub
// since the physical GPIO layer is out of scope per the injectable
// capability-interface design the rest of the controller is built on.
package hardware

import "sync"

type PinLevel int

const (
	Low PinLevel = iota
	High
)

// GPIOProvider is the pin-level capability interface every motor driver and
// sensor reader is built against.
type GPIOProvider interface {
	SetupOutput(pin int)
	SetupInput(pin int, pullUp bool)
	Write(pin int, value PinLevel)
	Read(pin int) PinLevel
	Cleanup()
}

type pinMode int

const (
	modeOutput pinMode = iota
	modeInput
)

// MockGPIOProvider is an in-memory GPIOProvider used by tests and by
// --mock mode in cmd/controller.
type MockGPIOProvider struct {
	mu    sync.Mutex
	pins  map[int]PinLevel
	modes map[int]pinMode
}

func NewMockGPIOProvider() *MockGPIOProvider {
	return &MockGPIOProvider{pins: make(map[int]PinLevel), modes: make(map[int]pinMode)}
}

func (m *MockGPIOProvider) SetupOutput(pin int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[pin] = modeOutput
	m.pins[pin] = Low
}

func (m *MockGPIOProvider) SetupInput(pin int, pullUp bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[pin] = modeInput
	if pullUp {
		m.pins[pin] = High
	} else {
		m.pins[pin] = Low
	}
}

func (m *MockGPIOProvider) Write(pin int, value PinLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[pin] = value
}

func (m *MockGPIOProvider) Read(pin int) PinLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pins[pin]
}

func (m *MockGPIOProvider) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins = make(map[int]PinLevel)
	m.modes = make(map[int]pinMode)
}

// HardwareGPIOProvider is the real-pin backend. It stubs the same calls a
// periph.io/host-driven implementation would make; wiring an actual kernel
// GPIO character-device driver is out of this repository's scope (see
// DESIGN.md).
type HardwareGPIOProvider struct {
	mock *MockGPIOProvider // TODO: replace with a real /dev/gpiochipN backend
}

func NewHardwareGPIOProvider() *HardwareGPIOProvider {
	return &HardwareGPIOProvider{mock: NewMockGPIOProvider()}
}

func (h *HardwareGPIOProvider) SetupOutput(pin int)             { h.mock.SetupOutput(pin) }
func (h *HardwareGPIOProvider) SetupInput(pin int, pullUp bool) { h.mock.SetupInput(pin, pullUp) }
func (h *HardwareGPIOProvider) Write(pin int, value PinLevel)   { h.mock.Write(pin, value) }
func (h *HardwareGPIOProvider) Read(pin int) PinLevel           { return h.mock.Read(pin) }
func (h *HardwareGPIOProvider) Cleanup()                        { h.mock.Cleanup() }
