package hardware

// MotorPins names the GPIO lines a single stepper axis drives.
type MotorPins struct {
	Step      int
	Direction int
	Enable    int
	Fault     *int
}

// SensorPins names the limit-switch (and optional encoder) lines a sensor
// reader watches.
type SensorPins struct {
	AltLimitLow   int
	AltLimitHigh  int
	AzLimitLow    int
	AzLimitHigh   int
	AltEncoderA   *int
	AltEncoderB   *int
	AzEncoderA    *int
	AzEncoderB    *int
}

// Default BCM pin assignments, placeholders pending real wiring.
var (
	altFault = 5
	azFault  = 6

	AltMotor   = MotorPins{Step: 17, Direction: 27, Enable: 22, Fault: &altFault}
	AzMotor    = MotorPins{Step: 23, Direction: 24, Enable: 25, Fault: &azFault}
	FocusMotor = MotorPins{Step: 12, Direction: 16, Enable: 20}

	Sensors = SensorPins{
		AltLimitLow:  13,
		AltLimitHigh: 19,
		AzLimitLow:   26,
		AzLimitHigh:  21,
	}
)

// Initialize configures every motor and sensor pin's direction.
func Initialize(gpio GPIOProvider, motors []MotorPins, sensors SensorPins) {
	for _, mp := range motors {
		gpio.SetupOutput(mp.Step)
		gpio.SetupOutput(mp.Direction)
		gpio.SetupOutput(mp.Enable)
		if mp.Fault != nil {
			gpio.SetupInput(*mp.Fault, true)
		}
	}
	for _, pin := range []int{sensors.AltLimitLow, sensors.AltLimitHigh, sensors.AzLimitLow, sensors.AzLimitHigh} {
		gpio.SetupInput(pin, true)
	}
}
