package core

// GPIOLines implements I2CLines on two GPIO pins.
//
// Open drain is emulated: a low level configures the pin as an output
// driving low, a high level releases it by switching to input with the
// pull-up enabled. External pull-ups are still recommended, the internal
// ones are weak.
type GPIOLines struct {
	Driver GPIODriver
	SDAPin GPIOPin
	SCLPin GPIOPin
}

// NewGPIOLines releases both pins and returns the line pair.
func NewGPIOLines(driver GPIODriver, sda, scl GPIOPin) (*GPIOLines, error) {
	l := &GPIOLines{Driver: driver, SDAPin: sda, SCLPin: scl}
	if err := driver.ConfigureInputPullUp(sda); err != nil {
		return nil, err
	}
	if err := driver.ConfigureInputPullUp(scl); err != nil {
		return nil, err
	}
	return l, nil
}

// SDA implements I2CLines
func (l *GPIOLines) SDA(state PinState) uint8 {
	return l.apply(l.SDAPin, state)
}

// SCL implements I2CLines
func (l *GPIOLines) SCL(state PinState) uint8 {
	return l.apply(l.SCLPin, state)
}

// lineFault is returned when the driver fails to reach or read a pin
const lineFault = 0xFF

func (l *GPIOLines) apply(pin GPIOPin, state PinState) uint8 {
	switch state {
	case PinLow:
		if err := l.Driver.ConfigureOutput(pin); err != nil {
			return lineFault
		}
		if err := l.Driver.SetPin(pin, false); err != nil {
			return lineFault
		}
	case PinHigh:
		if err := l.Driver.ConfigureInputPullUp(pin); err != nil {
			return lineFault
		}
	}

	level, err := l.Driver.GetPin(pin)
	if err != nil {
		return lineFault
	}
	if level {
		return 1
	}
	return 0
}
