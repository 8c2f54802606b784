package sim

import (
	"errors"

	"softi2c/core"
)

// Pins of the GPIO view
const (
	SDAPin core.GPIOPin = 0
	SCLPin core.GPIOPin = 1
)

var errUnknownPin = errors.New("sim: unknown pin")

// gpio drives the bus lines like two push-pull pins with pull-ups:
// a pin pulls its line low only while it is an output set low.
type gpio struct {
	bus    *Bus
	output [2]bool
	value  [2]bool
}

// GPIO returns a core.GPIODriver whose pins SDAPin and SCLPin are wired
// to the bus lines.
func (b *Bus) GPIO() core.GPIODriver {
	return &gpio{bus: b}
}

func (g *gpio) ConfigureOutput(pin core.GPIOPin) error {
	if pin > SCLPin {
		return errUnknownPin
	}
	g.output[pin] = true
	g.apply(pin)
	return nil
}

func (g *gpio) ConfigureInputPullUp(pin core.GPIOPin) error {
	if pin > SCLPin {
		return errUnknownPin
	}
	g.output[pin] = false
	g.apply(pin)
	return nil
}

func (g *gpio) SetPin(pin core.GPIOPin, value bool) error {
	if pin > SCLPin {
		return errUnknownPin
	}
	g.value[pin] = value
	g.apply(pin)
	return nil
}

func (g *gpio) GetPin(pin core.GPIOPin) (bool, error) {
	switch pin {
	case SDAPin:
		return g.bus.SDA(core.PinSample) == 1, nil
	case SCLPin:
		return g.bus.SCL(core.PinSample) == 1, nil
	}
	return false, errUnknownPin
}

func (g *gpio) apply(pin core.GPIOPin) {
	state := core.PinHigh
	if g.output[pin] && !g.value[pin] {
		state = core.PinLow
	}
	if pin == SDAPin {
		g.bus.SDA(state)
	} else {
		g.bus.SCL(state)
	}
}
