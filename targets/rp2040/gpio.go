//go:build rp2040

package main

import (
	"errors"
	"machine"

	"softi2c/core"
)

// RP2040 has GPIO0-GPIO29
const numGPIO = 30

var errInvalidPin = errors.New("invalid GPIO pin")

type pinMode uint8

const (
	modeUnset pinMode = iota
	modeOutput
	modeInputPullUp
)

// RPGPIODriver implements the GPIODriver interface for RP2040.
// Direction changes are applied on every call: the software I2C lines
// flip pins between output and input for each bit.
type RPGPIODriver struct {
	modes [numGPIO]pinMode
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

// ConfigureOutput makes the pin an output. The output latch is cleared
// first so the pin never drives high on the way to an open-drain low.
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := d.machinePin(pin)
	if err != nil {
		return err
	}
	if d.modes[pin] == modeOutput {
		return nil
	}
	p.Low()
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.modes[pin] = modeOutput
	return nil
}

// ConfigureInputPullUp makes the pin an input with the pull-up enabled
func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := d.machinePin(pin)
	if err != nil {
		return err
	}
	if d.modes[pin] == modeInputPullUp {
		return nil
	}
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.modes[pin] = modeInputPullUp
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, err := d.machinePin(pin)
	if err != nil {
		return err
	}
	if d.modes[pin] != modeOutput {
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	p.Set(value)
	return nil
}

// GetPin reads the pad level, whatever the direction
func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, err := d.machinePin(pin)
	if err != nil {
		return false, err
	}
	return p.Get(), nil
}

// machinePin maps a pin number to a machine.Pin; GPIOn is pin n
func (d *RPGPIODriver) machinePin(pin core.GPIOPin) (machine.Pin, error) {
	if pin >= numGPIO {
		return machine.NoPin, errInvalidPin
	}
	return machine.Pin(pin), nil
}
