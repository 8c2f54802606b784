package core

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// SoftwareI2CDriver implements I2CDriver by bit-banging GPIO pin pairs.
// Used where the hardware I2C blocks are missing or already taken.
type SoftwareI2CDriver struct {
	mu sync.Mutex

	gpio   GPIODriver
	delays Delays

	// Pin pair per bus, registered with AddBus
	pins map[I2CBusID]softwareI2CPins

	// Engines for configured buses
	buses map[I2CBusID]*SoftI2C
}

// softwareI2CPins holds the pins of one software bus
type softwareI2CPins struct {
	sda GPIOPin
	scl GPIOPin
}

// NewSoftwareI2CDriver creates a driver that toggles pins through gpio
// and times bit phases with delays.
func NewSoftwareI2CDriver(gpio GPIODriver, delays Delays) *SoftwareI2CDriver {
	return &SoftwareI2CDriver{
		gpio:   gpio,
		delays: delays,
		pins:   make(map[I2CBusID]softwareI2CPins),
		buses:  make(map[I2CBusID]*SoftI2C),
	}
}

// AddBus assigns the SDA and SCL pins of a bus. The bus still has to be
// configured with ConfigureBus before use.
func (d *SoftwareI2CDriver) AddBus(bus I2CBusID, sda, scl GPIOPin) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sda == scl {
		return errors.New("SDA and SCL must be different pins")
	}
	d.pins[bus] = softwareI2CPins{sda: sda, scl: scl}
	delete(d.buses, bus)
	return nil
}

// ConfigureBus initializes a software bus at the given frequency.
// Reconfiguring replaces the engine.
func (d *SoftwareI2CDriver) ConfigureBus(bus I2CBusID, frequencyHz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pins, exists := d.pins[bus]
	if !exists {
		return errors.New("unsupported I2C bus ID")
	}

	lines, err := NewGPIOLines(d.gpio, pins.sda, pins.scl)
	if err != nil {
		return err
	}

	// Raw transfers carry their own address, the device fields are unused
	engine, err := NewSoftI2C(lines, DefaultSoftI2CConfig(frequencyHz, 0), d.delays)
	if err != nil {
		return err
	}

	d.buses[bus] = engine
	return nil
}

// bus returns the engine of a configured bus
func (d *SoftwareI2CDriver) bus(bus I2CBusID) (*SoftI2C, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	engine, exists := d.buses[bus]
	if !exists {
		return nil, errors.New("I2C bus not configured")
	}
	return engine, nil
}

// Write transmits data to a device at the given address on the specified bus.
func (d *SoftwareI2CDriver) Write(bus I2CBusID, addr I2CAddress, data []byte) error {
	engine, err := d.bus(bus)
	if err != nil {
		return err
	}
	return engine.Tx(uint16(addr), data, nil)
}

// Read reads data from a device, optionally writing a register address first.
// If regData is non-empty, it's transmitted before the read (restart in between).
func (d *SoftwareI2CDriver) Read(bus I2CBusID, addr I2CAddress, regData []byte, readLen uint8) ([]byte, error) {
	engine, err := d.bus(bus)
	if err != nil {
		return nil, err
	}

	readBuf := make([]byte, readLen)
	if err := engine.Tx(uint16(addr), regData, readBuf); err != nil {
		return nil, err
	}
	return readBuf, nil
}

// GetMachineBus returns the engine of a bus for use with TinyGo drivers.
func (d *SoftwareI2CDriver) GetMachineBus(bus I2CBusID) (drivers.I2C, error) {
	engine, err := d.bus(bus)
	if err != nil {
		return nil, err
	}
	return engine, nil
}
