// Package adapter connects the software I2C engine to the lines it runs on
// from a host: a Bus Pirate on a serial port, or a simulated bus.
package adapter

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"softi2c/core"
	"softi2c/host/buspirate"
	"softi2c/host/serial"
	"softi2c/sim"
)

// Adapter owns a pair of I2C lines
type Adapter struct {
	lines  core.I2CLines
	delays core.Delays
	logger *slog.Logger

	// Close hooks, run in reverse order
	closers []func() error

	// Simulated bus, nil on hardware
	bus *sim.Bus

	connected bool
}

// Connect opens the serial port and switches the Bus Pirate on it to
// bitbang mode.
func Connect(cfg *serial.Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}

	lines, err := buspirate.Open(port, logger)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to enter bitbang mode on %s: %w", cfg.Device, err)
	}

	logger.Info("adapter connected", "device", cfg.Device, "baud", cfg.Baud)
	return &Adapter{
		lines: lines,
		// Every line operation is a USB round trip, far slower than a bit phase
		delays:    core.SleepDelays(),
		logger:    logger,
		closers:   []func() error{port.Close, lines.Close},
		connected: true,
	}, nil
}

// Simulated wraps a simulated bus. Delays are no-ops, the simulator has
// no timing.
func Simulated(bus *sim.Bus, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	nop := func(uint32) {}

	logger.Info("using simulated bus")
	return &Adapter{
		lines:     bus,
		delays:    core.Delays{NS: nop, US: nop, MS: nop},
		logger:    logger,
		bus:       bus,
		connected: true,
	}
}

// DemoBus returns a simulated bus populated with an AHT30 at 0x38 and a
// 4 KiB EEPROM with 16-bit big endian word addresses at 0x50.
func DemoBus() *sim.Bus {
	bus := sim.NewBus(core.MSBFirst)
	bus.Attach(0x38, sim.NewAHT30(45.5, 22.5))
	bus.Attach(0x50, sim.NewMemory(4096, 2, core.BigEndian))
	return bus
}

// Bus returns the simulated bus, or nil when connected to hardware
func (a *Adapter) Bus() *sim.Bus {
	return a.bus
}

// Lines returns the line driver
func (a *Adapter) Lines() core.I2CLines {
	return a.lines
}

// Engine builds an engine for one device profile on the adapter's lines
func (a *Adapter) Engine(cfg core.SoftI2CConfig) (*core.SoftI2C, error) {
	if !a.connected {
		return nil, errors.New("adapter closed")
	}
	engine, err := core.NewSoftI2C(a.lines, cfg, a.delays)
	if err != nil {
		return nil, fmt.Errorf("invalid device configuration (status %d): %w", core.StatusOf(err), err)
	}

	t := engine.Timing()
	a.logger.Debug("engine ready",
		"address", fmt.Sprintf("0x%02x", cfg.DeviceAddress),
		"speed", cfg.Speed,
		"period", fmt.Sprintf("%d%s", t.X, t.Unit))
	return engine, nil
}

// Close releases the lines and the port
func (a *Adapter) Close() error {
	if !a.connected {
		return nil
	}
	a.connected = false

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
