// Package buspirate drives I2C lines from a PC through a Bus Pirate in
// raw bitbang mode, so the software I2C engine can run on a host.
//
// SDA is wired to the MOSI pin and SCL to CLK. Both pins keep a low
// output value; a line is pulled low by making its pin an output and
// released by making it an input, which leaves it to the pull-ups.
package buspirate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slog"

	"softi2c/core"
)

// Bitbang mode commands
const (
	cmdReset     = 0x00 // enter bitbang mode, or stay in it
	cmdExit      = 0x0F // back to the user terminal
	cmdDirection = 0x40 // 010xxxxx, 1 = input
	cmdPins      = 0x80 // 1xxxxxxx, 1 = high / on
)

// Pin bits of the direction and state commands
const (
	pinCS     = 0x01
	pinMISO   = 0x02
	pinCLK    = 0x04
	pinMOSI   = 0x08
	pinAUX    = 0x10
	pinPullUp = 0x20
	pinPower  = 0x40

	pinSDA = pinMOSI
	pinSCL = pinCLK
)

// Bitbang mode entry
const (
	resetAttempts = 20
	readAttempts  = 10
)

var bitbangBanner = []byte("BBIO1")

var (
	ErrNoBitbang = errors.New("buspirate: no response to bitbang mode entry")
	ErrTimeout   = errors.New("buspirate: timeout waiting for pin state")
)

// faultLevel is reported for a line when the adapter cannot be reached
const faultLevel = 0xFF

// Lines implements core.I2CLines on a Bus Pirate.
type Lines struct {
	port   io.ReadWriter
	logger *slog.Logger

	dirs byte  // current direction bits, 1 = input
	err  error // first I/O error, later operations report a fault
}

var _ core.I2CLines = (*Lines)(nil)

// Open switches the adapter on port into bitbang mode, turns on the
// power supply and pull-ups and releases both lines.
func Open(port io.ReadWriter, logger *slog.Logger) (*Lines, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lines{port: port, logger: logger, dirs: 0x1F}

	if err := l.enterBitbang(); err != nil {
		return nil, err
	}
	if _, err := l.command(cmdPins | pinPower | pinPullUp); err != nil {
		return nil, fmt.Errorf("buspirate: enable power: %w", err)
	}
	if _, err := l.command(cmdDirection | l.dirs); err != nil {
		return nil, fmt.Errorf("buspirate: release lines: %w", err)
	}

	logger.Info("bus pirate in bitbang mode", "sda", "MOSI", "scl", "CLK")
	return l, nil
}

// enterBitbang sends 0x00 until the adapter answers with the banner
func (l *Lines) enterBitbang() error {
	if f, ok := l.port.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("buspirate: flush: %w", err)
		}
	}

	var reply []byte
	buf := make([]byte, 16)
	for i := 0; i < resetAttempts; i++ {
		if _, err := l.port.Write([]byte{cmdReset}); err != nil {
			return fmt.Errorf("buspirate: write: %w", err)
		}
		n, err := l.port.Read(buf)
		if err != nil && err != io.EOF {
			return fmt.Errorf("buspirate: read: %w", err)
		}
		reply = append(reply, buf[:n]...)
		if bytes.Contains(reply, bitbangBanner) {
			l.logger.Debug("bitbang banner received", "attempts", i+1)
			return nil
		}
	}
	return ErrNoBitbang
}

// command sends one command byte and returns the pin state reply
func (l *Lines) command(b byte) (byte, error) {
	if _, err := l.port.Write([]byte{b}); err != nil {
		return 0, err
	}
	var reply [1]byte
	for i := 0; i < readAttempts; i++ {
		n, err := l.port.Read(reply[:])
		if n == 1 {
			return reply[0], nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}
	return 0, ErrTimeout
}

// SDA implements core.I2CLines
func (l *Lines) SDA(state core.PinState) uint8 {
	return l.line(pinSDA, state)
}

// SCL implements core.I2CLines
func (l *Lines) SCL(state core.PinState) uint8 {
	return l.line(pinSCL, state)
}

func (l *Lines) line(pin byte, state core.PinState) uint8 {
	if l.err != nil {
		return faultLevel
	}

	switch state {
	case core.PinLow:
		l.dirs &^= pin
	case core.PinHigh:
		l.dirs |= pin
	}

	reply, err := l.command(cmdDirection | l.dirs)
	if err != nil {
		l.err = err
		l.logger.Error("bus pirate line access failed", "err", err)
		return faultLevel
	}
	if reply&pin != 0 {
		return 1
	}
	return 0
}

// Err returns the I/O error that faulted the lines, if any
func (l *Lines) Err() error {
	return l.err
}

// Close releases both lines and returns the adapter to its terminal
func (l *Lines) Close() error {
	if l.err == nil {
		if _, err := l.command(cmdDirection | 0x1F); err != nil {
			l.logger.Warn("release lines", "err", err)
		}
	}
	if _, err := l.port.Write([]byte{cmdExit}); err != nil {
		return fmt.Errorf("buspirate: exit bitbang: %w", err)
	}
	l.logger.Debug("bus pirate back in terminal mode")
	return nil
}
