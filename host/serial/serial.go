package serial

import (
	"io"

	"softi2c/config"
)

// Port is the byte stream to a USB line adapter.
// Implementations:
// - Native serial (using github.com/tarm/serial)
// - In-process fakes for tests
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate (the Bus Pirate talks 115200 8N1)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration for a Bus Pirate on device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// FromPortConfig converts the port section of a configuration file
func FromPortConfig(p config.PortConfig) *Config {
	cfg := DefaultConfig(p.Device)
	if p.Baud != 0 {
		cfg.Baud = p.Baud
	}
	if p.ReadTimeoutMS != 0 {
		cfg.ReadTimeout = p.ReadTimeoutMS
	}
	return cfg
}
