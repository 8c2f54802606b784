package core

import (
	"errors"
	"strconv"
)

// Legal ranges
const (
	SoftI2CSpeedMin = 100    // Hz
	SoftI2CSpeedMax = 400000 // Hz

	RegisterSizeMin = 1  // bits
	RegisterSizeMax = 32 // bits
	DataSizeMin     = 1  // bits
	DataSizeMax     = 32 // bits
)

// BitOrder selects which end of a byte goes on the wire first.
type BitOrder uint8

const (
	MSBFirst BitOrder = 0
	LSBFirst BitOrder = 1
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "msb"
	case LSBFirst:
		return "lsb"
	}
	return "BitOrder(" + strconv.Itoa(int(o)) + ")"
}

// Endian selects byte order of a multi-byte quantity.
type Endian uint8

const (
	LittleEndian Endian = 0
	BigEndian    Endian = 1
)

func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	}
	return "Endian(" + strconv.Itoa(int(e)) + ")"
}

// DummyWrite selects whether a read first sends a write-direction
// address and register frame, then a repeated start.
type DummyWrite uint8

const (
	DummyWriteOff DummyWrite = 0
	DummyWriteOn  DummyWrite = 1
)

// AddressSize is the device address width in bits.
type AddressSize uint8

const (
	AddressSize7  AddressSize = 7
	AddressSize10 AddressSize = 10
)

// mask returns the largest address of this width
func (s AddressSize) mask() uint16 {
	if s == AddressSize10 {
		return 0x3FF
	}
	return 0x7F
}

// SoftI2CConfig describes one bus+device pairing.
type SoftI2CConfig struct {
	Speed    uint32   // Bus speed in Hz (100-400000)
	BitOrder BitOrder // Bit order of every byte on the wire

	MasterEndian   Endian // Layout of words in caller buffers
	RegisterEndian Endian // Order of register address bytes on the wire
	DataEndian     Endian // Order of data word bytes on the wire

	DummyWrite DummyWrite // Select register with a write frame before reading

	DeviceAddress     uint16
	DeviceAddressSize AddressSize
	RegisterSize      uint8 // Register address width in bits (1-32)
	DataSize          uint8 // Data word width in bits (1-32)
}

// DefaultSoftI2CConfig returns the common configuration: MSB first,
// little endian everywhere, dummy write on, 7-bit device address,
// 8-bit registers and 8-bit data.
func DefaultSoftI2CConfig(speed uint32, addr uint16) SoftI2CConfig {
	return SoftI2CConfig{
		Speed:             speed,
		BitOrder:          MSBFirst,
		MasterEndian:      LittleEndian,
		RegisterEndian:    LittleEndian,
		DataEndian:        LittleEndian,
		DummyWrite:        DummyWriteOn,
		DeviceAddress:     addr,
		DeviceAddressSize: AddressSize7,
		RegisterSize:      8,
		DataSize:          8,
	}
}

// registerBytes is the register address width rounded up to bytes
func (c *SoftI2CConfig) registerBytes() int {
	return (int(c.RegisterSize) + 7) / 8
}

// dataBytes is the data word width rounded up to bytes
func (c *SoftI2CConfig) dataBytes() int {
	return (int(c.DataSize) + 7) / 8
}

// stride is the slot size of one element in a caller buffer.
// 3-byte words live in 4-byte slots.
func (c *SoftI2CConfig) stride() int {
	switch n := c.dataBytes(); n {
	case 1, 2:
		return n
	default:
		return 4
	}
}

// Status codes reported by initialization, one per failure class
const (
	StatusOK                = 0
	StatusNilLines          = -1
	StatusBadSpeed          = -2
	StatusBadBitOrder       = -3
	StatusBadEndian         = -4
	StatusBadDummyWrite     = -5
	StatusBadAddressSize    = -6
	StatusBadRegisterSize   = -7
	StatusBadDataSize       = -8
	StatusNoDelay           = -9
	StatusAddressOutOfRange = -10
)

// Initialization error classes
var (
	ErrNilLines          = errors.New("soft i2c: nil line driver")
	ErrBadSpeed          = errors.New("soft i2c: speed out of range")
	ErrBadBitOrder       = errors.New("soft i2c: illegal bit order")
	ErrBadEndian         = errors.New("soft i2c: illegal endianness")
	ErrBadDummyWrite     = errors.New("soft i2c: illegal dummy write flag")
	ErrBadAddressSize    = errors.New("soft i2c: illegal device address size")
	ErrBadRegisterSize   = errors.New("soft i2c: illegal register address size")
	ErrBadDataSize       = errors.New("soft i2c: illegal data size")
	ErrNoDelay           = errors.New("soft i2c: no delay function")
	ErrAddressOutOfRange = errors.New("soft i2c: device address does not fit its size")
)

// InitError reports why a configuration was rejected.
type InitError struct {
	Status int    // Negative status code
	Field  string // Offending field, if any
	Err    error  // One of the Err* classes above
}

func (e *InitError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + " (" + e.Field + ")"
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// StatusOf returns the status code carried by an initialization error.
// nil maps to StatusOK. Errors from elsewhere report the generic -1.
func StatusOf(err error) int {
	if err == nil {
		return StatusOK
	}
	var ie *InitError
	if errors.As(err, &ie) {
		return ie.Status
	}
	return StatusNilLines
}

func initErr(status int, class error, field string) error {
	return &InitError{Status: status, Field: field, Err: class}
}

// Validate checks every field against its legal range.
// The first failing class is reported.
func (c *SoftI2CConfig) Validate() error {
	if c.Speed < SoftI2CSpeedMin || c.Speed > SoftI2CSpeedMax {
		return initErr(StatusBadSpeed, ErrBadSpeed, "speed="+strconv.FormatUint(uint64(c.Speed), 10))
	}
	if c.BitOrder != MSBFirst && c.BitOrder != LSBFirst {
		return initErr(StatusBadBitOrder, ErrBadBitOrder, c.BitOrder.String())
	}
	for _, e := range []struct {
		name string
		val  Endian
	}{
		{"master", c.MasterEndian},
		{"register", c.RegisterEndian},
		{"data", c.DataEndian},
	} {
		if e.val != LittleEndian && e.val != BigEndian {
			return initErr(StatusBadEndian, ErrBadEndian, e.name)
		}
	}
	if c.DummyWrite != DummyWriteOff && c.DummyWrite != DummyWriteOn {
		return initErr(StatusBadDummyWrite, ErrBadDummyWrite, "")
	}
	if c.DeviceAddressSize != AddressSize7 && c.DeviceAddressSize != AddressSize10 {
		return initErr(StatusBadAddressSize, ErrBadAddressSize, "")
	}
	if c.RegisterSize < RegisterSizeMin || c.RegisterSize > RegisterSizeMax {
		return initErr(StatusBadRegisterSize, ErrBadRegisterSize, "")
	}
	if c.DataSize < DataSizeMin || c.DataSize > DataSizeMax {
		return initErr(StatusBadDataSize, ErrBadDataSize, "")
	}
	if c.DeviceAddress > c.DeviceAddressSize.mask() {
		return initErr(StatusAddressOutOfRange, ErrAddressOutOfRange, "0x"+strconv.FormatUint(uint64(c.DeviceAddress), 16))
	}
	return nil
}
