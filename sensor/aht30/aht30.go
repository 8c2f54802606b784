// Package aht30 reads an AHT30 (or AHT20) humidity and temperature sensor
// through a software I2C engine.
package aht30

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"softi2c/core"
)

// Address is the fixed 7-bit address of the sensor
const Address = 0x38

const (
	cmdTrigger = 0xAC

	statusBusy = 0x80

	frameLen = 7

	// Time the sensor needs to complete a measurement
	measureTime = 150 * time.Millisecond
)

var (
	ErrCRC  = errors.New("aht30: crc mismatch")
	ErrBusy = errors.New("aht30: measurement not ready")
)

// Config returns the engine configuration the sensor needs:
// 8-bit command register, 8-bit data, no dummy write.
func Config(speed uint32) core.SoftI2CConfig {
	cfg := core.DefaultSoftI2CConfig(speed, Address)
	cfg.DummyWrite = core.DummyWriteOff
	return cfg
}

// Measurement is one decoded sensor frame
type Measurement struct {
	RawHumidity    uint32 // 20-bit
	RawTemperature uint32 // 20-bit
}

// RelHumidity in percent
func (m Measurement) RelHumidity() float32 {
	return float32(m.RawHumidity) / (1 << 20) * 100
}

// Celsius in degrees
func (m Measurement) Celsius() float32 {
	return float32(m.RawTemperature)/(1<<20)*200 - 50
}

func (m Measurement) String() string {
	return "RH: " + strconv.FormatFloat(float64(m.RelHumidity()), 'f', 2, 32) +
		"%, t: " + strconv.FormatFloat(float64(m.Celsius()), 'f', 2, 32) + "C"
}

// Device is an AHT30 on a software I2C bus
type Device struct {
	bus *core.SoftI2C

	// Sleep waits for the measurement, time.Sleep by default
	Sleep func(time.Duration)
}

// New wraps an engine configured with Config
func New(bus *core.SoftI2C) *Device {
	return &Device{bus: bus, Sleep: time.Sleep}
}

// Measure triggers a measurement, waits for it and reads the result.
func (d *Device) Measure() (Measurement, error) {
	if _, err := d.bus.Write(cmdTrigger, []byte{0x33, 0x00}, 0, 2); err != nil {
		return Measurement{}, fmt.Errorf("aht30: trigger: %w", err)
	}
	d.Sleep(measureTime)

	frame := make([]byte, frameLen)
	if _, err := d.bus.Read(cmdTrigger, frame, 0, frameLen); err != nil {
		return Measurement{}, fmt.Errorf("aht30: read: %w", err)
	}
	if core.IsDebugEnabled() {
		core.DebugPrintln("[AHT30] frame " + fmt.Sprintf("% X", frame))
	}
	return Decode(frame)
}

// Decode checks and converts a 7-byte sensor frame:
// status, 20 bits humidity, 20 bits temperature, CRC.
func Decode(frame []byte) (Measurement, error) {
	if len(frame) < frameLen {
		return Measurement{}, fmt.Errorf("aht30: frame too short (%d bytes)", len(frame))
	}
	if CRC8(frame[:6]) != frame[6] {
		core.DebugPrintln("[AHT30] CRC error")
		return Measurement{}, ErrCRC
	}
	if frame[0]&statusBusy != 0 {
		return Measurement{}, ErrBusy
	}
	return Measurement{
		RawHumidity:    uint32(frame[1])<<12 | uint32(frame[2])<<4 | uint32(frame[3])>>4,
		RawTemperature: uint32(frame[3]&0x0F)<<16 | uint32(frame[4])<<8 | uint32(frame[5]),
	}, nil
}

// CRC8 computes the sensor checksum: polynomial 0x31, initial value 0xFF.
func CRC8(p []byte) byte {
	crc := byte(0xFF)
	for _, b := range p {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
