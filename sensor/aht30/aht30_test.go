package aht30_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"softi2c/core"
	"softi2c/sensor/aht30"
	"softi2c/sim"
)

func TestDecode(t *testing.T) {
	frame := []byte{0x1F, 0x80, 0x05, 0x23, 0x19, 0x4B, 0x4E}

	m, err := aht30.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.RawHumidity != 0x80052 || m.RawTemperature != 0x3194B {
		t.Errorf("raw = 0x%x, 0x%x", m.RawHumidity, m.RawTemperature)
	}
	if rh := m.RelHumidity(); math.Abs(float64(rh)-50.008) > 0.01 {
		t.Errorf("RelHumidity = %.3f", rh)
	}
	if c := m.Celsius(); math.Abs(float64(c)-(-11.265)) > 0.01 {
		t.Errorf("Celsius = %.3f", c)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := aht30.Decode([]byte{0x1C, 0, 0}); err == nil {
		t.Error("short frame accepted")
	}
	if _, err := aht30.Decode([]byte{0x1F, 0x80, 0x05, 0x23, 0x19, 0x4B, 0x00}); !errors.Is(err, aht30.ErrCRC) {
		t.Errorf("bad crc: %v", err)
	}

	busy := []byte{0x9C, 0, 0, 0, 0, 0}
	busy = append(busy, aht30.CRC8(busy))
	if _, err := aht30.Decode(busy); !errors.Is(err, aht30.ErrBusy) {
		t.Errorf("busy frame: %v", err)
	}
}

func TestMeasure(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	sensor := sim.NewAHT30(50, 25)
	bus.Attach(aht30.Address, sensor)

	nop := func(uint32) {}
	engine, err := core.NewSoftI2C(bus, aht30.Config(100000), core.Delays{US: nop, MS: nop})
	if err != nil {
		t.Fatalf("NewSoftI2C: %v", err)
	}

	dev := aht30.New(engine)
	var waited time.Duration
	dev.Sleep = func(d time.Duration) { waited += d }

	m, err := dev.Measure()
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if m.RelHumidity() != 50 || m.Celsius() != 25 {
		t.Errorf("got %s, want RH 50 t 25", m)
	}
	if waited != 150*time.Millisecond {
		t.Errorf("waited %v", waited)
	}
	if sensor.Triggers() != 1 {
		t.Errorf("triggers = %d", sensor.Triggers())
	}
}

func TestMeasureNoSensor(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	engine, err := core.NewSoftI2C(bus, aht30.Config(100000), core.Delays{MS: func(uint32) {}})
	if err != nil {
		t.Fatal(err)
	}

	dev := aht30.New(engine)
	dev.Sleep = func(time.Duration) {}
	if _, err := dev.Measure(); !errors.Is(err, core.ErrNACK) {
		t.Errorf("Measure without sensor: %v", err)
	}
}
