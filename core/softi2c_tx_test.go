package core_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"softi2c/core"
	"softi2c/sim"
)

func TestScan(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	bus.Attach(0x38, sim.NewROM())
	bus.Attach(0x50, sim.NewMemory(16, 1, core.LittleEndian))
	bus.Attach(0x03, sim.NewROM()) // reserved, never probed
	s := newEngine(t, bus, core.DefaultSoftI2CConfig(400000, 0))

	if diff := cmp.Diff([]uint16{0x38, 0x50}, s.Scan()); diff != "" {
		t.Errorf("Scan (-want +got):\n%s", diff)
	}
	if !bus.Idle() {
		t.Error("bus not idle after scan")
	}
}

func TestTxCombined(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	mem := sim.NewMemory(16, 1, core.LittleEndian)
	mem.Load(2, []byte{0xCA, 0xFE})
	bus.Attach(0x50, mem)
	s := newEngine(t, bus, core.DefaultSoftI2CConfig(100000, 0x38))

	buf := make([]byte, 2)
	if err := s.Tx(0x50, []byte{0x02}, buf); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if diff := cmp.Diff([]byte{0xCA, 0xFE}, buf); diff != "" {
		t.Errorf("Tx read (-want +got):\n%s", diff)
	}

	want := []sim.Event{
		sim.Start(), sim.Wrote(0xA0, true), sim.Wrote(0x02, true),
		sim.Restart(), sim.Wrote(0xA1, true), sim.Sent(0xCA, true), sim.Sent(0xFE, false),
		sim.Stop(),
	}
	if diff := cmp.Diff(want, bus.Events()); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
}

func TestTxReadOnly(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	bus.Attach(0x38, sim.NewROM(0x1C))
	s := newEngine(t, bus, core.DefaultSoftI2CConfig(100000, 0x38))

	buf := make([]byte, 1)
	if err := s.Tx(0x38, nil, buf); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	want := []sim.Event{sim.Start(), sim.Wrote(0x71, true), sim.Sent(0x1C, false), sim.Stop()}
	if diff := cmp.Diff(want, bus.Events()); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
}

func TestRegisterHelpers(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	mem := sim.NewMemory(16, 1, core.LittleEndian)
	bus.Attach(0x50, mem)
	s := newEngine(t, bus, core.DefaultSoftI2CConfig(100000, 0x38))

	if err := s.WriteRegister(0x50, 0x05, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	buf := make([]byte, 3)
	if err := s.ReadRegister(0x50, 0x05, buf); err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, buf); diff != "" {
		t.Errorf("register contents (-want +got):\n%s", diff)
	}
}

func TestTxErrors(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	bus.Attach10(0x2A5, sim.NewROM(0x99))
	s := newEngine(t, bus, core.DefaultSoftI2CConfig(100000, 0x38))

	if err := s.Tx(0x400, []byte{0}, nil); !errors.Is(err, core.ErrAddressOutOfRange) {
		t.Errorf("Tx(0x400) = %v", err)
	}
	if err := s.Tx(0x38, []byte{0}, nil); !errors.Is(err, core.ErrNoDevice) {
		t.Errorf("Tx to absent device = %v", err)
	}

	// Addresses above 0x7F switch to 10-bit framing
	buf := make([]byte, 1)
	if err := s.Tx(0x2A5, nil, buf); err != nil || buf[0] != 0x99 {
		t.Errorf("10-bit Tx = 0x%02x, %v", buf[0], err)
	}
}

func TestGPIOLines(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	mem := sim.NewMemory(16, 1, core.LittleEndian)
	bus.Attach(0x50, mem)

	lines, err := core.NewGPIOLines(bus.GPIO(), sim.SDAPin, sim.SCLPin)
	if err != nil {
		t.Fatalf("NewGPIOLines: %v", err)
	}
	s, err := core.NewDefaultSoftI2C(lines, 100000, 0x50, nopDelays())
	if err != nil {
		t.Fatalf("NewDefaultSoftI2C: %v", err)
	}

	if n, err := s.Write(0x08, []byte{0x11, 0x22}, 0, 2); n != 2 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	buf := make([]byte, 2)
	if n, err := s.Read(0x08, buf, 0, 2); n != 2 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if diff := cmp.Diff([]byte{0x11, 0x22}, buf); diff != "" {
		t.Errorf("read back (-want +got):\n%s", diff)
	}
}

func TestGPIOLinesDriverFailure(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	if _, err := core.NewGPIOLines(bus.GPIO(), 7, sim.SCLPin); err == nil {
		t.Error("NewGPIOLines accepted an unknown pin")
	}
}
