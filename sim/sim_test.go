package sim

import (
	"testing"

	"softi2c/core"
)

func TestCRC8(t *testing.T) {
	if got := CRC8([]byte("123456789")); got != 0xF7 {
		t.Errorf("check value = 0x%02x, want 0xf7", got)
	}
	// Frame captured from an AHT20
	if got := CRC8([]byte{0x1C, 0x5D, 0x10, 0x66, 0x01, 0xD2}); got != 0x93 {
		t.Errorf("frame crc = 0x%02x, want 0x93", got)
	}
}

// clock drives one bit on the bus from the master side
func clock(b *Bus, bit uint8) uint8 {
	b.SDA(core.PinState(bit))
	b.SCL(core.PinHigh)
	level := b.SDA(core.PinSample)
	b.SCL(core.PinLow)
	return level
}

func TestStartStopDetection(t *testing.T) {
	b := NewBus(core.MSBFirst)

	b.SDA(core.PinLow) // START
	b.SCL(core.PinLow)
	b.SDA(core.PinHigh)
	b.SCL(core.PinHigh)
	b.SDA(core.PinLow) // repeated START
	b.SCL(core.PinLow)
	b.SCL(core.PinHigh)
	b.SDA(core.PinHigh) // STOP

	want := []Event{Start(), Restart(), Stop()}
	got := b.Events()
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !b.Idle() {
		t.Error("bus not idle after STOP")
	}
}

func TestAddressAcknowledge(t *testing.T) {
	b := NewBus(core.MSBFirst)
	b.Attach(0x21, NewROM())

	b.SDA(core.PinLow)
	b.SCL(core.PinLow)
	for i := 7; i >= 0; i-- {
		clock(b, (0x42>>i)&1)
	}
	if ack := clock(b, 1); ack != 0 {
		t.Error("addressed device did not ACK")
	}

	events := b.Events()
	if last := events[len(events)-1]; last != Wrote(0x42, true) {
		t.Errorf("last event %v", last)
	}
	if bits := b.Bits(); len(bits) != 8 {
		t.Errorf("recorded %d bits, want 8", len(bits))
	}
}

func TestMemoryWrapsAndAutoIncrements(t *testing.T) {
	m := NewMemory(4, 1, core.LittleEndian)
	m.Addressed(false)
	for _, b := range []byte{0x03, 0xA, 0xB} {
		m.Write(b)
	}
	if got := m.Bytes(); got[3] != 0xA || got[0] != 0xB {
		t.Errorf("memory = % x", got)
	}
	if m.Pointer() != 1 {
		t.Errorf("pointer = %d, want 1", m.Pointer())
	}

	m.Addressed(true)
	if got := m.Read(); got != 0 {
		t.Errorf("read 0x%02x at pointer 1", got)
	}
}

func TestGPIOView(t *testing.T) {
	b := NewBus(core.MSBFirst)
	g := b.GPIO()

	if err := g.ConfigureOutput(SDAPin); err != nil {
		t.Fatal(err)
	}
	if err := g.SetPin(SDAPin, false); err != nil {
		t.Fatal(err)
	}
	if level, _ := g.GetPin(SDAPin); level {
		t.Error("SDA high while driven low")
	}
	if got := b.Events(); len(got) != 1 || got[0] != Start() {
		t.Errorf("events %v, want START", got)
	}

	if err := g.ConfigureInputPullUp(SDAPin); err != nil {
		t.Fatal(err)
	}
	if level, _ := g.GetPin(SDAPin); !level {
		t.Error("SDA low after release")
	}
	if _, err := g.GetPin(5); err == nil {
		t.Error("GetPin accepted an unknown pin")
	}
}
