// Package sim emulates an open-drain I2C bus with attached slave devices.
//
// The bus implements core.I2CLines, so a software I2C engine can run on it
// without hardware. Lines are wired-AND: a line is low when the master or
// a slave pulls it low. The slave state machine decodes START, STOP, bytes
// and acknowledge slots from the line edges the master produces.
package sim

import (
	"sync"

	"softi2c/core"
)

// Device is a slave attached to the bus.
type Device interface {
	// Addressed is called when the device's address frame is acknowledged
	Addressed(read bool)

	// Write receives one byte from the master, returns false to NACK it
	Write(b byte) bool

	// Read returns the next byte to transmit to the master
	Read() byte

	// Stop is called on STOP while the device is selected
	Stop()
}

// mode of the slave side state machine
type mode uint8

const (
	modeIdle     mode = iota // waiting for START
	modeAddress              // receiving the first address byte
	modeAddress10            // receiving the low byte of a 10-bit address
	modeReceive              // selected device receives
	modeTransmit             // selected device transmits
	modeIgnore               // not addressed, wait for START or STOP
)

// Bus is a simulated I2C bus.
// The zero value is not usable, create one with NewBus.
type Bus struct {
	mu sync.Mutex

	order core.BitOrder

	devices   map[uint16]Device
	devices10 map[uint16]Device

	// Line drive, true means released
	masterSDA bool
	masterSCL bool
	slaveSDA  bool

	// Line levels after the last operation
	sda bool
	scl bool

	mode     mode
	active   Device
	read     bool
	hi10     uint16
	bitCount int
	pending  bool
	bit      byte
	shift    byte
	out      byte

	sent   bool // last byte was transmitted by the slave
	fault  uint8
	events []Event
	bits   []byte
}

// NewBus returns an idle bus decoding bits in the given order.
func NewBus(order core.BitOrder) *Bus {
	return &Bus{
		order:     order,
		devices:   make(map[uint16]Device),
		devices10: make(map[uint16]Device),
		masterSDA: true,
		masterSCL: true,
		slaveSDA:  true,
		sda:       true,
		scl:       true,
	}
}

// Attach places dev at a 7-bit address.
func (b *Bus) Attach(addr uint16, dev Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr&0x7F] = dev
}

// Attach10 places dev at a 10-bit address.
func (b *Bus) Attach10(addr uint16, dev Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices10[addr&0x3FF] = dev
}

// FaultSDA makes SDA samples return level instead of the line state.
// Zero restores normal sampling.
func (b *Bus) FaultSDA(level uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fault = level
}

// Reset clears the traces and returns the bus to idle.
// Attached devices are kept.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.masterSDA, b.masterSCL, b.slaveSDA = true, true, true
	b.sda, b.scl = true, true
	b.mode = modeIdle
	b.active = nil
	b.bitCount = 0
	b.pending = false
	b.fault = 0
	b.events = nil
	b.bits = nil
}

// SDA implements core.I2CLines
func (b *Bus) SDA(state core.PinState) uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch state {
	case core.PinLow:
		b.masterSDA = false
	case core.PinHigh:
		b.masterSDA = true
	default:
		if b.fault != 0 {
			return b.fault
		}
	}
	b.update()
	return level(b.sda)
}

// SCL implements core.I2CLines
func (b *Bus) SCL(state core.PinState) uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch state {
	case core.PinLow:
		b.masterSCL = false
	case core.PinHigh:
		b.masterSCL = true
	}
	b.update()
	return level(b.scl)
}

func level(high bool) uint8 {
	if high {
		return 1
	}
	return 0
}

// update recomputes the line levels and reacts to the edges
func (b *Bus) update() {
	sda := b.masterSDA && b.slaveSDA
	scl := b.masterSCL

	prevSDA, prevSCL := b.sda, b.scl
	b.sda, b.scl = sda, scl

	switch {
	case scl && prevSCL && prevSDA && !sda:
		b.onStart()
	case scl && prevSCL && !prevSDA && sda:
		b.onStop()
	case scl && !prevSCL:
		b.onRise()
	case !scl && prevSCL:
		b.onFall()
	}
}

func (b *Bus) onStart() {
	kind := EventStart
	if b.mode != modeIdle {
		kind = EventRestart
	}
	b.events = append(b.events, Event{Kind: kind})

	b.mode = modeAddress
	b.active = nil
	b.bitCount = 0
	b.pending = false
	b.release()
}

func (b *Bus) onStop() {
	b.events = append(b.events, Event{Kind: EventStop})

	if b.active != nil {
		b.active.Stop()
	}
	b.active = nil
	b.mode = modeIdle
	b.bitCount = 0
	b.pending = false
	b.release()
}

// onRise samples SDA, the value is committed on the following fall
func (b *Bus) onRise() {
	if b.mode == modeIdle {
		return
	}
	b.pending = true
	b.bit = level(b.sda)

	if b.bitCount == 8 {
		// Acknowledge slot, SDA low means ACK
		e := Event{Kind: EventByte, Read: b.sent, Ack: !b.sda}
		if e.Read {
			e.Byte = b.out
		} else {
			e.Byte = b.shift
		}
		b.events = append(b.events, e)
	}
}

func (b *Bus) onFall() {
	if !b.pending {
		return
	}
	b.pending = false

	if b.bitCount < 8 {
		b.bits = append(b.bits, b.bit)
		if b.order == core.LSBFirst {
			b.shift = b.shift>>1 | b.bit<<7
		} else {
			b.shift = b.shift<<1 | b.bit
		}
		b.bitCount++
		b.sent = b.mode == modeTransmit

		if b.sent {
			if b.bitCount < 8 {
				b.driveBit()
			} else {
				b.release()
			}
			return
		}
		if b.bitCount == 8 {
			b.onByte()
		}
		return
	}

	// End of the acknowledge slot
	b.bitCount = 0
	b.release()
	if b.mode == modeTransmit {
		if b.bit != 0 {
			// NACK from the master ends the transmission
			b.mode = modeIgnore
			return
		}
		b.load()
	}
}

// onByte handles a byte received from the master and drives the acknowledge
func (b *Bus) onByte() {
	ack := false
	switch b.mode {
	case modeAddress:
		ack = b.address(b.shift)
	case modeAddress10:
		ack = b.address10(b.shift)
	case modeReceive:
		ack = b.active.Write(b.shift)
		if !ack {
			b.mode = modeIgnore
		}
	}
	if ack {
		b.slaveSDA = false
		b.refresh()
	}
}

// address decodes the first byte after a START
func (b *Bus) address(v byte) bool {
	read := v&0x1 == 1

	if v&0xF8 == 0xF0 {
		hi := uint16(v>>1) & 0x3
		for addr := range b.devices10 {
			if addr>>8 == hi {
				b.hi10 = hi
				b.read = read
				b.mode = modeAddress10
				return true
			}
		}
		b.mode = modeIgnore
		return false
	}

	dev, ok := b.devices[uint16(v>>1)]
	if !ok {
		b.mode = modeIgnore
		return false
	}
	b.selectDevice(dev, read)
	return true
}

// address10 decodes the low byte of a 10-bit address
func (b *Bus) address10(v byte) bool {
	dev, ok := b.devices10[b.hi10<<8|uint16(v)]
	if !ok {
		b.mode = modeIgnore
		return false
	}
	b.selectDevice(dev, b.read)
	return true
}

func (b *Bus) selectDevice(dev Device, read bool) {
	b.active = dev
	b.read = read
	dev.Addressed(read)
	if read {
		// First data bit is driven at the end of the acknowledge slot
		b.mode = modeTransmit
	} else {
		b.mode = modeReceive
	}
}

// load fetches the next byte from the selected device and drives its first bit
func (b *Bus) load() {
	b.out = b.active.Read()
	b.driveBit()
}

// driveBit drives bit bitCount of the outgoing byte
func (b *Bus) driveBit() {
	var bit byte
	if b.order == core.LSBFirst {
		bit = (b.out >> b.bitCount) & 0x1
	} else {
		bit = (b.out >> (7 - b.bitCount)) & 0x1
	}
	b.slaveSDA = bit == 1
	b.refresh()
}

func (b *Bus) release() {
	b.slaveSDA = true
	b.refresh()
}

// refresh applies a slave drive change while SCL is low
func (b *Bus) refresh() {
	b.sda = b.masterSDA && b.slaveSDA
}
