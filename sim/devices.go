package sim

import (
	"sync"

	"softi2c/core"
)

// Memory is a register-addressed byte memory, like an EEPROM or the
// register file of a sensor. A write selects the register with the first
// register-width bytes, then stores data from there; reads continue from
// the current register. The pointer wraps at the end of the memory.
type Memory struct {
	mu sync.Mutex

	data      []byte
	regBytes  int
	regEndian core.Endian

	ptr  int
	need int // register bytes still expected
	reg  uint32
}

// NewMemory returns a zeroed memory of size bytes addressed with
// regBytes-wide register addresses.
func NewMemory(size, regBytes int, regEndian core.Endian) *Memory {
	return &Memory{
		data:      make([]byte, size),
		regBytes:  regBytes,
		regEndian: regEndian,
	}
}

// Load copies p into the memory at offset
func (m *Memory) Load(offset int, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.data[offset:], p)
}

// Bytes returns a copy of the memory contents
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Pointer returns the current register
func (m *Memory) Pointer() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ptr
}

func (m *Memory) Addressed(read bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !read {
		m.need = m.regBytes
		m.reg = 0
	}
}

func (m *Memory) Write(b byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.need > 0 {
		m.need--
		if m.regEndian == core.BigEndian {
			m.reg = m.reg<<8 | uint32(b)
		} else {
			m.reg |= uint32(b) << (8 * (m.regBytes - 1 - m.need))
		}
		if m.need == 0 {
			m.ptr = int(m.reg % uint32(len(m.data)))
		}
		return true
	}

	m.data[m.ptr] = b
	m.ptr = (m.ptr + 1) % len(m.data)
	return true
}

func (m *Memory) Read() byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.data[m.ptr]
	m.ptr = (m.ptr + 1) % len(m.data)
	return b
}

func (m *Memory) Stop() {}

// ROM answers every read with a fixed sequence, restarting it each time
// the device is addressed for reading. Written bytes are recorded.
type ROM struct {
	mu sync.Mutex

	data    []byte
	pos     int
	written []byte
}

// NewROM returns a ROM holding data
func NewROM(data ...byte) *ROM {
	return &ROM{data: data}
}

// Written returns every byte the master wrote, register bytes included
func (r *ROM) Written() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.written...)
}

func (r *ROM) Addressed(read bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if read {
		r.pos = 0
	}
}

func (r *ROM) Write(b byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, b)
	return true
}

func (r *ROM) Read() byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.data) {
		return 0xFF
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *ROM) Stop() {}

// NackAfter wraps a device and refuses every written byte after the
// first N of a transaction. Bytes include register address bytes.
type NackAfter struct {
	Device
	N int

	count int
}

func (n *NackAfter) Addressed(read bool) {
	n.count = 0
	n.Device.Addressed(read)
}

func (n *NackAfter) Write(b byte) bool {
	n.count++
	if n.count > n.N {
		return false
	}
	return n.Device.Write(b)
}
