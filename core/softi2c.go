// Software I2C master
// Emulates an I2C master by driving two open-drain lines through an
// I2CLines implementation, for boards where the hardware I2C block is
// missing or already taken.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// Transaction errors
var (
	ErrNotInitialized = errors.New("soft i2c: engine not initialized")
	ErrNACK           = errors.New("soft i2c: NACK received")
	ErrNoDevice       = fmt.Errorf("%w: no device acknowledged the address", ErrNACK)
	ErrLineFault      = errors.New("soft i2c: line sample was not 0 or 1")
	ErrShortBuffer    = errors.New("soft i2c: buffer too short for offset and count")
)

// Direction bit of an address frame
const (
	dirWrite = 0x0
	dirRead  = 0x1
)

// Frame kinds, reported with EvtNack
const (
	FrameDevice   = 0
	FrameRegister = 1
	FrameData     = 2
)

// SoftI2C is a software I2C engine bound to one bus and one device.
// The zero value is unusable until Init succeeds.
//
// Calls are serialized by an internal mutex, so one engine may be shared
// between goroutines. Engines sharing the same physical lines must still
// be serialized by the caller.
type SoftI2C struct {
	mu sync.Mutex

	lines  I2CLines
	cfg    SoftI2CConfig
	timing Timing
	ready  bool

	// Per-transfer state
	target uint16 // Address being talked to
	fault  bool   // A line sample was not binary
}

// NewSoftI2C validates cfg and returns a ready engine.
func NewSoftI2C(lines I2CLines, cfg SoftI2CConfig, delays Delays) (*SoftI2C, error) {
	s := &SoftI2C{}
	if err := s.Init(lines, cfg, delays); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDefaultSoftI2C builds an engine with DefaultSoftI2CConfig.
func NewDefaultSoftI2C(lines I2CLines, speed uint32, addr uint16, delays Delays) (*SoftI2C, error) {
	return NewSoftI2C(lines, DefaultSoftI2CConfig(speed, addr), delays)
}

// Init (re)initializes the engine. On failure the engine is left
// unusable and the returned *InitError carries the status code.
func (s *SoftI2C) Init(lines I2CLines, cfg SoftI2CConfig, delays Delays) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = false

	if lines == nil {
		return initErr(StatusNilLines, ErrNilLines, "")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	timing, err := ResolveTiming(cfg.Speed, delays)
	if err != nil {
		return err
	}

	s.lines = lines
	s.cfg = cfg
	s.timing = timing
	s.ready = true

	if debugEnabled {
		DebugPrintln("[SOFTI2C] init addr=0x" + strconv.FormatUint(uint64(cfg.DeviceAddress), 16) +
			" speed=" + strconv.FormatUint(uint64(cfg.Speed), 10) +
			" x=" + strconv.FormatUint(uint64(timing.X), 10) + timing.Unit.String())
	}
	return nil
}

// Config returns the active configuration
func (s *SoftI2C) Config() SoftI2CConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Timing returns the resolved bit timing
func (s *SoftI2C) Timing() Timing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timing
}

// Ready reports whether the last Init succeeded
func (s *SoftI2C) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// nackErr records a refused byte and returns the matching error
func (s *SoftI2C) nackErr(b byte, frame uint32) error {
	if s.fault {
		RecordBusEvent(EvtFault, s.target, uint32(b), frame)
		return ErrLineFault
	}
	RecordBusEvent(EvtNack, s.target, uint32(b), frame)
	if frame == FrameDevice {
		return ErrNoDevice
	}
	return ErrNACK
}

// finish logs the outcome of a transfer
func (s *SoftI2C) finish(done, want int, err error) {
	RecordBusEvent(EvtDone, s.target, uint32(done), uint32(want))
	if err != nil && debugEnabled {
		DebugPrintln("[SOFTI2C] addr=0x" + strconv.FormatUint(uint64(s.target), 16) +
			" " + err.Error() + " after " + strconv.Itoa(done) + "/" + strconv.Itoa(want))
	}
}
