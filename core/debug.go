package core

import (
	"strconv"
	"sync"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// BusEvent captures one bus event for post-mortem analysis
type BusEvent struct {
	EventType uint8  // Event type code
	Address   uint16 // Device address of the transfer
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtStart   = 1 // START sent
	EvtRestart = 2 // Repeated START sent
	EvtStop    = 3 // STOP sent
	EvtNack    = 4 // Byte refused, v1=byte v2=frame
	EvtFault   = 5 // Line sample not binary, v1=byte v2=frame
	EvtDone    = 6 // Transfer finished, v1=completed v2=requested
)

const (
	BusEventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Bus event ring buffer
	eventMu       sync.Mutex
	eventRing     [BusEventRingSize]BusEvent
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
// Debug output costs far more than a bit phase, leave it off when timing matters
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordBusEvent captures an event in the ring buffer
func RecordBusEvent(eventType uint8, addr uint16, value1, value2 uint32) {
	eventMu.Lock()
	idx := eventRingHead
	eventRing[idx] = BusEvent{
		EventType: eventType,
		Address:   addr,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % BusEventRingSize
	eventMu.Unlock()
}

// BusEvents returns the recorded events, oldest first
func BusEvents() []BusEvent {
	eventMu.Lock()
	defer eventMu.Unlock()

	events := make([]BusEvent, 0, BusEventRingSize)
	start := eventRingHead
	for i := uint8(0); i < BusEventRingSize; i++ {
		evt := eventRing[(start+i)%BusEventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// String formats an event for debug output
func (e BusEvent) String() string {
	var name string
	switch e.EventType {
	case EvtStart:
		name = "START"
	case EvtRestart:
		name = "RESTART"
	case EvtStop:
		name = "STOP"
	case EvtNack:
		name = "NACK!"
	case EvtFault:
		name = "FAULT!"
	case EvtDone:
		name = "DONE"
	default:
		name = "UNKNOWN"
	}
	return name +
		" addr=0x" + strconv.FormatUint(uint64(e.Address), 16) +
		" v1=" + strconv.FormatUint(uint64(e.Value1), 10) +
		" v2=" + strconv.FormatUint(uint64(e.Value2), 10)
}

// DumpBusEvents outputs the event ring (call after a failed transfer)
func DumpBusEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[BUS] === Bus Event Dump ===")
	for _, evt := range BusEvents() {
		debugPrintln("[BUS] " + evt.String())
	}
	debugPrintln("[BUS] === End Dump ===")
}

// ClearBusEvents clears the event buffer
func ClearBusEvents() {
	eventMu.Lock()
	defer eventMu.Unlock()
	for i := range eventRing {
		eventRing[i] = BusEvent{}
	}
	eventRingHead = 0
}
