package sim

import "fmt"

// EventKind classifies a decoded bus event
type EventKind uint8

const (
	EventStart EventKind = iota + 1
	EventRestart
	EventStop
	EventByte
)

// Event is one decoded bus condition or byte.
type Event struct {
	Kind EventKind
	Byte byte // EventByte only
	Read bool // Byte was sent by the slave
	Ack  bool // Receiver pulled SDA low in the acknowledge slot
}

func (e Event) String() string {
	switch e.Kind {
	case EventStart:
		return "S"
	case EventRestart:
		return "Sr"
	case EventStop:
		return "P"
	case EventByte:
		ack := "NA"
		if e.Ack {
			ack = "A"
		}
		dir := ">"
		if e.Read {
			dir = "<"
		}
		return fmt.Sprintf("%s%02X %s", dir, e.Byte, ack)
	}
	return "?"
}

// Event constructors, for comparing traces
func Start() Event   { return Event{Kind: EventStart} }
func Restart() Event { return Event{Kind: EventRestart} }
func Stop() Event    { return Event{Kind: EventStop} }

// Wrote is a byte sent by the master with the given acknowledge
func Wrote(b byte, ack bool) Event { return Event{Kind: EventByte, Byte: b, Ack: ack} }

// Sent is a byte sent by the slave with the master's acknowledge
func Sent(b byte, ack bool) Event { return Event{Kind: EventByte, Byte: b, Read: true, Ack: ack} }

// Events returns a copy of the decoded events since the last Reset
func (b *Bus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// Bits returns the data bits seen on the wire, in wire order,
// acknowledge bits excluded.
func (b *Bus) Bits() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.bits...)
}

// Idle reports whether both lines are released
func (b *Bus) Idle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sda && b.scl && b.mode == modeIdle
}
