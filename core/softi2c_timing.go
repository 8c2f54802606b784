package core

// TimeUnit is the granularity of the selected delay provider.
type TimeUnit uint8

const (
	Nanosecond TimeUnit = iota
	Microsecond
	Millisecond
)

func (u TimeUnit) String() string {
	switch u {
	case Nanosecond:
		return "ns"
	case Microsecond:
		return "us"
	case Millisecond:
		return "ms"
	}
	return "?"
}

// Timing is the resolved bit timing of an engine.
// X is one clock period expressed in Unit. Writes wait X/3 per phase
// (setup, clock high, clock low), reads wait X/2.
type Timing struct {
	X     uint32
	Unit  TimeUnit
	delay DelayFunc
}

// writePhase waits one write phase
func (t *Timing) writePhase() {
	t.delay(t.X / 3)
}

// readPhase waits one read phase
func (t *Timing) readPhase() {
	t.delay(t.X / 2)
}

// ResolveTiming converts a bus speed into a period and picks the delay
// provider to express it with.
//
// The preferred unit follows the magnitude of the period:
// below 1 us nanoseconds, below 1 ms microseconds, milliseconds above.
// When the preferred provider is missing the first available one in
// ns, us, ms order is used instead and the period is rescaled to it.
func ResolveTiming(speed uint32, delays Delays) (Timing, error) {
	if speed == 0 {
		return Timing{}, initErr(StatusBadSpeed, ErrBadSpeed, "speed=0")
	}
	if delays.empty() {
		return Timing{}, initErr(StatusNoDelay, ErrNoDelay, "")
	}

	x := uint32(1000000000 / uint64(speed))

	switch {
	case x < 1000:
		if delays.NS != nil {
			return Timing{X: x, Unit: Nanosecond, delay: delays.NS}, nil
		}
	case x < 1000000:
		if delays.US != nil {
			return Timing{X: x / 1000, Unit: Microsecond, delay: delays.US}, nil
		}
	default:
		if delays.MS != nil {
			return Timing{X: x / 1000000, Unit: Millisecond, delay: delays.MS}, nil
		}
	}

	// Preferred granularity unavailable
	switch {
	case delays.NS != nil:
		return Timing{X: x, Unit: Nanosecond, delay: delays.NS}, nil
	case delays.US != nil:
		return Timing{X: x / 1000, Unit: Microsecond, delay: delays.US}, nil
	default:
		return Timing{X: x / 1000000, Unit: Millisecond, delay: delays.MS}, nil
	}
}
