package core

// PinState is the request passed to a line operation.
// PinLow and PinHigh drive the line, any other value only samples it.
type PinState uint8

const (
	PinLow    PinState = 0
	PinHigh   PinState = 1
	PinSample PinState = 2
)

// I2CLines is the physical line driver a software I2C engine runs on.
// Implementations are supplied by the platform (GPIO, USB bridge, simulator).
//
// Each method applies the request to its line and returns the sampled level,
// 0 or 1. Any other return value signals a fault reading the line.
// "High" on an open-drain bus means released: the pull-up brings the line up
// unless another device holds it low.
type I2CLines interface {
	// SDA drives or samples the data line
	SDA(state PinState) uint8

	// SCL drives or samples the clock line
	SCL(state PinState) uint8
}

// DelayFunc blocks for at least the given number of time units.
type DelayFunc func(x uint32)

// Delays holds the optional delay providers, one per granularity.
// At least one must be non-nil.
type Delays struct {
	NS DelayFunc // nanoseconds
	US DelayFunc // microseconds
	MS DelayFunc // milliseconds
}

// empty reports whether no provider is set
func (d Delays) empty() bool {
	return d.NS == nil && d.US == nil && d.MS == nil
}
