package core

import "time"

// SpinDelays returns delay providers that busy-wait on the monotonic clock.
// Bit phases at 100 kHz are a few microseconds, well below scheduler
// resolution, so spinning keeps the bus timing close to the target speed.
func SpinDelays() Delays {
	return Delays{
		NS: func(x uint32) { spin(time.Duration(x)) },
		US: func(x uint32) { spin(time.Duration(x) * time.Microsecond) },
		MS: func(x uint32) { time.Sleep(time.Duration(x) * time.Millisecond) },
	}
}

// SleepDelays returns delay providers backed by time.Sleep.
// Suitable for slow links (USB bridges) where every line operation
// already costs far more than a bit phase.
func SleepDelays() Delays {
	return Delays{
		US: func(x uint32) { time.Sleep(time.Duration(x) * time.Microsecond) },
		MS: func(x uint32) { time.Sleep(time.Duration(x) * time.Millisecond) },
	}
}

// spin busy-waits for d
func spin(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
