//go:build rp2040

package main

import (
	"runtime/volatile"
	"time"
	"unsafe"

	"softi2c/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareTime returns the low 32 bits of the 1 MHz microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit RP2040 hardware timer
func GetHardwareUptime() uint64 {
	// High first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// waitUS busy-waits on the hardware timer. Wrap-safe for waits below
// 2^31 us.
func waitUS(us uint32) {
	start := GetHardwareTime()
	for GetHardwareTime()-start < us {
	}
}

// TimerDelays returns bit phase delays on the hardware timer.
// The counter ticks once per microsecond, so nanosecond waits round up
// to whole microseconds.
func TimerDelays() core.Delays {
	return core.Delays{
		NS: func(x uint32) { waitUS((x + 999) / 1000) },
		US: waitUS,
		MS: func(x uint32) { time.Sleep(time.Duration(x) * time.Millisecond) },
	}
}
