//go:build rp2040

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/aht20"

	"softi2c/core"
	"softi2c/sensor/aht30"
)

// Software bus 0 pins, the I2C0 default pads
const (
	pinSDA core.GPIOPin = 4
	pinSCL core.GPIOPin = 5

	busSpeed = 100000

	measureInterval = 2 * time.Second
)

func main() {
	// Disable the watchdog left running by a previous image
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitDebug()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)

	core.SetGPIODriver(NewRPGPIODriver())
	delays := TimerDelays()

	// Register the software bus behind the I2C HAL
	sw := core.NewSoftwareI2CDriver(core.MustGPIO(), delays)
	if err := sw.AddBus(0, pinSDA, pinSCL); err != nil {
		halt("i2c bus: " + err.Error())
	}
	if err := sw.ConfigureBus(0, busSpeed); err != nil {
		halt("i2c configure: " + err.Error())
	}
	core.SetI2CDriver(sw)

	bus, err := core.MustI2C().GetMachineBus(0)
	if err != nil {
		halt("i2c bus: " + err.Error())
	}

	// Dedicated engine for the AHT30 profile on the same pins
	lines, err := core.NewGPIOLines(core.MustGPIO(), pinSDA, pinSCL)
	if err != nil {
		halt("i2c lines: " + err.Error())
	}
	engine, err := core.NewSoftI2C(lines, aht30.Config(busSpeed), delays)
	if err != nil {
		halt("aht30 engine: status " + itoa(core.StatusOf(err)))
	}
	t := engine.Timing()
	DebugPrintln("softi2c: SDA=GP" + itoa(int(pinSDA)) + " SCL=GP" + itoa(int(pinSCL)) +
		" period " + itoa(int(t.X)) + t.Unit.String())

	for _, addr := range engine.Scan() {
		DebugPrintln("found " + itoaHex(addr))
	}

	sensor := aht30.New(engine)
	generic := aht20.New(bus)
	generic.Configure()

	for {
		m, err := sensor.Measure()
		if err != nil {
			DebugPrintln("aht30: " + err.Error())
			core.DumpBusEvents()
		} else {
			DebugPrintln("aht30: " + m.String())
		}

		// Same sensor through the generic driver on the HAL bus
		if err := generic.Read(); err != nil {
			DebugPrintln("aht20: " + err.Error())
		} else {
			DebugPrintln("aht20: RH x10 " + itoa(int(generic.DeciRelHumidity())) +
				", t x10 " + itoa(int(generic.DeciCelsius())))
		}

		time.Sleep(measureInterval)
	}
}

// halt reports a fatal setup error and parks the core
func halt(msg string) {
	for {
		DebugPrintln(msg)
		time.Sleep(time.Second)
	}
}
