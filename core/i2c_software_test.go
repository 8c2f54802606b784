package core_test

import (
	"testing"

	"tinygo.org/x/drivers/aht20"

	"softi2c/core"
	"softi2c/sim"
)

func newSoftwareDriver(t *testing.T, bus *sim.Bus) *core.SoftwareI2CDriver {
	t.Helper()
	d := core.NewSoftwareI2CDriver(bus.GPIO(), nopDelays())
	if err := d.AddBus(0, sim.SDAPin, sim.SCLPin); err != nil {
		t.Fatalf("AddBus: %v", err)
	}
	if err := d.ConfigureBus(0, 100000); err != nil {
		t.Fatalf("ConfigureBus: %v", err)
	}
	return d
}

func TestSoftwareI2CDriverWriteRead(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	bus.Attach(0x50, sim.NewMemory(16, 1, core.LittleEndian))
	d := newSoftwareDriver(t, bus)

	core.SetI2CDriver(d)
	defer core.SetI2CDriver(nil)

	drv := core.MustI2C()
	if err := drv.Write(0, 0x50, []byte{0x02, 0xAA, 0xBB}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := drv.Read(0, 0x50, []byte{0x02}, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 || got[0] != 0xAA || got[1] != 0xBB {
		t.Errorf("Read = % x, want aa bb", got)
	}
}

func TestSoftwareI2CDriverErrors(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	d := core.NewSoftwareI2CDriver(bus.GPIO(), nopDelays())

	if err := d.AddBus(0, sim.SDAPin, sim.SDAPin); err == nil {
		t.Error("AddBus accepted SDA == SCL")
	}
	if err := d.ConfigureBus(1, 100000); err == nil {
		t.Error("ConfigureBus accepted a bus without pins")
	}
	if err := d.Write(1, 0x50, []byte{0}); err == nil {
		t.Error("Write on unconfigured bus succeeded")
	}

	if err := d.AddBus(0, sim.SDAPin, sim.SCLPin); err != nil {
		t.Fatalf("AddBus: %v", err)
	}
	if err := d.ConfigureBus(0, 1000000); err == nil {
		t.Error("ConfigureBus accepted 1 MHz")
	}
	if err := d.ConfigureBus(0, 100000); err != nil {
		t.Fatalf("ConfigureBus: %v", err)
	}
	if _, err := d.Read(0, 0x50, nil, 1); err == nil {
		t.Error("Read from absent device succeeded")
	}
}

func TestAHT20DriverOnSoftwareBus(t *testing.T) {
	bus := sim.NewBus(core.MSBFirst)
	sensor := sim.NewAHT30(50, 25)
	bus.Attach(aht20.Address, sensor)
	d := newSoftwareDriver(t, bus)

	i2c, err := d.GetMachineBus(0)
	if err != nil {
		t.Fatalf("GetMachineBus: %v", err)
	}

	dev := aht20.New(i2c)
	dev.Configure()
	if err := dev.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := dev.DeciRelHumidity(); got != 500 {
		t.Errorf("DeciRelHumidity = %d, want 500", got)
	}
	if got := dev.DeciCelsius(); got != 250 {
		t.Errorf("DeciCelsius = %d, want 250", got)
	}
	if sensor.Triggers() != 1 {
		t.Errorf("sensor triggered %d times, want 1", sensor.Triggers())
	}
}
