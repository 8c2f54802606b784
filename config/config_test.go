package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"softi2c/core"
)

const sampleYAML = `
port:
  device: /dev/ttyACM0
devices:
  eeprom:
    address: 0x50
    speed: 400000
    register_bits: 16
    register_endian: big
  sensor:
    address: 0x38
    dummy_write: false
  odd:
    address: 0x2A5
    address_size: 10
    bit_order: lsb
    master_endian: big
    data_endian: big
    data_bits: 24
`

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port.Device != "/dev/ttyACM0" || config.Port.Baud != 115200 || config.Port.ReadTimeoutMS != 100 {
		t.Errorf("port = %+v", config.Port)
	}
	if diff := cmp.Diff([]string{"eeprom", "odd", "sensor"}, config.DeviceNames()); diff != "" {
		t.Errorf("device names (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		want core.SoftI2CConfig
	}{
		{"eeprom", core.SoftI2CConfig{
			Speed: 400000, BitOrder: core.MSBFirst,
			MasterEndian: core.LittleEndian, RegisterEndian: core.BigEndian, DataEndian: core.LittleEndian,
			DummyWrite: core.DummyWriteOn, DeviceAddress: 0x50, DeviceAddressSize: core.AddressSize7,
			RegisterSize: 16, DataSize: 8,
		}},
		{"sensor", func() core.SoftI2CConfig {
			c := core.DefaultSoftI2CConfig(100000, 0x38)
			c.DummyWrite = core.DummyWriteOff
			return c
		}()},
		{"odd", core.SoftI2CConfig{
			Speed: 100000, BitOrder: core.LSBFirst,
			MasterEndian: core.BigEndian, RegisterEndian: core.LittleEndian, DataEndian: core.BigEndian,
			DummyWrite: core.DummyWriteOn, DeviceAddress: 0x2A5, DeviceAddressSize: core.AddressSize10,
			RegisterSize: 8, DataSize: 24,
		}},
	}

	for _, tt := range tests {
		dev, err := config.Device(tt.name)
		if err != nil {
			t.Fatalf("Device(%q): %v", tt.name, err)
		}
		got, err := dev.SoftI2CConfig()
		if err != nil {
			t.Fatalf("%s: SoftI2CConfig: %v", tt.name, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.name, diff)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("%s: Validate: %v", tt.name, err)
		}
	}
}

func TestBadEnumStrings(t *testing.T) {
	for _, dev := range []Device{
		{BitOrder: "middle"},
		{MasterEndian: "pdp"},
		{RegisterEndian: "mixed"},
		{DataEndian: "x"},
	} {
		if _, err := dev.SoftI2CConfig(); err == nil {
			t.Errorf("%+v accepted", dev)
		}
	}
}

func TestRangeErrorsComeFromCore(t *testing.T) {
	config, err := LoadConfig([]byte("devices:\n  slow:\n    address: 0x38\n    speed: 50\n"))
	if err != nil {
		t.Fatal(err)
	}
	dev, _ := config.Device("slow")
	cfg, err := dev.SoftI2CConfig()
	if err != nil {
		t.Fatalf("SoftI2CConfig: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, core.ErrBadSpeed) {
		t.Errorf("Validate = %v, want ErrBadSpeed", err)
	}
}

func TestUnknownDevice(t *testing.T) {
	if _, err := DefaultConfig().Device("nope"); err == nil {
		t.Error("unknown device accepted")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	config := DefaultConfig()
	for _, name := range config.DeviceNames() {
		dev, _ := config.Device(name)
		cfg, err := dev.SoftI2CConfig()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestMalformedYAML(t *testing.T) {
	if _, err := LoadConfig([]byte("devices: [")); err == nil {
		t.Error("malformed YAML accepted")
	}
}
