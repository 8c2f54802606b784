package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"softi2c/core"
)

// Config is the host tool configuration file
type Config struct {
	Port    PortConfig        `yaml:"port"`
	Devices map[string]Device `yaml:"devices"`
}

// PortConfig selects the serial adapter driving the bus lines
type PortConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`
}

// Device is one I2C slave profile
type Device struct {
	Address        uint16 `yaml:"address"`
	AddressSize    uint8  `yaml:"address_size"` // 7 or 10
	Speed          uint32 `yaml:"speed"`        // Hz
	BitOrder       string `yaml:"bit_order"`    // msb or lsb
	MasterEndian   string `yaml:"master_endian"`
	RegisterEndian string `yaml:"register_endian"`
	DataEndian     string `yaml:"data_endian"`
	DummyWrite     *bool  `yaml:"dummy_write"`
	RegisterBits   uint8  `yaml:"register_bits"`
	DataBits       uint8  `yaml:"data_bits"`
}

// LoadConfig parses a YAML configuration and applies defaults
func LoadConfig(data []byte) (*Config, error) {
	var config Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills in missing values with the engine's convenience defaults
func applyDefaults(config *Config) {
	if config.Port.Device == "" {
		config.Port.Device = "/dev/ttyUSB0"
	}
	if config.Port.Baud == 0 {
		config.Port.Baud = 115200
	}
	if config.Port.ReadTimeoutMS == 0 {
		config.Port.ReadTimeoutMS = 100
	}

	for name, dev := range config.Devices {
		if dev.AddressSize == 0 {
			dev.AddressSize = uint8(core.AddressSize7)
		}
		if dev.Speed == 0 {
			dev.Speed = 100000
		}
		if dev.BitOrder == "" {
			dev.BitOrder = core.MSBFirst.String()
		}
		if dev.MasterEndian == "" {
			dev.MasterEndian = core.LittleEndian.String()
		}
		if dev.RegisterEndian == "" {
			dev.RegisterEndian = core.LittleEndian.String()
		}
		if dev.DataEndian == "" {
			dev.DataEndian = core.LittleEndian.String()
		}
		if dev.DummyWrite == nil {
			on := true
			dev.DummyWrite = &on
		}
		if dev.RegisterBits == 0 {
			dev.RegisterBits = 8
		}
		if dev.DataBits == 0 {
			dev.DataBits = 8
		}
		config.Devices[name] = dev
	}
}

// Device returns the named profile
func (c *Config) Device(name string) (Device, error) {
	dev, ok := c.Devices[name]
	if !ok {
		return Device{}, fmt.Errorf("config: unknown device %q (have %s)", name, strings.Join(c.DeviceNames(), ", "))
	}
	return dev, nil
}

// DeviceNames lists the configured profiles in sorted order
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SoftI2CConfig converts the profile to an engine configuration.
// Range checks are left to core.SoftI2CConfig.Validate.
func (d Device) SoftI2CConfig() (core.SoftI2CConfig, error) {
	order, err := parseBitOrder(d.BitOrder)
	if err != nil {
		return core.SoftI2CConfig{}, err
	}
	master, err := parseEndian("master_endian", d.MasterEndian)
	if err != nil {
		return core.SoftI2CConfig{}, err
	}
	register, err := parseEndian("register_endian", d.RegisterEndian)
	if err != nil {
		return core.SoftI2CConfig{}, err
	}
	data, err := parseEndian("data_endian", d.DataEndian)
	if err != nil {
		return core.SoftI2CConfig{}, err
	}

	dummy := core.DummyWriteOn
	if d.DummyWrite != nil && !*d.DummyWrite {
		dummy = core.DummyWriteOff
	}

	return core.SoftI2CConfig{
		Speed:             d.Speed,
		BitOrder:          order,
		MasterEndian:      master,
		RegisterEndian:    register,
		DataEndian:        data,
		DummyWrite:        dummy,
		DeviceAddress:     d.Address,
		DeviceAddressSize: core.AddressSize(d.AddressSize),
		RegisterSize:      d.RegisterBits,
		DataSize:          d.DataBits,
	}, nil
}

func parseBitOrder(s string) (core.BitOrder, error) {
	switch strings.ToLower(s) {
	case "msb", "":
		return core.MSBFirst, nil
	case "lsb":
		return core.LSBFirst, nil
	}
	return 0, fmt.Errorf("config: bit_order %q is not msb or lsb", s)
}

func parseEndian(field, s string) (core.Endian, error) {
	switch strings.ToLower(s) {
	case "little", "":
		return core.LittleEndian, nil
	case "big":
		return core.BigEndian, nil
	}
	return 0, fmt.Errorf("config: %s %q is not little or big", field, s)
}

// DefaultConfig returns a configuration with profiles for common parts
func DefaultConfig() *Config {
	off := false
	config := &Config{
		Devices: map[string]Device{
			"aht30": {
				Address:    0x38,
				DummyWrite: &off,
			},
			"24c32": {
				Address:        0x50,
				Speed:          400000,
				RegisterBits:   16,
				RegisterEndian: "big", // word address goes high byte first
			},
		},
	}
	applyDefaults(config)
	return config
}
