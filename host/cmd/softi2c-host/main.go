package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"softi2c/config"
	"softi2c/core"
	"softi2c/host/adapter"
	"softi2c/host/serial"
)

// app is the state shared by every command of one process, REPL included
type app struct {
	// Flags
	device     string
	baud       int
	configPath string
	speed      uint32
	simulate   bool
	verbose    bool

	logOut io.Writer
	logger *slog.Logger
	cfg    *config.Config

	adapter *adapter.Adapter
}

func main() {
	a := &app{logOut: os.Stderr}
	root := newRootCmd(a, true)

	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The top level tree owns the
// persistent flags; REPL lines run on a tree without them so the
// connection settings stay as given on the command line.
func newRootCmd(a *app, top bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "softi2c-host",
		Short:         "Bit-banged I2C master on a Bus Pirate or a simulated bus",
		SilenceUsage:  true,
		SilenceErrors: !top,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	if top {
		flags := root.PersistentFlags()
		flags.StringVar(&a.device, "device", "", "serial device of the Bus Pirate (default from config)")
		flags.IntVar(&a.baud, "baud", 0, "baud rate (default from config)")
		flags.StringVar(&a.configPath, "config", "", "YAML device profiles")
		flags.Uint32Var(&a.speed, "speed", 0, "override the bus speed of every profile (Hz)")
		flags.BoolVar(&a.simulate, "sim", false, "use a simulated bus with an AHT30 at 0x38 and an EEPROM at 0x50")
		flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging, including engine traces")
	}

	root.AddCommand(
		newScanCmd(a),
		newReadCmd(a),
		newWriteCmd(a),
		newAHT30Cmd(a),
		newAHT20Cmd(a),
		newTraceCmd(a),
		newProfilesCmd(a),
	)
	if top {
		root.AddCommand(newREPLCmd(a))
	}
	return root
}

// setup runs once per process: logging, configuration and the debug bridge
func (a *app) setup() error {
	if a.logger != nil {
		return nil
	}

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level}))

	core.SetDebugWriter(func(msg string) { a.logger.Debug(msg) })
	core.SetDebugEnabled(a.verbose)

	if a.configPath == "" {
		a.cfg = config.DefaultConfig()
		return nil
	}
	data, err := os.ReadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := config.LoadConfig(data)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("config loaded", "path", a.configPath, "devices", len(cfg.Devices))
	return nil
}

// connect opens the adapter on first use
func (a *app) connect() (*adapter.Adapter, error) {
	if a.adapter != nil {
		return a.adapter, nil
	}

	if a.simulate {
		a.adapter = adapter.Simulated(adapter.DemoBus(), a.logger)
		return a.adapter, nil
	}

	portCfg := serial.FromPortConfig(a.cfg.Port)
	if a.device != "" {
		portCfg.Device = a.device
	}
	if a.baud != 0 {
		portCfg.Baud = a.baud
	}
	ad, err := adapter.Connect(portCfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.adapter = ad
	return ad, nil
}

// profile resolves a device argument: a profile name from the
// configuration, or a bare address using the default settings.
func (a *app) profile(name string) (core.SoftI2CConfig, error) {
	var cfg core.SoftI2CConfig

	if dev, ok := a.cfg.Devices[name]; ok {
		c, err := dev.SoftI2CConfig()
		if err != nil {
			return cfg, err
		}
		cfg = c
	} else {
		addr, err := strconv.ParseUint(name, 0, 10)
		if err != nil {
			return cfg, fmt.Errorf("%q is neither a device profile nor an address", name)
		}
		cfg = core.DefaultSoftI2CConfig(100000, uint16(addr))
		if addr > 0x7F {
			cfg.DeviceAddressSize = core.AddressSize10
		}
	}

	if a.speed != 0 {
		cfg.Speed = a.speed
	}
	return cfg, nil
}

// engine builds an engine for a device argument
func (a *app) engine(name string) (*core.SoftI2C, error) {
	cfg, err := a.profile(name)
	if err != nil {
		return nil, err
	}
	ad, err := a.connect()
	if err != nil {
		return nil, err
	}
	return ad.Engine(cfg)
}

func (a *app) close() {
	if a.adapter == nil {
		return
	}
	if err := a.adapter.Close(); err != nil {
		a.logger.Warn("closing adapter", "err", err)
	}
	a.adapter = nil
}
