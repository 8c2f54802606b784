package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"tinygo.org/x/drivers/aht20"

	"softi2c/core"
	"softi2c/sensor/aht30"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Probe every 7-bit address and list the ones that answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine("0x00")
			if err != nil {
				return err
			}
			found := engine.Scan()
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "no devices")
				return nil
			}
			for _, addr := range found {
				fmt.Fprintf(out, "found 0x%02x\n", addr)
			}
			return nil
		},
	}
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read DEVICE REG [COUNT]",
		Short: "Read COUNT data words starting at register REG",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine(args[0])
			if err != nil {
				return err
			}
			reg, err := parseNumber("register", args[1], 32)
			if err != nil {
				return err
			}
			count := uint64(1)
			if len(args) == 3 {
				if count, err = parseNumber("count", args[2], 16); err != nil {
					return err
				}
			}

			words := make([]uint32, count)
			n, err := engine.ReadWords(uint32(reg), words)
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "0x%x: %s\n", reg, formatWords(words[:n], engine.Config().DataSize))
			}
			if err != nil {
				return fmt.Errorf("read stopped after %d words: %w", n, err)
			}
			return nil
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write DEVICE REG WORD...",
		Short: "Write data words starting at register REG",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine(args[0])
			if err != nil {
				return err
			}
			reg, err := parseNumber("register", args[1], 32)
			if err != nil {
				return err
			}
			words := make([]uint32, 0, len(args)-2)
			for _, s := range args[2:] {
				w, err := parseNumber("word", s, 32)
				if err != nil {
					return err
				}
				words = append(words, uint32(w))
			}

			n, err := engine.WriteWords(uint32(reg), words)
			if err != nil {
				return fmt.Errorf("write stopped after %d words: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d words\n", n)
			return nil
		},
	}
}

func newAHT30Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "aht30",
		Short: "Take one AHT30 measurement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var engine *core.SoftI2C
			var err error
			if _, ok := a.cfg.Devices["aht30"]; ok {
				engine, err = a.engine("aht30")
			} else {
				engine, err = a.engineFor(aht30.Config(100000))
			}
			if err != nil {
				return err
			}

			m, err := aht30.New(engine).Measure()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

// newAHT20Cmd reads the sensor through the generic AHT20 driver, with the
// engine standing in for a machine I2C bus
func newAHT20Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "aht20",
		Short: "Read an AHT2x/AHT30 through the AHT20 driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engineFor(core.DefaultSoftI2CConfig(100000, aht20.Address))
			if err != nil {
				return err
			}

			dev := aht20.New(engine)
			dev.Configure()
			if err := dev.Read(); err != nil {
				return fmt.Errorf("aht20: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "RH: %.1f%%, t: %.1fC\n",
				float64(dev.DeciRelHumidity())/10, float64(dev.DeciCelsius())/10)
			return nil
		},
	}
}

func newTraceCmd(a *app) *cobra.Command {
	var clearRing bool
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the recent bus events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events := core.BusEvents()
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "no bus events")
			}
			for _, e := range events {
				fmt.Fprintln(out, e)
			}
			if clearRing {
				core.ClearBusEvents()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearRing, "clear", false, "clear the event ring after printing")
	return cmd
}

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the configured device profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range a.cfg.DeviceNames() {
				cfg, err := a.profile(name)
				if err != nil {
					fmt.Fprintf(out, "%-10s invalid: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%-10s addr=0x%02x/%d speed=%d reg=%d data=%d\n",
					name, cfg.DeviceAddress, cfg.DeviceAddressSize, cfg.Speed, cfg.RegisterSize, cfg.DataSize)
			}
			return nil
		},
	}
}

// engineFor builds an engine for a configuration that is not a profile
func (a *app) engineFor(cfg core.SoftI2CConfig) (*core.SoftI2C, error) {
	if a.speed != 0 {
		cfg.Speed = a.speed
	}
	ad, err := a.connect()
	if err != nil {
		return nil, err
	}
	return ad.Engine(cfg)
}

func parseNumber(what, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}

// formatWords prints words as hex, zero padded to the data width
func formatWords(words []uint32, dataBits uint8) string {
	digits := (int(dataBits) + 3) / 4
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%0*x", digits, w)
	}
	return strings.Join(parts, " ")
}
