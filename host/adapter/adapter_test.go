package adapter

import (
	"io"
	"testing"

	"golang.org/x/exp/slog"

	"softi2c/core"
	"softi2c/host/serial"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulatedAdapter(t *testing.T) {
	a := Simulated(DemoBus(), quietLogger())
	defer a.Close()

	engine, err := a.Engine(core.DefaultSoftI2CConfig(100000, 0))
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	found := engine.Scan()
	if len(found) != 2 || found[0] != 0x38 || found[1] != 0x50 {
		t.Errorf("Scan = %x, want [38 50]", found)
	}
	if a.Bus() == nil {
		t.Error("simulated adapter has no bus")
	}
}

func TestEngineRejectsBadProfile(t *testing.T) {
	a := Simulated(DemoBus(), quietLogger())

	if _, err := a.Engine(core.DefaultSoftI2CConfig(50, 0x38)); err == nil {
		t.Error("Engine accepted speed 50")
	}

	a.Close()
	if _, err := a.Engine(core.DefaultSoftI2CConfig(100000, 0x38)); err == nil {
		t.Error("Engine on closed adapter succeeded")
	}
}

func TestConnectMissingDevice(t *testing.T) {
	if _, err := Connect(serial.DefaultConfig("/nonexistent/tty"), quietLogger()); err == nil {
		t.Error("Connect to a missing device succeeded")
	}
}
