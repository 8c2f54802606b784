package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes one command line against the simulated bus
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	a := &app{logOut: io.Discard}
	defer a.close()

	var out bytes.Buffer
	root := newRootCmd(a, true)
	root.SetArgs(append([]string{"--sim"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestScan(t *testing.T) {
	out, err := run(t, "", "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out != "found 0x38\nfound 0x50\n" {
		t.Errorf("scan output = %q", out)
	}
}

func TestAHT30Command(t *testing.T) {
	out, err := run(t, "", "aht30")
	if err != nil {
		t.Fatalf("aht30: %v", err)
	}
	if !strings.Contains(out, "RH: 45.50%, t: 22.50C") {
		t.Errorf("aht30 output = %q", out)
	}
}

func TestAHT20Command(t *testing.T) {
	out, err := run(t, "", "aht20")
	if err != nil {
		t.Fatalf("aht20: %v", err)
	}
	if !strings.Contains(out, "RH: 45.4%, t: 22.4C") {
		t.Errorf("aht20 output = %q", out)
	}
}

func TestReadMissingDevice(t *testing.T) {
	if _, err := run(t, "", "read", "0x42", "0"); err == nil {
		t.Error("read from an absent device succeeded")
	}
}

func TestBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown profile", []string{"read", "eeprom", "0"}},
		{"bad register", []string{"read", "24c32", "zz"}},
		{"bad word", []string{"write", "24c32", "0", "0x1ff00000000"}},
		{"missing words", []string{"write", "24c32", "0"}},
		{"bad speed", []string{"--speed", "50", "scan"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := run(t, "", tc.args...); err == nil {
				t.Errorf("%v succeeded", tc.args)
			}
		})
	}
}

func TestREPLSharesBus(t *testing.T) {
	script := strings.Join([]string{
		"# EEPROM round trip",
		"write 24c32 0x0100 0xAB 0xCD",
		"read 24c32 0x0100 2",
		`read "24c32" 0x0102`,
		"read 0x42 0",
		"trace --clear",
		"quit",
		"scan",
	}, "\n")

	out, err := run(t, script, "repl")
	if err != nil {
		t.Fatalf("repl: %v", err)
	}

	for _, want := range []string{
		"wrote 2 words",
		"0x100: ab cd",
		"0x102: 00",
		"error: ",
		"NACK!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("repl output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "found 0x") {
		t.Error("commands after quit were run")
	}
}

func TestProfilesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	cfg := `
devices:
  eeprom:
    address: 0x50
    register_bits: 16
    register_endian: big
    speed: 400000
  bad:
    address: 0x20
    bit_order: sideways
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "--config", path, "profiles")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if !strings.Contains(out, "eeprom     addr=0x50/7 speed=400000 reg=16 data=8") {
		t.Errorf("profiles output = %q", out)
	}
	if !strings.Contains(out, "bad        invalid:") {
		t.Errorf("invalid profile not reported: %q", out)
	}

	out, err = run(t, "", "--config", path, "write", "eeprom", "0x10", "7")
	if err != nil || !strings.Contains(out, "wrote 1 words") {
		t.Errorf("write through file profile = %q, %v", out, err)
	}
}
