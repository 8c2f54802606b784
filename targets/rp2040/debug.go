//go:build rp2040

package main

import (
	"machine"
)

var debugSerial machine.Serialer

// InitDebug sets up the USB CDC serial port for debug output.
// TinyGo sets up USB CDC-ACM on RP2040; machine.Serial is that port.
func InitDebug() {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}
	debugSerial = machine.Serial
}

// DebugPrintln writes a line to the debug port
func DebugPrintln(s string) {
	if debugSerial == nil {
		return
	}
	debugSerial.Write([]byte(s))
	debugSerial.Write([]byte("\r\n"))
}

// itoa converts int to string without importing strconv
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

// itoaHex formats a byte-sized value as 0xNN
func itoaHex(v uint16) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{hexDigits[v>>4&0xf], hexDigits[v&0xf]})
}
