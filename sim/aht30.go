package sim

import "sync"

// AHT30 command bytes
const (
	aht30Init    = 0xBE
	aht30Status  = 0x71
	aht30Trigger = 0xAC
	aht30Reset   = 0xBA
)

// Status byte of a calibrated, idle sensor
const aht30Idle = 0x1C

// AHT30 emulates an AHT20/AHT30 humidity and temperature sensor.
//
// A trigger command (0xAC 0x33 0x00) latches the current measurement;
// the following reads return status, five data bytes and the CRC.
// A status command (0x71) makes the following read return the status byte.
type AHT30 struct {
	mu sync.Mutex

	rawHumidity uint32
	rawTemp     uint32

	cmd      []byte
	frame    []byte
	pos      int
	triggers int
	inits    int
}

// NewAHT30 returns a sensor reporting rh percent and celsius degrees.
func NewAHT30(rh, celsius float64) *AHT30 {
	a := &AHT30{}
	a.Set(rh, celsius)
	return a
}

// Set changes the measured values
func (a *AHT30) Set(rh, celsius float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rawHumidity = uint32(rh / 100 * (1 << 20))
	a.rawTemp = uint32((celsius + 50) / 200 * (1 << 20))
}

// Triggers returns how many measurements were started
func (a *AHT30) Triggers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.triggers
}

// Inits returns how many initialization commands were received
func (a *AHT30) Inits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inits
}

func (a *AHT30) Addressed(read bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if read {
		a.pos = 0
	} else {
		a.cmd = a.cmd[:0]
	}
}

func (a *AHT30) Write(b byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cmd = append(a.cmd, b)
	switch a.cmd[0] {
	case aht30Status:
		a.frame = []byte{aht30Idle}
	case aht30Reset:
		a.frame = nil
	case aht30Init:
		if len(a.cmd) == 3 {
			a.inits++
		}
	case aht30Trigger:
		if len(a.cmd) == 3 {
			a.triggers++
			a.frame = a.measurement()
		}
	}
	return len(a.cmd) <= 3
}

func (a *AHT30) Read() byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pos >= len(a.frame) {
		return aht30Idle
	}
	b := a.frame[a.pos]
	a.pos++
	return b
}

func (a *AHT30) Stop() {}

// measurement encodes the latched values as the sensor's 7-byte frame
func (a *AHT30) measurement() []byte {
	h, t := a.rawHumidity&0xFFFFF, a.rawTemp&0xFFFFF
	frame := []byte{
		aht30Idle,
		byte(h >> 12),
		byte(h >> 4),
		byte(h<<4) | byte(t>>16)&0x0F,
		byte(t >> 8),
		byte(t),
	}
	return append(frame, CRC8(frame))
}

// CRC8 is the AHT sensor checksum: polynomial 0x31, initial value 0xFF.
func CRC8(p []byte) byte {
	crc := byte(0xFF)
	for _, b := range p {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
