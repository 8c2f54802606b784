package core

import "tinygo.org/x/drivers"

// SoftI2C can stand in for machine.I2C under TinyGo drivers
var _ drivers.I2C = (*SoftI2C)(nil)

// Scan range of 7-bit addresses, reserved addresses excluded
const (
	scanFirst = 0x08
	scanLast  = 0x77
)

// Tx performs a combined transfer with the device at addr, ignoring the
// configured device address and register framing:
//
//	S [addr W] A [w...] A Sr [addr R] A [r...] NA P
//
// The write phase is skipped when w is empty and r is not; with both
// empty only the address is sent. Addresses above 0x7F, or any address
// when the engine is configured for 10-bit devices, use 10-bit framing.
// Bit order follows the configuration.
func (s *SoftI2C) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotInitialized
	}

	size := s.cfg.DeviceAddressSize
	if addr > AddressSize7.mask() {
		size = AddressSize10
	}
	if addr > size.mask() {
		return ErrAddressOutOfRange
	}

	s.target = addr
	s.fault = false
	s.start()
	err := s.tx(addr, size, w, r)
	s.stop()

	if err != nil {
		s.finish(0, len(w)+len(r), err)
	} else {
		s.finish(len(w)+len(r), len(w)+len(r), nil)
	}
	return err
}

func (s *SoftI2C) tx(addr uint16, size AddressSize, w, r []byte) error {
	var buf [2]byte

	if len(w) > 0 || len(r) == 0 {
		for _, b := range appendAddressFrame(buf[:0], addr, size, dirWrite) {
			if !s.writeByte(b) {
				return s.nackErr(b, FrameDevice)
			}
		}
		for _, b := range w {
			if !s.writeByte(b) {
				return s.nackErr(b, FrameData)
			}
		}
		if len(r) == 0 {
			return nil
		}
		s.restart()
	}

	for _, b := range appendAddressFrame(buf[:0], addr, size, dirRead) {
		if !s.writeByte(b) {
			return s.nackErr(b, FrameDevice)
		}
	}
	for i := range r {
		r[i] = s.readByte(i < len(r)-1)
	}
	if s.fault {
		return ErrLineFault
	}
	return nil
}

// ReadRegister reads len(buf) bytes from an 8-bit register of the device at addr.
func (s *SoftI2C) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return s.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister writes buf to an 8-bit register of the device at addr.
func (s *SoftI2C) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, r)
	w = append(w, buf...)
	return s.Tx(uint16(addr), w, nil)
}

// Probe reports whether a device acknowledges addr.
func (s *SoftI2C) Probe(addr uint16) bool {
	return s.Tx(addr, nil, nil) == nil
}

// Scan probes every non-reserved 7-bit address and returns those that answered.
func (s *SoftI2C) Scan() []uint16 {
	var found []uint16
	for addr := uint16(scanFirst); addr <= scanLast; addr++ {
		if s.Probe(addr) {
			found = append(found, addr)
		}
	}
	return found
}
