package core

// Level of SDA during the acknowledge clock
const (
	ackLevel  = 0
	nackLevel = 1
)

// start generates a START: SDA falls while SCL is high.
// Ends with both lines low.
func (s *SoftI2C) start() {
	RecordBusEvent(EvtStart, s.target, 0, 0)
	s.startCondition()
}

// restart generates a repeated START between the write and read
// phases of a combined transfer.
func (s *SoftI2C) restart() {
	RecordBusEvent(EvtRestart, s.target, 0, 0)
	s.startCondition()
}

func (s *SoftI2C) startCondition() {
	s.lines.SDA(PinHigh)
	s.lines.SCL(PinHigh)
	s.lines.SDA(PinLow)
	s.lines.SCL(PinLow)
}

// stop generates a STOP: SDA rises while SCL is high.
// Leaves the bus idle with both lines released.
func (s *SoftI2C) stop() {
	s.lines.SCL(PinLow)
	s.lines.SDA(PinLow)
	s.lines.SCL(PinHigh)
	s.lines.SDA(PinHigh)
	RecordBusEvent(EvtStop, s.target, 0, 0)
}

// bitAt returns bit i (0 = first on the wire) of b
func (s *SoftI2C) bitAt(b byte, i int) byte {
	if s.cfg.BitOrder == LSBFirst {
		return (b >> i) & 0x1
	}
	return (b >> (7 - i)) & 0x1
}

// writeByte clocks out b and samples the receiver's acknowledge.
// Expects SCL low, ends with SCL low.
// Returns true on ACK.
func (s *SoftI2C) writeByte(b byte) bool {
	for i := 0; i < 8; i++ {
		s.timing.writePhase()
		s.lines.SDA(PinState(s.bitAt(b, i)))
		s.timing.writePhase()
		s.lines.SCL(PinHigh)
		s.timing.writePhase()
		s.lines.SCL(PinLow)
	}

	// Release SDA so the receiver can pull it low
	s.lines.SDA(PinHigh)
	s.timing.writePhase()
	s.lines.SCL(PinHigh)
	s.timing.writePhase()
	level := s.lines.SDA(PinSample)
	s.lines.SCL(PinLow)
	s.timing.writePhase()

	if level > 1 {
		s.fault = true
	}
	return level == ackLevel
}

// readByte clocks in one byte, then answers with ACK when ack is true
// or NACK to tell the transmitter to stop driving SDA.
// Expects SCL low, ends with SCL low.
func (s *SoftI2C) readByte(ack bool) byte {
	var b byte

	s.lines.SDA(PinHigh)
	for i := 0; i < 8; i++ {
		s.lines.SCL(PinHigh)
		s.timing.readPhase()

		level := s.lines.SDA(PinSample)
		if level > 1 {
			s.fault = true
		}
		bit := byte(0)
		if level == 1 {
			bit = 1
		}
		if s.cfg.BitOrder == LSBFirst {
			b = b>>1 | bit<<7
		} else {
			b = b<<1 | bit
		}

		s.lines.SCL(PinLow)
		s.timing.readPhase()
	}

	if ack {
		s.lines.SDA(PinState(ackLevel))
	} else {
		s.lines.SDA(PinState(nackLevel))
	}
	s.timing.writePhase()
	s.lines.SCL(PinHigh)
	s.timing.writePhase()
	s.lines.SCL(PinLow)
	s.timing.writePhase()

	return b
}
