package core

import "encoding/binary"

// Write sends count data words to register reg, starting at word offset
// of data. Words are laid out in data with the master endianness, one
// slot of 1, 2 or 4 bytes per word.
//
//	S [dev W] A [reg...] A [word...] A P
//
// Returns the number of words the device acknowledged in full. Any NACK
// aborts the transfer; a STOP is always sent. A nil data only addresses
// the register.
func (s *SoftI2C) Write(reg uint32, data []byte, offset, count int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return 0, ErrNotInitialized
	}
	return s.write(reg, data, offset, count)
}

// Read fetches count data words from register reg into data, starting at
// word offset. With dummy write enabled the register is selected first:
//
//	S [dev W] A [reg...] A Sr [dev R] A [word...] NA P
//
// otherwise the read continues from the device's current register.
// The last byte of the last word is answered with NACK.
func (s *SoftI2C) Read(reg uint32, data []byte, offset, count int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return 0, ErrNotInitialized
	}
	return s.read(reg, data, offset, count)
}

// WriteWords packs words in the master endianness and writes them to reg.
func (s *SoftI2C) WriteWords(reg uint32, words []uint32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return 0, ErrNotInitialized
	}
	buf := make([]byte, len(words)*s.cfg.stride())
	for i, w := range words {
		s.putWord(buf[i*s.cfg.stride():], w)
	}
	return s.write(reg, buf, 0, len(words))
}

// ReadWords reads len(words) words from reg and unpacks them.
// Words past the returned count are left untouched.
func (s *SoftI2C) ReadWords(reg uint32, words []uint32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return 0, ErrNotInitialized
	}
	buf := make([]byte, len(words)*s.cfg.stride())
	n, err := s.read(reg, buf, 0, len(words))
	for i := 0; i < n; i++ {
		words[i] = s.word(buf[i*s.cfg.stride():])
	}
	return n, err
}

// putWord stores w in one slot using the master endianness
func (s *SoftI2C) putWord(slot []byte, w uint32) {
	order := s.byteOrder()
	switch s.cfg.stride() {
	case 1:
		slot[0] = byte(w)
	case 2:
		order.PutUint16(slot, uint16(w))
	default:
		order.PutUint32(slot, w)
	}
}

// word loads one slot using the master endianness
func (s *SoftI2C) word(slot []byte) uint32 {
	order := s.byteOrder()
	switch s.cfg.stride() {
	case 1:
		return uint32(slot[0])
	case 2:
		return uint32(order.Uint16(slot))
	default:
		return order.Uint32(slot)
	}
}

func (s *SoftI2C) byteOrder() binary.ByteOrder {
	if s.cfg.MasterEndian == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// checkBuffer rejects ranges that do not fit in data
func (s *SoftI2C) checkBuffer(data []byte, offset, count int) error {
	if data == nil {
		return nil
	}
	if offset < 0 || count < 0 || (offset+count)*s.cfg.stride() > len(data) {
		return ErrShortBuffer
	}
	return nil
}

// sendDevice sends the device address frame
func (s *SoftI2C) sendDevice(dir byte) error {
	var buf [2]byte
	for _, b := range appendAddressFrame(buf[:0], s.cfg.DeviceAddress, s.cfg.DeviceAddressSize, dir) {
		if !s.writeByte(b) {
			return s.nackErr(b, FrameDevice)
		}
	}
	return nil
}

// sendRegister sends the register address frame
func (s *SoftI2C) sendRegister(reg uint32) error {
	var buf [4]byte
	for _, b := range appendRegisterFrame(buf[:0], reg, s.cfg.registerBytes(), s.cfg.RegisterEndian) {
		if !s.writeByte(b) {
			return s.nackErr(b, FrameRegister)
		}
	}
	return nil
}

func (s *SoftI2C) write(reg uint32, data []byte, offset, count int) (int, error) {
	if err := s.checkBuffer(data, offset, count); err != nil {
		return 0, err
	}

	s.target = s.cfg.DeviceAddress
	s.fault = false
	width, stride := s.cfg.dataBytes(), s.cfg.stride()
	done := 0

	s.start()
	err := s.sendDevice(dirWrite)
	if err == nil {
		err = s.sendRegister(reg)
	}
	if err == nil && data != nil {
		data = data[offset*stride:]
	words:
		for ; done < count; done++ {
			slot := data[done*stride : (done+1)*stride]
			for i := 0; i < width; i++ {
				b := slot[slotIndex(i, width, stride, s.cfg.MasterEndian, s.cfg.DataEndian)]
				if !s.writeByte(b) {
					err = s.nackErr(b, FrameData)
					break words
				}
			}
		}
	}
	s.stop()

	s.finish(done, count, err)
	return done, err
}

func (s *SoftI2C) read(reg uint32, data []byte, offset, count int) (int, error) {
	if err := s.checkBuffer(data, offset, count); err != nil {
		return 0, err
	}

	s.target = s.cfg.DeviceAddress
	s.fault = false
	width, stride := s.cfg.dataBytes(), s.cfg.stride()
	done := 0

	s.start()
	var err error
	if s.cfg.DummyWrite == DummyWriteOn {
		err = s.sendDevice(dirWrite)
		if err == nil {
			err = s.sendRegister(reg)
		}
		if err == nil {
			s.restart()
		}
	}
	if err == nil {
		err = s.sendDevice(dirRead)
	}
	if err == nil && data != nil {
		data = data[offset*stride:]
		for ; done < count; done++ {
			slot := data[done*stride : (done+1)*stride]
			for i := 0; i < width; i++ {
				last := done == count-1 && i == width-1
				slot[slotIndex(i, width, stride, s.cfg.MasterEndian, s.cfg.DataEndian)] = s.readByte(!last)
			}
		}
		if s.fault {
			RecordBusEvent(EvtFault, s.target, 0, FrameData)
			err = ErrLineFault
		}
	}
	s.stop()

	s.finish(done, count, err)
	return done, err
}
