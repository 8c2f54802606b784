package core

// Frame layout
//
//	7-bit:   S [addr6..0 R/W] A ...
//	10-bit:  S [1 1 1 1 0 a9 a8 R/W] A [a7..0] A ...
//
// Register address bytes follow the write-direction address frame,
// least or most significant byte first per RegisterEndian.

// appendAddressFrame appends the device address frame for dir to dst.
func appendAddressFrame(dst []byte, addr uint16, size AddressSize, dir byte) []byte {
	if size == AddressSize10 {
		return append(dst,
			0xF0|byte((addr>>8)&0x3)<<1|dir&0x1,
			byte(addr&0xFF))
	}
	return append(dst, byte(addr<<1)|dir&0x1)
}

// appendRegisterFrame appends the n low bytes of reg to dst in wire order.
func appendRegisterFrame(dst []byte, reg uint32, n int, endian Endian) []byte {
	for i := 0; i < n; i++ {
		shift := i
		if endian == BigEndian {
			shift = n - 1 - i
		}
		dst = append(dst, byte(reg>>(8*shift)))
	}
	return dst
}

// slotIndex maps the i-th wire byte of a data word to its offset within
// the word's buffer slot.
//
// The wire byte's significance comes from the data endianness, its slot
// position from the master endianness. A word narrower than its slot is
// right-aligned in a big-endian slot: a 3-byte word uses bytes 1..3 of
// its 4-byte slot, or bytes 0..2 when the master is little endian.
func slotIndex(i, width, stride int, master, data Endian) int {
	sig := i
	if data == BigEndian {
		sig = width - 1 - i
	}
	if master == BigEndian {
		return stride - 1 - sig
	}
	return sig
}
