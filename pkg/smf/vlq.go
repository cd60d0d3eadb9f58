package smf

// ReadVarint decodes a variable-length quantity from buf starting at offset
// and returns the value together with the offset of the first byte after it.
// Decoding never reads past the end of buf: an empty or truncated quantity
// yields whatever bits were available (zero at the very end of the buffer).
func ReadVarint(buf []byte, offset int) (uint32, int) {
	var val uint32

	for offset < len(buf) {
		b := buf[offset]
		offset++
		val = val<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}

	return val, offset
}

// AppendVarint appends the variable-length encoding of val to dst.
// Values up to 0x0FFFFFFF encode into at most four bytes.
func AppendVarint(dst []byte, val uint32) []byte {
	var buf [5]byte
	i := len(buf) - 1
	buf[i] = byte(val & 0x7F)

	for val >>= 7; val > 0; val >>= 7 {
		i--
		buf[i] = byte(val&0x7F) | 0x80
	}

	return append(dst, buf[i:]...)
}
