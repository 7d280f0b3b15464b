package wire

import "math"

// AppendVarFloat appends the Kiwi var_float encoding of v to buf.
//
// Zero (either sign) collapses to the single byte 0x00. Any other value is
// reinterpreted as its IEEE-754 bit pattern, rotated left by one bit so the
// sign bit becomes the new LSB, then written as a uvarint of those rotated
// bits. Routing through the self-delimiting uvarint (rather than a truly
// fixed 4-byte payload) is what keeps the zero marker unambiguous: rotation
// is a bijection on the 32-bit space, so a fixed byte position sniffed for
// "is this the zero marker" would collide with plenty of genuinely non-zero
// values (e.g. 2.0's bit pattern rotates to 0x80000000, whose low byte is
// 0x00). The uvarint's continuation bit rules that out.
func AppendVarFloat(buf []byte, v float32) []byte {
	if v == 0 {
		return append(buf, 0x00)
	}
	bits := math.Float32bits(v)
	rotated := (bits << 1) | (bits >> 31)
	return AppendUvarint(buf, rotated)
}

// DecodeVarFloat decodes a Kiwi var_float from data, returning the value
// and the number of bytes consumed.
func DecodeVarFloat(data []byte) (float32, int, error) {
	rotated, n, err := DecodeUvarint(data)
	if err != nil {
		return 0, n, err
	}
	if rotated == 0 {
		return 0, n, nil
	}
	bits := (rotated >> 1) | (rotated << 31)
	return math.Float32frombits(bits), n, nil
}
