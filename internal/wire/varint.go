// Package wire provides the low-level encoding primitives for the Kiwi wire
// format: variable-length integers, zigzag signed integers, and the
// rotate-then-varint float encoding.
package wire

import "errors"

// MaxVarintLen32 is the maximum number of bytes write_var_uint can emit for
// a uint32. 5 septets of 7 bits cover all 32 bits (5*7=35>=32), so the
// standard continuation-bit loop never needs a 6th byte.
const MaxVarintLen32 = 5

// MaxVarintLen64 is the maximum number of bytes write_var_uint64 can emit
// for a uint64. 8 standard septets cover 56 bits; the remaining 8 bits
// always fit in one final unconditional byte, so a 10th byte is never
// needed. See AppendUvarint64 for the exact construction.
const MaxVarintLen64 = 9

var (
	// ErrTruncated indicates the input ended before a complete varint was read.
	ErrTruncated = errors.New("kiwi: varint truncated")

	// ErrOverflow indicates a varint decodes to a value wider than the target type.
	ErrOverflow = errors.New("kiwi: varint overflow")

	// ErrTooLong indicates a varint exceeds the maximum allowed byte length.
	ErrTooLong = errors.New("kiwi: varint exceeds maximum length")
)

// AppendUvarint appends the varint encoding of a uint32 to buf.
//
// Encoding: 7 bits per byte, little-endian group order, MSB=1 while more
// bits remain, MSB=0 on the final byte.
func AppendUvarint(buf []byte, v uint32) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendSvarint zigzag-encodes v and appends it as a uvarint.
//
// ZigZag maps signed to unsigned so small magnitudes stay small regardless
// of sign: 0->0, -1->1, 1->2, -2->3, ...
func AppendSvarint(buf []byte, v int32) []byte {
	uv := uint32(v<<1) ^ uint32(v>>31)
	return AppendUvarint(buf, uv)
}

// DecodeUvarint decodes a uint32 varint from data, returning the value and
// the number of bytes consumed.
func DecodeUvarint(data []byte) (uint32, int, error) {
	var v uint32
	var shift uint

	for i := 0; i < len(data); i++ {
		if i >= MaxVarintLen32 {
			return 0, 0, ErrTooLong
		}
		b := data[i]
		if i == MaxVarintLen32-1 {
			// The 5th byte may only contribute the top 4 bits of a uint32.
			if b >= 0x80 {
				return 0, 0, ErrTooLong
			}
			if b > 0x0f {
				return 0, 0, ErrOverflow
			}
		}
		v |= uint32(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// DecodeSvarint decodes a zigzag-encoded int32 varint from data.
func DecodeSvarint(data []byte) (int32, int, error) {
	uv, n, err := DecodeUvarint(data)
	if err != nil {
		return 0, n, err
	}
	return int32(uv>>1) ^ -int32(uv&1), n, nil
}

// AppendUvarint64 appends the varint encoding of a uint64 to buf.
//
// The first 8 bytes are standard continuation septets (7 bits each,
// covering 56 bits). If bits remain after that, a 9th byte carries them
// raw (no continuation flag) since position alone marks it as final -
// the remaining 8 bits always fit in a single byte.
func AppendUvarint64(buf []byte, v uint64) []byte {
	for i := 0; i < MaxVarintLen64-1; i++ {
		if v < 0x80 {
			return append(buf, byte(v))
		}
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendSvarint64 zigzag-encodes v and appends it as a uvarint64.
func AppendSvarint64(buf []byte, v int64) []byte {
	uv := uint64(v<<1) ^ uint64(v>>63)
	return AppendUvarint64(buf, uv)
}

// DecodeUvarint64 decodes a uint64 varint from data, returning the value
// and the number of bytes consumed.
func DecodeUvarint64(data []byte) (uint64, int, error) {
	var v uint64
	var shift uint

	for i := 0; i < len(data); i++ {
		if i >= MaxVarintLen64 {
			return 0, 0, ErrTooLong
		}
		b := data[i]
		if i == MaxVarintLen64-1 {
			// Final byte is raw (no continuation bit reserved): it carries
			// whatever is left of the original 64 bits, up to a full byte.
			v |= uint64(b) << shift
			return v, i + 1, nil
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// DecodeSvarint64 decodes a zigzag-encoded int64 varint from data.
func DecodeSvarint64(data []byte) (int64, int, error) {
	uv, n, err := DecodeUvarint64(data)
	if err != nil {
		return 0, n, err
	}
	return int64(uv>>1) ^ -int64(uv&1), n, nil
}

// UvarintSize returns the number of bytes AppendUvarint would emit for v.
func UvarintSize(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Uvarint64Size returns the number of bytes AppendUvarint64 would emit for v.
func Uvarint64Size(v uint64) int {
	n := 1
	for i := 0; i < MaxVarintLen64-1 && v >= 0x80; i++ {
		v >>= 7
		n++
	}
	return n
}
