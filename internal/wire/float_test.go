package wire

import (
	"math"
	"testing"
)

func TestAppendVarFloatZero(t *testing.T) {
	for _, v := range []float32{0.0, float32(math.Copysign(0, -1))} {
		got := AppendVarFloat(nil, v)
		if len(got) != 1 || got[0] != 0x00 {
			t.Errorf("AppendVarFloat(%v) = %x, want [0x00]", v, got)
		}
	}
}

func TestDecodeVarFloatZero(t *testing.T) {
	v, n, err := DecodeVarFloat([]byte{0x00})
	if err != nil || n != 1 || v != 0 {
		t.Fatalf("DecodeVarFloat([0x00]) = (%v, %d, %v), want (0, 1, nil)", v, n, err)
	}
	if math.Signbit(float64(v)) {
		t.Errorf("decoded zero has negative sign bit, want +0.0")
	}
}

func TestVarFloatRoundTrip(t *testing.T) {
	bitPatterns := []uint32{
		math.Float32bits(1.0),
		math.Float32bits(-1.0),
		math.Float32bits(2.0),
		math.Float32bits(3.14159),
		math.Float32bits(-3.14159),
		math.Float32bits(float32(math.Inf(1))),
		math.Float32bits(float32(math.Inf(-1))),
		math.Float32bits(float32(math.NaN())),
		0x7FC00001, // a non-canonical NaN payload
		0x00000001, // smallest positive subnormal
		0x807FFFFF, // largest-magnitude negative subnormal
		math.MaxUint32,
	}
	for _, bits := range bitPatterns {
		if bits == 0 || bits == 0x80000000 {
			continue // zero forms are covered separately
		}
		v := math.Float32frombits(bits)
		buf := AppendVarFloat(nil, v)
		got, n, err := DecodeVarFloat(buf)
		if err != nil {
			t.Fatalf("DecodeVarFloat failed for bits %#x: %v", bits, err)
		}
		if n != len(buf) {
			t.Errorf("bits %#x: consumed %d bytes, wrote %d", bits, n, len(buf))
		}
		if math.Float32bits(got) != bits {
			t.Errorf("bits %#x: round trip gave %#x", bits, math.Float32bits(got))
		}
	}
}

func TestVarFloatCommonValueNotMistakenForZero(t *testing.T) {
	// 2.0's bit pattern (0x40000000) rotates left by one to 0x80000000,
	// whose little-endian low byte is 0x00 - this must not be confused
	// with the lone zero marker.
	buf := AppendVarFloat(nil, 2.0)
	if len(buf) == 1 && buf[0] == 0x00 {
		t.Fatalf("AppendVarFloat(2.0) collided with the zero marker: %x", buf)
	}
	got, _, err := DecodeVarFloat(buf)
	if err != nil || got != 2.0 {
		t.Errorf("DecodeVarFloat(AppendVarFloat(2.0)) = (%v, %v), want 2.0", got, err)
	}
}
