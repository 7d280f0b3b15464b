package kiwi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON renders the value as JSON: primitives map naturally, enums
// render as the variant name (or the raw discriminant when unknown),
// objects as JSON objects, arrays as JSON arrays. Byte values are numbers,
// so a byte array renders as an array of numbers. Non-finite floats have no
// JSON number form and render as the strings "nan", "inf", and "-inf".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindByte:
		return json.Marshal(v.u8)
	case KindInt:
		return json.Marshal(v.i32)
	case KindUint:
		return json.Marshal(v.u32)
	case KindFloat:
		return floatJSON(v.f32), nil
	case KindString:
		return json.Marshal(v.str)
	case KindInt64:
		return json.Marshal(v.i64)
	case KindUint64:
		return json.Marshal(v.u64)
	case KindEnum:
		if v.str != "" {
			return json.Marshal(v.str)
		}
		return json.Marshal(v.u32)
	case KindArray:
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("kiwi: cannot render kind %v as JSON", v.kind)
	}
}

func floatJSON(f float32) []byte {
	f64 := float64(f)
	if math.IsNaN(f64) {
		return []byte(`"nan"`)
	}
	if math.IsInf(f64, 1) {
		return []byte(`"inf"`)
	}
	if math.IsInf(f64, -1) {
		return []byte(`"-inf"`)
	}
	return []byte(strconv.FormatFloat(f64, 'g', -1, 32))
}
