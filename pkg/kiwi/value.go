// Package kiwi implements the schema-directed runtime codec: a dynamic,
// tagged Value tree and the Encoder/Decoder that move it to and from the
// Kiwi wire format.
package kiwi

import "math"

// Kind discriminates the tag of a Value.
type Kind int

const (
	KindBool Kind = iota
	KindByte
	KindInt
	KindUint
	KindFloat
	KindString
	KindInt64
	KindUint64
	KindEnum
	KindArray
	KindObject
)

// String returns a short name for the kind, used in TypeMismatchError messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the dynamic tagged tree that the Encoder/Decoder operate on. It
// mirrors the schema's type descriptors (the eight builtin scalars) plus
// Enum, Array and Object for user-defined types. The zero Value is not
// meaningful on its own; construct one with the Bool/Byte/.../Object
// functions below.
type Value struct {
	kind Kind

	b   bool
	u8  byte
	i32 int32
	u32 uint32 // also the enum discriminant
	f32 float32
	str string // also the enum variant name (empty if unresolved/unknown)
	i64 int64
	u64 uint64

	def   string // enum/object definition name
	items []Value
	obj   map[string]Value
}

// Kind reports v's tag.
func (v Value) Kind() Kind { return v.kind }

// Bool constructs a KindBool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Bool returns the boolean payload. Only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Byte constructs a KindByte value.
func Byte(u byte) Value { return Value{kind: KindByte, u8: u} }

// Byte returns the byte payload. Only meaningful when Kind() == KindByte.
func (v Value) Byte() byte { return v.u8 }

// Int constructs a KindInt value.
func Int(i int32) Value { return Value{kind: KindInt, i32: i} }

// Int returns the int32 payload. Only meaningful when Kind() == KindInt.
func (v Value) Int() int32 { return v.i32 }

// Uint constructs a KindUint value.
func Uint(u uint32) Value { return Value{kind: KindUint, u32: u} }

// Uint returns the uint32 payload. Only meaningful when Kind() == KindUint.
func (v Value) Uint() uint32 { return v.u32 }

// Float constructs a KindFloat value.
func Float(f float32) Value { return Value{kind: KindFloat, f32: f} }

// Float returns the float32 payload. Only meaningful when Kind() == KindFloat.
func (v Value) Float() float32 { return v.f32 }

// String constructs a KindString value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Str returns the string payload. Only meaningful when Kind() == KindString.
//
// Named Str rather than String to avoid accidentally satisfying
// fmt.Stringer, which would make %v/%+v print only this field regardless
// of the value's actual Kind.
func (v Value) Str() string { return v.str }

// Int64 constructs a KindInt64 value.
func Int64(i int64) Value { return Value{kind: KindInt64, i64: i} }

// Int64 returns the int64 payload. Only meaningful when Kind() == KindInt64.
func (v Value) Int64() int64 { return v.i64 }

// Uint64 constructs a KindUint64 value.
func Uint64(u uint64) Value { return Value{kind: KindUint64, u64: u} }

// Uint64 returns the uint64 payload. Only meaningful when Kind() == KindUint64.
func (v Value) Uint64() uint64 { return v.u64 }

// Enum constructs a KindEnum value naming a known variant by name. The
// Encoder resolves variant to its discriminant against the schema.
func Enum(def, variant string) Value {
	return Value{kind: KindEnum, def: def, str: variant}
}

// EnumRaw constructs a KindEnum value carrying a discriminant with no known
// variant name, the representation of an unknown enum variant under the
// preserve-on-decode policy (see package kiwi's Decoder).
func EnumRaw(def string, discriminant uint32) Value {
	return Value{kind: KindEnum, def: def, u32: discriminant}
}

// Def returns the enum or object definition name. Only meaningful when
// Kind() is KindEnum or KindObject.
func (v Value) Def() string { return v.def }

// EnumName returns the variant name, or "" if the value holds an unresolved
// raw discriminant. Only meaningful when Kind() == KindEnum.
func (v Value) EnumName() string { return v.str }

// EnumDiscriminant returns the raw discriminant. Only meaningful when
// Kind() == KindEnum and EnumName() == "".
func (v Value) EnumDiscriminant() uint32 { return v.u32 }

// Array constructs a KindArray value.
func Array(items []Value) Value { return Value{kind: KindArray, items: items} }

// Items returns the array elements. Only meaningful when Kind() == KindArray.
func (v Value) Items() []Value { return v.items }

// Object constructs a KindObject value representing an instance of the
// struct or message named def. For a message, fields absent from the map
// are simply not present on the wire; for a struct, every field of the
// definition must be present or encoding fails with MissingStructFieldError.
func Object(def string, fields map[string]Value) Value {
	return Value{kind: KindObject, def: def, obj: fields}
}

// Fields returns the field map. Only meaningful when Kind() == KindObject.
func (v Value) Fields() map[string]Value { return v.obj }

// Equal reports whether v and other represent the same value, used by
// round-trip tests to check the encode/decode identity law. Floats compare
// by bit pattern so NaN equals NaN, matching the wire format's bit-exact
// round-trip guarantee.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindByte:
		return v.u8 == other.u8
	case KindInt:
		return v.i32 == other.i32
	case KindUint:
		return v.u32 == other.u32
	case KindFloat:
		return math.Float32bits(v.f32) == math.Float32bits(other.f32)
	case KindString:
		return v.str == other.str
	case KindInt64:
		return v.i64 == other.i64
	case KindUint64:
		return v.u64 == other.u64
	case KindEnum:
		return v.def == other.def && v.str == other.str && v.u32 == other.u32
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.def != other.def || len(v.obj) != len(other.obj) {
			return false
		}
		for name, val := range v.obj {
			ov, ok := other.obj[name]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
