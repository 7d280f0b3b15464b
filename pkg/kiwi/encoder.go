package kiwi

import (
	"fmt"

	"github.com/kiwiproto/kiwi-go/internal/wire"
	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// Encoder serializes a dynamic Value tree to the Kiwi wire format against a
// fixed Schema. An Encoder holds no mutable state of its own and may be
// reused concurrently across goroutines.
type Encoder struct {
	schema *schema.Schema
}

// NewEncoder creates an Encoder bound to s.
func NewEncoder(s *schema.Schema) *Encoder {
	return &Encoder{schema: s}
}

// Encode serializes v, an instance of def (a struct or message definition
// from the Encoder's schema), to its wire bytes.
func (e *Encoder) Encode(def *schema.Definition, v Value) ([]byte, error) {
	return e.encodeObject(nil, def, v)
}

// Append is like Encode but appends the wire bytes to buf, which may be a
// pooled buffer from GetBuffer. On error the returned slice may hold a
// partial encoding and should be discarded.
func (e *Encoder) Append(buf []byte, def *schema.Definition, v Value) ([]byte, error) {
	return e.encodeObject(buf, def, v)
}

// encodeValue dispatches on t/isArray - the type descriptor pulled from a
// field or array element - and checks v's tag matches before delegating to
// the matching ByteBuffer writer.
func (e *Encoder) encodeValue(buf []byte, t schema.TypeCode, isArray bool, v Value) ([]byte, error) {
	if isArray {
		if v.Kind() != KindArray {
			return buf, &TypeMismatchError{Expected: "array", Got: v.Kind().String()}
		}
		items := v.Items()
		buf = wire.AppendUvarint(buf, uint32(len(items)))
		for _, item := range items {
			var err error
			buf, err = e.encodeValue(buf, t, false, item)
			if err != nil {
				return buf, err
			}
		}
		return buf, nil
	}

	if t.IsUserType() {
		def := e.schema.Definition(t.DefIndex())
		if def == nil {
			return buf, fmt.Errorf("kiwi: type references unknown definition %d", t.DefIndex())
		}
		if def.Kind == schema.KindEnum {
			return e.encodeEnum(buf, def, v)
		}
		return e.encodeObject(buf, def, v)
	}

	switch t {
	case schema.TypeBool:
		if v.Kind() != KindBool {
			return buf, &TypeMismatchError{Expected: "bool", Got: v.Kind().String()}
		}
		return wire.AppendBool(buf, v.Bool()), nil
	case schema.TypeByte:
		if v.Kind() != KindByte {
			return buf, &TypeMismatchError{Expected: "byte", Got: v.Kind().String()}
		}
		return wire.AppendByte(buf, v.Byte()), nil
	case schema.TypeInt:
		if v.Kind() != KindInt {
			return buf, &TypeMismatchError{Expected: "int", Got: v.Kind().String()}
		}
		return wire.AppendSvarint(buf, v.Int()), nil
	case schema.TypeUint:
		if v.Kind() != KindUint {
			return buf, &TypeMismatchError{Expected: "uint", Got: v.Kind().String()}
		}
		return wire.AppendUvarint(buf, v.Uint()), nil
	case schema.TypeFloat:
		if v.Kind() != KindFloat {
			return buf, &TypeMismatchError{Expected: "float", Got: v.Kind().String()}
		}
		return wire.AppendVarFloat(buf, v.Float()), nil
	case schema.TypeString:
		if v.Kind() != KindString {
			return buf, &TypeMismatchError{Expected: "string", Got: v.Kind().String()}
		}
		out, err := wire.AppendString(buf, v.Str())
		if err != nil {
			return buf, err
		}
		return out, nil
	case schema.TypeInt64:
		if v.Kind() != KindInt64 {
			return buf, &TypeMismatchError{Expected: "int64", Got: v.Kind().String()}
		}
		return wire.AppendSvarint64(buf, v.Int64()), nil
	case schema.TypeUint64:
		if v.Kind() != KindUint64 {
			return buf, &TypeMismatchError{Expected: "uint64", Got: v.Kind().String()}
		}
		return wire.AppendUvarint64(buf, v.Uint64()), nil
	default:
		return buf, fmt.Errorf("kiwi: unknown type code %d", t)
	}
}

func (e *Encoder) encodeEnum(buf []byte, def *schema.Definition, v Value) ([]byte, error) {
	if v.Kind() != KindEnum || v.Def() != def.Name {
		return buf, &TypeMismatchError{Expected: "enum " + def.Name, Got: v.Kind().String()}
	}
	discriminant := v.EnumDiscriminant()
	if name := v.EnumName(); name != "" {
		f := def.FieldByName(name)
		if f == nil {
			return buf, fmt.Errorf("kiwi: %s has no variant %q", def.Name, name)
		}
		discriminant = f.Value
	}
	return wire.AppendUvarint(buf, discriminant), nil
}

func (e *Encoder) encodeObject(buf []byte, def *schema.Definition, v Value) ([]byte, error) {
	if v.Kind() != KindObject || v.Def() != def.Name {
		return buf, &TypeMismatchError{Expected: def.Kind.String() + " " + def.Name, Got: v.Kind().String()}
	}
	switch def.Kind {
	case schema.KindStruct:
		return e.encodeStruct(buf, def, v)
	case schema.KindMessage:
		return e.encodeMessage(buf, def, v)
	default:
		return buf, fmt.Errorf("kiwi: %s is not a struct or message", def.Name)
	}
}

// encodeStruct writes every field of def in declaration order with no
// framing: structs are positional and frozen once deployed.
func (e *Encoder) encodeStruct(buf []byte, def *schema.Definition, v Value) ([]byte, error) {
	fields := v.Fields()
	for _, f := range def.Fields {
		val, ok := fields[f.Name]
		if !ok {
			return buf, &MissingStructFieldError{Def: def.Name, Field: f.Name}
		}
		var err error
		buf, err = e.encodeValue(buf, f.Type, f.IsArray, val)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// encodeMessage writes a field_id/value pair for each field present in v,
// in declaration order, terminated by the 0 END marker. Absent fields are
// simply skipped - this is the forward-compatible wire shape.
func (e *Encoder) encodeMessage(buf []byte, def *schema.Definition, v Value) ([]byte, error) {
	fields := v.Fields()
	for _, f := range def.Fields {
		val, ok := fields[f.Name]
		if !ok {
			continue
		}
		buf = wire.AppendUvarint(buf, f.Value)
		var err error
		buf, err = e.encodeValue(buf, f.Type, f.IsArray, val)
		if err != nil {
			return buf, err
		}
	}
	return wire.AppendUvarint(buf, 0), nil
}
