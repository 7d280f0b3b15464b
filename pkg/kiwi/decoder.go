package kiwi

import (
	"fmt"

	"github.com/kiwiproto/kiwi-go/internal/wire"
	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// Decoder deserializes wire bytes into a dynamic Value tree against a fixed
// Schema. A Decoder holds no mutable state and may be reused/shared freely.
//
// aux, if set, is a newer schema consulted only to learn the type of a
// message field unknown to the primary schema, so its bytes can be skipped
// rather than erroring. This is the forward-compatibility contract: pair
// newer data with the newer schema.
type Decoder struct {
	schema *schema.Schema
	aux    *schema.Schema
}

// NewDecoder creates a Decoder bound to s, with no auxiliary schema.
func NewDecoder(s *schema.Schema) *Decoder {
	return &Decoder{schema: s}
}

// WithAux returns a copy of d that consults aux to skip message fields
// unknown to d's primary schema.
func (d *Decoder) WithAux(aux *schema.Schema) *Decoder {
	return &Decoder{schema: d.schema, aux: aux}
}

// Decode reads one instance of def from the front of data, returning the
// value and the number of bytes consumed.
func (d *Decoder) Decode(data []byte, def *schema.Definition) (Value, int, error) {
	return d.decodeObject(d.schema, data, def)
}

func (d *Decoder) decodeValue(sch *schema.Schema, data []byte, t schema.TypeCode, isArray bool) (Value, int, error) {
	if isArray {
		return d.decodeArray(sch, data, t)
	}

	if t.IsUserType() {
		def := sch.Definition(t.DefIndex())
		if def == nil {
			return Value{}, 0, fmt.Errorf("kiwi: type references unknown definition %d", t.DefIndex())
		}
		if def.Kind == schema.KindEnum {
			return d.decodeEnum(data, def)
		}
		return d.decodeObject(sch, data, def)
	}

	switch t {
	case schema.TypeBool:
		b, n, err := wire.DecodeBool(data)
		return Bool(b), n, wrapWireErr(err)
	case schema.TypeByte:
		b, n, err := wire.DecodeByte(data)
		return Byte(b), n, wrapWireErr(err)
	case schema.TypeInt:
		i, n, err := wire.DecodeSvarint(data)
		return Int(i), n, wrapWireErr(err)
	case schema.TypeUint:
		u, n, err := wire.DecodeUvarint(data)
		return Uint(u), n, wrapWireErr(err)
	case schema.TypeFloat:
		f, n, err := wire.DecodeVarFloat(data)
		return Float(f), n, wrapWireErr(err)
	case schema.TypeString:
		s, n, err := wire.DecodeString(data)
		return String(s), n, wrapWireErr(err)
	case schema.TypeInt64:
		i, n, err := wire.DecodeSvarint64(data)
		return Int64(i), n, wrapWireErr(err)
	case schema.TypeUint64:
		u, n, err := wire.DecodeUvarint64(data)
		return Uint64(u), n, wrapWireErr(err)
	default:
		return Value{}, 0, fmt.Errorf("kiwi: unknown type code %d", t)
	}
}

func (d *Decoder) decodeArray(sch *schema.Schema, data []byte, elemType schema.TypeCode) (Value, int, error) {
	length, total, err := wire.DecodeUvarint(data)
	if err != nil {
		return Value{}, 0, wrapWireErr(err)
	}
	items := make([]Value, 0, length)
	for i := uint32(0); i < length; i++ {
		v, n, err := d.decodeValue(sch, data[total:], elemType, false)
		if err != nil {
			return Value{}, total, err
		}
		total += n
		items = append(items, v)
	}
	return Array(items), total, nil
}

// decodeEnum preserves an unknown discriminant as a raw EnumRaw value
// rather than rejecting it: the wire data is not lost, and callers can
// tell the two cases apart through EnumName() being empty.
func (d *Decoder) decodeEnum(data []byte, def *schema.Definition) (Value, int, error) {
	disc, n, err := wire.DecodeUvarint(data)
	if err != nil {
		return Value{}, 0, wrapWireErr(err)
	}
	for i := range def.Fields {
		if def.Fields[i].Value == disc {
			return Enum(def.Name, def.Fields[i].Name), n, nil
		}
	}
	return EnumRaw(def.Name, disc), n, nil
}

func (d *Decoder) decodeObject(sch *schema.Schema, data []byte, def *schema.Definition) (Value, int, error) {
	switch def.Kind {
	case schema.KindStruct:
		return d.decodeStruct(sch, data, def)
	case schema.KindMessage:
		return d.decodeMessage(sch, data, def)
	default:
		return Value{}, 0, fmt.Errorf("kiwi: %s is not a struct or message", def.Name)
	}
}

// decodeStruct reads each field in declaration order with no framing. If
// the struct definition has drifted since the data was written, this
// desynchronizes rather than detecting the mismatch - struct layouts are
// frozen once deployed.
func (d *Decoder) decodeStruct(sch *schema.Schema, data []byte, def *schema.Definition) (Value, int, error) {
	fields := make(map[string]Value, len(def.Fields))
	total := 0
	for _, f := range def.Fields {
		v, n, err := d.decodeValue(sch, data[total:], f.Type, f.IsArray)
		if err != nil {
			return Value{}, total, &CodecError{Def: def.Name + "." + f.Name, Offset: total, Cause: err}
		}
		total += n
		fields[f.Name] = v
	}
	return Object(def.Name, fields), total, nil
}

// decodeMessage runs the AwaitTag -> AwaitValue -> ... -> Done state
// machine. An unknown field ID is skipped using aux
// if it describes the field, else it's a hard UnknownFieldError.
func (d *Decoder) decodeMessage(sch *schema.Schema, data []byte, def *schema.Definition) (Value, int, error) {
	fields := make(map[string]Value)
	total := 0
	for {
		id, n, err := wire.DecodeUvarint(data[total:])
		if err != nil {
			return Value{}, total, &CodecError{Def: def.Name, Offset: total, Cause: wrapWireErr(err)}
		}
		total += n
		if id == 0 {
			break
		}

		if f := def.FieldByID(id); f != nil {
			v, n, err := d.decodeValue(sch, data[total:], f.Type, f.IsArray)
			if err != nil {
				return Value{}, total, &CodecError{Def: def.Name + "." + f.Name, Offset: total, Cause: err}
			}
			total += n
			fields[f.Name] = v
			continue
		}

		auxField, auxSchema := d.resolveAuxField(def.Name, id)
		if auxField == nil {
			return Value{}, total, &UnknownFieldError{Def: def.Name, ID: id}
		}
		_, n, err = d.decodeValue(auxSchema, data[total:], auxField.Type, auxField.IsArray)
		if err != nil {
			return Value{}, total, &CodecError{Def: def.Name + "." + auxField.Name, Offset: total, Cause: err}
		}
		total += n
	}
	return Object(def.Name, fields), total, nil
}

func (d *Decoder) resolveAuxField(defName string, id uint32) (*schema.Field, *schema.Schema) {
	if d.aux == nil {
		return nil, nil
	}
	def := d.aux.DefinitionByName(defName)
	if def == nil {
		return nil, nil
	}
	return def.FieldByID(id), d.aux
}
