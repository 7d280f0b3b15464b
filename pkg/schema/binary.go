package schema

import (
	"fmt"

	"github.com/kiwiproto/kiwi-go/internal/wire"
)

// ErrMalformedSchema is returned when a binary schema fails to decode: an
// out-of-range definition count, an unrecognized type code, or a
// def_index that doesn't name a definition in the same binary blob.
var ErrMalformedSchema = fmt.Errorf("kiwi: malformed schema")

// EncodeBinary serializes schema using the Kiwi wire primitives, the same
// way the schema format describes itself: definition_count, then for each
// definition its name, kind byte, field_count, and fields (each a name,
// signed type_code varint, is_array bool, and value varint).
func EncodeBinary(schema *Schema) ([]byte, error) {
	var buf []byte
	buf = wire.AppendUvarint(buf, uint32(len(schema.Definitions)))

	for _, def := range schema.Definitions {
		var err error
		buf, err = wire.AppendString(buf, def.Name)
		if err != nil {
			return nil, err
		}
		buf = wire.AppendByte(buf, byte(def.Kind))
		buf = wire.AppendUvarint(buf, uint32(len(def.Fields)))

		for _, f := range def.Fields {
			buf, err = wire.AppendString(buf, f.Name)
			if err != nil {
				return nil, err
			}
			buf = wire.AppendSvarint(buf, int32(f.Type))
			buf = wire.AppendBool(buf, f.IsArray)
			buf = wire.AppendUvarint(buf, f.Value)
		}
	}

	return buf, nil
}

// DecodeBinary parses a binary schema produced by EncodeBinary. It does
// not re-run Validate; callers that need validated output should call
// Validate(schema) themselves (DecodeBinary trusts the producer to have
// already validated, matching the "binary schema format is considered
// stable" contract - no magic number, no version byte).
func DecodeBinary(data []byte) (*Schema, error) {
	defCount, n, err := wire.DecodeUvarint(data)
	if err != nil {
		return nil, err
	}
	data = data[n:]
	// Every definition takes at least one byte, so a count larger than the
	// remaining input cannot be valid.
	if uint64(defCount) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: definition count %d exceeds the %d remaining bytes", ErrMalformedSchema, defCount, len(data))
	}

	schema := &Schema{Definitions: make([]Definition, defCount)}

	for i := uint32(0); i < defCount; i++ {
		name, n, err := wire.DecodeString(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]

		kindByte, n, err := wire.DecodeByte(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		if kindByte > byte(KindMessage) {
			return nil, fmt.Errorf("%w: unknown definition kind %d", ErrMalformedSchema, kindByte)
		}

		fieldCount, n, err := wire.DecodeUvarint(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]

		def := Definition{Name: name, Kind: Kind(kindByte), Fields: make([]Field, fieldCount)}

		for j := uint32(0); j < fieldCount; j++ {
			fieldName, n, err := wire.DecodeString(data)
			if err != nil {
				return nil, err
			}
			data = data[n:]

			typeCode, n, err := wire.DecodeSvarint(data)
			if err != nil {
				return nil, err
			}
			data = data[n:]

			isArray, n, err := wire.DecodeBool(data)
			if err != nil {
				return nil, err
			}
			data = data[n:]

			value, n, err := wire.DecodeUvarint(data)
			if err != nil {
				return nil, err
			}
			data = data[n:]

			tc := TypeCode(typeCode)
			if !tc.IsBuiltin() && !tc.IsUserType() {
				return nil, fmt.Errorf("%w: unrecognized type code %d in field %q", ErrMalformedSchema, typeCode, fieldName)
			}
			if tc.IsUserType() && uint32(tc.DefIndex()) >= defCount {
				return nil, fmt.Errorf("%w: def_index %d out of range (%d definitions) in field %q", ErrMalformedSchema, tc.DefIndex(), defCount, fieldName)
			}

			def.Fields[j] = Field{Name: fieldName, Type: tc, IsArray: isArray, Value: value}
		}

		schema.Definitions[i] = def
	}

	return schema, nil
}
