package extract

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// SchemaBuilder converts collected Go type information into a Kiwi schema.
// Enums come first in the output, then struct/message types, each group
// sorted by name so extraction is deterministic regardless of map order.
type SchemaBuilder struct {
	types    map[string]*TypeInfo
	enums    map[string]*EnumInfo
	defIndex map[string]int // qualified Go name -> def_index
	warnings []string
}

// NewSchemaBuilder creates a SchemaBuilder over the collector's output.
func NewSchemaBuilder(types map[string]*TypeInfo, enums map[string]*EnumInfo) *SchemaBuilder {
	return &SchemaBuilder{
		types:    types,
		enums:    enums,
		defIndex: make(map[string]int),
	}
}

// Warnings returns the warnings generated during the last Build call.
func (b *SchemaBuilder) Warnings() []string { return b.warnings }

func (b *SchemaBuilder) addWarning(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// Build constructs and validates a schema from the collected types. Field
// types referring to other collected types become user-type references by
// def_index, so the definition order assigned here is load-bearing.
func (b *SchemaBuilder) Build() (*schema.Schema, error) {
	enumNames := sortedKeys(b.enums)
	typeNames := sortedKeys(b.types)

	// First pass: assign def indices before any field type is resolved, so
	// forward references between collected types work.
	idx := 0
	for _, name := range enumNames {
		b.defIndex[name] = idx
		idx++
	}
	for _, name := range typeNames {
		b.defIndex[name] = idx
		idx++
	}

	s := &schema.Schema{}
	for _, name := range enumNames {
		s.Definitions = append(s.Definitions, b.buildEnum(b.enums[name]))
	}
	for _, name := range typeNames {
		def, err := b.buildType(b.types[name])
		if err != nil {
			return nil, err
		}
		s.Definitions = append(s.Definitions, def)
	}

	var errs []string
	for _, e := range schema.Validate(s) {
		if e.Severity == schema.SeverityError {
			errs = append(errs, e.Error())
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("extract: built schema is invalid: %s", strings.Join(errs, "; "))
	}
	return s, nil
}

func (b *SchemaBuilder) buildEnum(enum *EnumInfo) schema.Definition {
	def := schema.Definition{
		Name:     enum.Name,
		Kind:     schema.KindEnum,
		Comments: docComments(enum.Doc),
	}

	values := make([]*EnumValueInfo, len(enum.Values))
	copy(values, enum.Values)
	sort.Slice(values, func(i, j int) bool { return values[i].Number < values[j].Number })

	for _, val := range values {
		if val.Number < 0 {
			b.addWarning("enum %s: constant %s has negative value %d, skipped (discriminants are unsigned)",
				enum.Name, val.Name, val.Number)
			continue
		}
		def.Fields = append(def.Fields, schema.Field{
			Name:  val.Name,
			Value: uint32(val.Number),
		})
	}
	return def
}

func (b *SchemaBuilder) buildType(typ *TypeInfo) (schema.Definition, error) {
	kind := schema.KindMessage
	if typ.IsStruct {
		kind = schema.KindStruct
	}
	def := schema.Definition{
		Name:     typ.Name,
		Kind:     kind,
		Comments: docComments(typ.Doc),
	}

	fields := make([]*FieldInfo, len(typ.Fields))
	copy(fields, typ.Fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].FieldNum < fields[j].FieldNum })

	for _, field := range fields {
		code, isArray, err := b.goTypeToCode(field.GoType)
		if err != nil {
			b.addWarning("%s.%s: %v, skipped", typ.Name, field.Name, err)
			continue
		}
		f := schema.Field{
			Name:    toSnakeCase(field.Name),
			Type:    code,
			IsArray: isArray || field.Repeated,
		}
		if kind == schema.KindMessage {
			f.Value = field.FieldNum
		}
		def.Fields = append(def.Fields, f)
	}
	return def, nil
}

// goTypeToCode maps a Go type to a Kiwi type code, following references to
// other collected types by their assigned def_index.
func (b *SchemaBuilder) goTypeToCode(t types.Type) (schema.TypeCode, bool, error) {
	switch tt := t.(type) {
	case *types.Pointer:
		// Message fields are already optional on the wire, so a pointer just
		// unwraps to its element type.
		return b.goTypeToCode(tt.Elem())

	case *types.Named:
		name := tt.Obj().Name()
		pkgPath := ""
		if tt.Obj().Pkg() != nil {
			pkgPath = tt.Obj().Pkg().Path()
		}
		if idx, ok := b.defIndex[pkgPath+"."+name]; ok {
			return schema.UserType(idx), false, nil
		}
		return b.goTypeToCode(tt.Underlying())

	case *types.Slice:
		elem, elemIsArray, err := b.goTypeToCode(tt.Elem())
		if err != nil {
			return 0, false, err
		}
		if elemIsArray {
			return 0, false, fmt.Errorf("nested slices have no Kiwi equivalent")
		}
		return elem, true, nil

	case *types.Array:
		elem, elemIsArray, err := b.goTypeToCode(tt.Elem())
		if err != nil {
			return 0, false, err
		}
		if elemIsArray {
			return 0, false, fmt.Errorf("nested arrays have no Kiwi equivalent")
		}
		return elem, true, nil

	case *types.Basic:
		return b.basicTypeToCode(tt)

	default:
		return 0, false, fmt.Errorf("unsupported Go type %s", t.String())
	}
}

func (b *SchemaBuilder) basicTypeToCode(t *types.Basic) (schema.TypeCode, bool, error) {
	switch t.Kind() {
	case types.Bool:
		return schema.TypeBool, false, nil
	case types.Uint8:
		return schema.TypeByte, false, nil
	case types.Int8, types.Int16, types.Int32:
		return schema.TypeInt, false, nil
	case types.Int:
		b.addWarning("type 'int' is platform-dependent; mapped to the 32-bit Kiwi int")
		return schema.TypeInt, false, nil
	case types.Uint16, types.Uint32:
		return schema.TypeUint, false, nil
	case types.Uint:
		b.addWarning("type 'uint' is platform-dependent; mapped to the 32-bit Kiwi uint")
		return schema.TypeUint, false, nil
	case types.Float32:
		return schema.TypeFloat, false, nil
	case types.Float64:
		b.addWarning("float64 narrowed to the 32-bit Kiwi float")
		return schema.TypeFloat, false, nil
	case types.String:
		return schema.TypeString, false, nil
	case types.Int64:
		return schema.TypeInt64, false, nil
	case types.Uint64:
		return schema.TypeUint64, false, nil
	default:
		return 0, false, fmt.Errorf("unsupported Go basic type %s", t.Name())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func docComments(doc string) []string {
	doc = strings.TrimSpace(kiwiStructMarker.ReplaceAllString(doc, ""))
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}

// toSnakeCase converts CamelCase to snake_case, keeping runs of uppercase
// letters together ("HTTPServer" -> "http_server").
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				isLowerPrev := prev >= 'a' && prev <= 'z'
				isUpperNext := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if isLowerPrev || isUpperNext {
					result.WriteByte('_')
				}
			}
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
