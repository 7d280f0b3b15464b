// Package schema provides the in-memory model, parser, validator, and
// binary self-description codec for Kiwi schemas.
package schema

import "fmt"

// Position identifies a location in a .kiwi source file.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String renders the position as "file:line:col".
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Kind is the kind of a Definition.
type Kind int

const (
	KindEnum Kind = iota
	KindStruct
	KindMessage
)

// String returns the schema-text keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// TypeCode identifies a field's type: one of the eight builtin scalars, or
// a reference to another Definition by index.
type TypeCode int

const (
	TypeBool   TypeCode = -1
	TypeByte   TypeCode = -2
	TypeInt    TypeCode = -3
	TypeUint   TypeCode = -4
	TypeFloat  TypeCode = -5
	TypeString TypeCode = -6
	TypeInt64  TypeCode = -7
	TypeUint64 TypeCode = -8
)

// builtinNames maps each builtin .kiwi keyword to its type code;
// builtinKeywords is the reverse mapping.
var builtinNames = map[string]TypeCode{
	"bool":   TypeBool,
	"byte":   TypeByte,
	"int":    TypeInt,
	"uint":   TypeUint,
	"float":  TypeFloat,
	"string": TypeString,
	"int64":  TypeInt64,
	"uint64": TypeUint64,
}

var builtinKeywords = map[TypeCode]string{
	TypeBool:   "bool",
	TypeByte:   "byte",
	TypeInt:    "int",
	TypeUint:   "uint",
	TypeFloat:  "float",
	TypeString: "string",
	TypeInt64:  "int64",
	TypeUint64: "uint64",
}

// IsBuiltin reports whether code names one of the eight builtin scalars.
func (t TypeCode) IsBuiltin() bool {
	return t <= TypeBool && t >= TypeUint64
}

// IsUserType reports whether code refers to another Definition by index.
func (t TypeCode) IsUserType() bool {
	return t >= 0
}

// DefIndex returns the Definition index this type code refers to. Only
// meaningful when IsUserType is true.
func (t TypeCode) DefIndex() int {
	return int(t)
}

// String renders the type code as it would appear in .kiwi source, given
// the enclosing schema for resolving user-type references. Pass a nil
// schema to render builtins only (user types render as "<N>").
func (t TypeCode) String(s *Schema) string {
	if t.IsBuiltin() {
		return builtinKeywords[t]
	}
	if s != nil {
		if d := s.Definition(t.DefIndex()); d != nil {
			return d.Name
		}
	}
	return fmt.Sprintf("<%d>", t.DefIndex())
}

// UserType returns the type code referring to the definition at index i.
func UserType(i int) TypeCode { return TypeCode(i) }

// Field is a single member of a Definition.
//
// The meaning of Value depends on the enclosing Definition's Kind:
//   - Enum: the member's uint discriminant.
//   - Message: the field's wire ID (>=1).
//   - Struct: unused, always 0.
type Field struct {
	Position Position
	Name     string
	Type     TypeCode // zero value for enum members, who have no Type
	IsArray  bool
	Value    uint32
	Comments []string

	// UnresolvedType holds the type name as written in source when it
	// doesn't name one of the eight builtins. The parser leaves Type at its
	// zero value (TypeCode(0), which would otherwise mean "definition 0")
	// and records the name here instead; Validate resolves it against the
	// schema's definitions and clears it, or reports an unknown-type error.
	UnresolvedType string
}

// Definition is a named enum, struct, or message declaration.
type Definition struct {
	Position Position
	Name     string
	Kind     Kind
	Fields   []Field
	Comments []string
}

// FieldByName returns the field named name, or nil.
func (d *Definition) FieldByName(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldByID returns the message field with wire ID id, or nil. Only
// meaningful for KindMessage definitions.
func (d *Definition) FieldByID(id uint32) *Field {
	for i := range d.Fields {
		if d.Fields[i].Value == id {
			return &d.Fields[i]
		}
	}
	return nil
}

// Schema is an ordered list of Definitions. A Definition's position in
// Definitions is its stable def_index, referenced by TypeCode values >= 0
// and by the binary schema format.
type Schema struct {
	Definitions []Definition
}

// DefIndex returns the def_index of the definition named name, or -1.
func (s *Schema) DefIndex(name string) int {
	for i := range s.Definitions {
		if s.Definitions[i].Name == name {
			return i
		}
	}
	return -1
}

// Definition returns the definition at def_index i, or nil if out of range.
func (s *Schema) Definition(i int) *Definition {
	if i < 0 || i >= len(s.Definitions) {
		return nil
	}
	return &s.Definitions[i]
}

// DefinitionByName returns the definition named name, or nil.
func (s *Schema) DefinitionByName(name string) *Definition {
	i := s.DefIndex(name)
	if i < 0 {
		return nil
	}
	return &s.Definitions[i]
}
