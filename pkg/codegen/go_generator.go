package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// GoGenerator emits Go source from a Schema. Generated types depend only
// on pkg/wire's ByteBuffer primitives at runtime - never on pkg/kiwi's
// dynamic Value tree or the Schema model.
type GoGenerator struct{}

// NewGoGenerator creates a Go code generator.
func NewGoGenerator() *GoGenerator { return &GoGenerator{} }

func (g *GoGenerator) Language() Language    { return LanguageGo }
func (g *GoGenerator) FileExtension() string { return ".go" }

// Generate writes Go source for s to w.
func (g *GoGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &goContext{Schema: s, Options: opts}
	tmpl, err := template.New("go").Funcs(ctx.funcMap()).Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("codegen: parse go template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type goContext struct {
	Schema  *schema.Schema
	Options Options
}

// definitions returns the schema's definitions as pointers, so template
// actions can call pointer-receiver helpers while ranging over them.
func (c *goContext) definitions() []*schema.Definition {
	defs := make([]*schema.Definition, len(c.Schema.Definitions))
	for i := range c.Schema.Definitions {
		defs[i] = &c.Schema.Definitions[i]
	}
	return defs
}

func (c *goContext) funcMap() template.FuncMap {
	return template.FuncMap{
		"definitions":       c.definitions,
		"goPackage":         c.goPackage,
		"typeName":          c.typeName,
		"fieldGoType":       c.fieldGoType,
		"fieldName":         func(f schema.Field) string { return ToPascalCase(f.Name) },
		"comment":           GoComment,
		"generateComments":  func() bool { return c.Options.GenerateComments },
		"jsonTag":           c.jsonTag,
		"encodeStructField": c.encodeStructFieldStmt,
		"decodeStructField": c.decodeStructFieldStmt,
		"encodeMessageField": c.encodeMessageFieldStmt,
		"decodeMessageField":  c.decodeMessageFieldStmt,
	}
}

func (c *goContext) goPackage() string {
	if c.Options.Package != "" {
		return c.Options.Package
	}
	return "generated"
}

// typeName returns the Go type name generated for a definition.
func (c *goContext) typeName(def *schema.Definition) string {
	return c.Options.TypePrefix + ToPascalCase(def.Name) + c.Options.TypeSuffix
}

// baseGoType is the Go type that represents t with no optionality wrapper:
// the scalar Go type, the value type name for an Enum/Struct reference, or
// a pointer type name for a Message reference (messages are always
// represented by pointer in generated Go, since recursive messages need it
// and it keeps message handling uniform everywhere they're referenced).
func (c *goContext) baseGoType(t schema.TypeCode) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		name := c.typeName(def)
		if def.Kind == schema.KindMessage {
			return "*" + name
		}
		return name
	}
	switch t {
	case schema.TypeBool:
		return "bool"
	case schema.TypeByte:
		return "byte"
	case schema.TypeInt:
		return "int32"
	case schema.TypeUint:
		return "uint32"
	case schema.TypeFloat:
		return "float32"
	case schema.TypeString:
		return "string"
	case schema.TypeInt64:
		return "int64"
	case schema.TypeUint64:
		return "uint64"
	default:
		return "any"
	}
}

// fieldGoType is the Go type of a Definition's field. Struct fields are
// required records so they use baseGoType verbatim (array-wrapped if
// IsArray). Message fields are all optional, so a
// scalar/enum/struct message field is additionally pointer-wrapped to
// distinguish "absent" from the zero value; an array field's absence is
// represented by a nil slice, needing no extra wrapper; a message-type
// field is already a pointer via baseGoType.
func (c *goContext) fieldGoType(def *schema.Definition, f schema.Field) string {
	base := c.baseGoType(f.Type)
	if f.IsArray {
		return "[]" + base
	}
	if def.Kind != schema.KindMessage || strings.HasPrefix(base, "*") {
		return base
	}
	return "*" + base
}

func (c *goContext) jsonTag(def *schema.Definition, f schema.Field) string {
	if !c.Options.GenerateJSON {
		return ""
	}
	tag := ToSnakeCase(f.Name)
	if def.Kind == schema.KindMessage {
		tag += ",omitempty"
	}
	return fmt.Sprintf(" `json:\"%s\"`", tag)
}

// --- encode/decode statement generation ---
//
// These build Go source snippets for insertion into the generated
// EncodeTo/DecodeXxx method bodies. Every statement operates on the
// ambient `buf []byte` (encode) or `data []byte` / `total int` (decode)
// variables the surrounding template establishes.

// encodeValueStmt appends expr's value (of type t) to buf. User-type
// references delegate to the referenced type's own EncodeTo; enums never
// error, structs and messages might (if they embed a string), so those
// two always check the returned error inside their own block.
func (c *goContext) encodeValueStmt(t schema.TypeCode, expr string) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		if def.Kind == schema.KindEnum {
			return fmt.Sprintf("buf = %s.EncodeTo(buf)", expr)
		}
		return fmt.Sprintf(`{
	var err error
	buf, err = %s.EncodeTo(buf)
	if err != nil {
		return buf, err
	}
}`, expr)
	}
	switch t {
	case schema.TypeBool:
		return fmt.Sprintf("buf = wire.AppendBool(buf, %s)", expr)
	case schema.TypeByte:
		return fmt.Sprintf("buf = wire.AppendByte(buf, %s)", expr)
	case schema.TypeInt:
		return fmt.Sprintf("buf = wire.AppendSvarint(buf, %s)", expr)
	case schema.TypeUint:
		return fmt.Sprintf("buf = wire.AppendUvarint(buf, %s)", expr)
	case schema.TypeFloat:
		return fmt.Sprintf("buf = wire.AppendVarFloat(buf, %s)", expr)
	case schema.TypeInt64:
		return fmt.Sprintf("buf = wire.AppendSvarint64(buf, %s)", expr)
	case schema.TypeUint64:
		return fmt.Sprintf("buf = wire.AppendUvarint64(buf, %s)", expr)
	case schema.TypeString:
		return fmt.Sprintf(`{
	var err error
	buf, err = wire.AppendString(buf, %s)
	if err != nil {
		return buf, err
	}
}`, expr)
	default:
		return fmt.Sprintf("// unreachable type code %d", t)
	}
}

func (c *goContext) encodeArrayStmt(elemType schema.TypeCode, expr string) string {
	inner := Indent(c.encodeValueStmt(elemType, "item"), 1)
	return fmt.Sprintf(`buf = wire.AppendUvarint(buf, uint32(len(%s)))
for _, item := range %s {
%s
}`, expr, expr, inner)
}

// encodeStructFieldStmt encodes one field of a struct, in declaration
// order, with no presence check: structs are positional records where
// every field is required.
func (c *goContext) encodeStructFieldStmt(f schema.Field) string {
	expr := "m." + ToPascalCase(f.Name)
	if f.IsArray {
		return c.encodeArrayStmt(f.Type, expr)
	}
	return c.encodeValueStmt(f.Type, expr)
}

// encodeMessageFieldStmt encodes one field of a message only if present
// (non-nil pointer, or non-empty slice), prefixed by its field ID.
func (c *goContext) encodeMessageFieldStmt(f schema.Field) string {
	expr := "m." + ToPascalCase(f.Name)
	if f.IsArray {
		body := Indent(c.encodeArrayStmt(f.Type, expr), 1)
		return fmt.Sprintf(`if len(%s) > 0 {
	buf = wire.AppendUvarint(buf, %d)
%s
}`, expr, f.Value, body)
	}
	valueExpr := expr
	if !f.Type.IsUserType() {
		valueExpr = "*" + expr
	} else if def := c.Schema.Definition(f.Type.DefIndex()); def.Kind != schema.KindMessage {
		valueExpr = "(*" + expr + ")"
	}
	body := Indent(c.encodeValueStmt(f.Type, valueExpr), 1)
	return fmt.Sprintf(`if %s != nil {
	buf = wire.AppendUvarint(buf, %d)
%s
}`, expr, f.Value, body)
}

// decodeValueStmt decodes a value of type t from data[total:], advances
// total, and assigns the result to assignTo. zeroExpr is the enclosing
// DecodeXxx function's zero-value return expression, used on error paths.
func (c *goContext) decodeValueStmt(t schema.TypeCode, assignTo, zeroExpr string) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		name := c.typeName(def)
		return fmt.Sprintf(`{
	v, n, err := Decode%s(data[total:])
	if err != nil {
		return %s, total, err
	}
	total += n
	%s = v
}`, name, zeroExpr, assignTo)
	}
	decodeCall := map[schema.TypeCode]string{
		schema.TypeBool:    "wire.DecodeBool(data[total:])",
		schema.TypeByte:    "wire.DecodeByte(data[total:])",
		schema.TypeInt:     "wire.DecodeSvarint(data[total:])",
		schema.TypeUint:    "wire.DecodeUvarint(data[total:])",
		schema.TypeFloat:   "wire.DecodeVarFloat(data[total:])",
		schema.TypeString:  "wire.DecodeString(data[total:])",
		schema.TypeInt64:   "wire.DecodeSvarint64(data[total:])",
		schema.TypeUint64:  "wire.DecodeUvarint64(data[total:])",
	}[t]
	return fmt.Sprintf(`{
	v, n, err := %s
	if err != nil {
		return %s, total, err
	}
	total += n
	%s = v
}`, decodeCall, zeroExpr, assignTo)
}

func (c *goContext) decodeArrayStmt(elemType schema.TypeCode, assignTo, zeroExpr string) string {
	elemGoType := c.baseGoType(elemType)
	inner := Indent(c.decodeValueStmt(elemType, "item", zeroExpr), 1)
	return fmt.Sprintf(`{
	length, n, err := wire.DecodeUvarint(data[total:])
	if err != nil {
		return %s, total, err
	}
	total += n
	items := make([]%s, 0, length)
	for i := uint32(0); i < length; i++ {
		var item %s
%s
		items = append(items, item)
	}
	%s = items
}`, zeroExpr, elemGoType, elemGoType, inner, assignTo)
}

// decodeStructFieldStmt decodes one required, positional struct field.
func (c *goContext) decodeStructFieldStmt(f schema.Field, zeroExpr string) string {
	assignTo := "m." + ToPascalCase(f.Name)
	if f.IsArray {
		return c.decodeArrayStmt(f.Type, assignTo, zeroExpr)
	}
	return c.decodeValueStmt(f.Type, assignTo, zeroExpr)
}

// decodeMessageFieldStmt decodes one message field once its tag has
// matched in the AwaitTag/AwaitValue loop, assigning into the optional
// (pointer or slice) field.
func (c *goContext) decodeMessageFieldStmt(f schema.Field, zeroExpr string) string {
	assignTo := "m." + ToPascalCase(f.Name)
	if f.IsArray {
		return c.decodeArrayStmt(f.Type, assignTo, zeroExpr)
	}
	if f.Type.IsUserType() {
		if def := c.Schema.Definition(f.Type.DefIndex()); def.Kind == schema.KindMessage {
			// DecodeXxx already returns a pointer - assign it directly.
			return c.decodeValueStmt(f.Type, assignTo, zeroExpr)
		}
	}
	tmp := "tmp" + ToPascalCase(f.Name)
	goType := c.baseGoType(f.Type)
	inner := c.decodeValueStmt(f.Type, tmp, zeroExpr)
	return fmt.Sprintf(`{
	var %s %s
%s
	%s = &%s
}`, tmp, goType, inner, assignTo, tmp)
}

func init() {
	Register(NewGoGenerator())
}

const goTemplate = `// Code generated by the kiwi compiler. DO NOT EDIT.

package {{goPackage}}

import (
	"fmt"

	"github.com/kiwiproto/kiwi-go/pkg/wire"
)

{{range $def := definitions}}
{{if eq $def.Kind 0}}{{/* enum */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
type {{typeName $def}} int32

const (
{{- range $f := $def.Fields}}
	{{typeName $def}}{{fieldName $f}} {{typeName $def}} = {{$f.Value}}
{{- end}}
)

func (e {{typeName $def}}) String() string {
	switch e {
{{- range $f := $def.Fields}}
	case {{typeName $def}}{{fieldName $f}}:
		return "{{$f.Name}}"
{{- end}}
	default:
		return fmt.Sprintf("{{typeName $def}}(%d)", int32(e))
	}
}

// EncodeTo appends e's wire encoding to buf.
func (e {{typeName $def}}) EncodeTo(buf []byte) []byte {
	return wire.AppendUvarint(buf, uint32(e))
}

// Decode{{typeName $def}} decodes a {{typeName $def}} from the front of data.
func Decode{{typeName $def}}(data []byte) ({{typeName $def}}, int, error) {
	v, n, err := wire.DecodeUvarint(data)
	return {{typeName $def}}(v), n, err
}
{{end -}}
{{if eq $def.Kind 1}}{{/* struct */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
type {{typeName $def}} struct {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	{{fieldName $f}} {{fieldGoType $def $f}}{{jsonTag $def $f}}
{{- end}}
}

// EncodeTo appends m's wire encoding to buf, in field declaration order
// with no framing - struct layout is positional and frozen.
func (m {{typeName $def}}) EncodeTo(buf []byte) ([]byte, error) {
{{- range $f := $def.Fields}}
	{{encodeStructField $f}}
{{- end}}
	return buf, nil
}

// Encode returns m's wire encoding.
func (m {{typeName $def}}) Encode() ([]byte, error) {
	return m.EncodeTo(nil)
}

// Decode{{typeName $def}} decodes a {{typeName $def}} from the front of data.
func Decode{{typeName $def}}(data []byte) ({{typeName $def}}, int, error) {
	var m {{typeName $def}}
	total := 0
{{- range $f := $def.Fields}}
	{{decodeStructField $f (printf "%s{}" (typeName $def))}}
{{- end}}
	return m, total, nil
}
{{end -}}
{{if eq $def.Kind 2}}{{/* message */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
type {{typeName $def}} struct {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	{{fieldName $f}} {{fieldGoType $def $f}}{{jsonTag $def $f}}
{{- end}}
}

// EncodeTo appends m's wire encoding to buf: a field_id/value pair for
// every present field, in declaration order, terminated by the END marker.
func (m *{{typeName $def}}) EncodeTo(buf []byte) ([]byte, error) {
{{- range $f := $def.Fields}}
	{{encodeMessageField $f}}
{{- end}}
	buf = wire.AppendUvarint(buf, 0)
	return buf, nil
}

// Encode returns m's wire encoding.
func (m *{{typeName $def}}) Encode() ([]byte, error) {
	return m.EncodeTo(nil)
}

// Decode{{typeName $def}} decodes a {{typeName $def}} from the front of data.
// An unknown field ID is an error: unlike the dynamic codec, generated
// code carries no auxiliary schema to learn an unknown field's type from.
func Decode{{typeName $def}}(data []byte) (*{{typeName $def}}, int, error) {
	var m {{typeName $def}}
	total := 0
	for {
		id, n, err := wire.DecodeUvarint(data[total:])
		if err != nil {
			return nil, total, err
		}
		total += n
		if id == 0 {
			break
		}
		switch id {
{{- range $f := $def.Fields}}
		case {{$f.Value}}:
			{{decodeMessageField $f "nil"}}
{{- end}}
		default:
			return nil, total, fmt.Errorf("kiwi: {{typeName $def}}: unknown field id %d", id)
		}
	}
	return &m, total, nil
}
{{end -}}
{{end -}}
`
