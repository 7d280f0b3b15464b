package codegen

import (
	"fmt"
	"io"
	"text/template"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// RustGenerator emits Rust source from a Schema. Generated code calls only
// the kiwi runtime crate's Writer/Reader primitives - never anything tied
// to this module's dynamic Value tree or Schema model.
type RustGenerator struct{}

func NewRustGenerator() *RustGenerator { return &RustGenerator{} }

func (g *RustGenerator) Language() Language    { return LanguageRust }
func (g *RustGenerator) FileExtension() string { return ".rs" }

func (g *RustGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &rustContext{Schema: s, Options: opts}
	tmpl, err := template.New("rust").Funcs(ctx.funcMap()).Parse(rustTemplate)
	if err != nil {
		return fmt.Errorf("codegen: parse rust template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type rustContext struct {
	Schema  *schema.Schema
	Options Options
}

func (c *rustContext) definitions() []*schema.Definition {
	defs := make([]*schema.Definition, len(c.Schema.Definitions))
	for i := range c.Schema.Definitions {
		defs[i] = &c.Schema.Definitions[i]
	}
	return defs
}

func (c *rustContext) funcMap() template.FuncMap {
	return template.FuncMap{
		"definitions":         c.definitions,
		"typeName":            c.typeName,
		"fieldName":           func(f schema.Field) string { return ToSnakeCase(f.Name) },
		"variantName":         func(f schema.Field) string { return ToPascalCase(f.Name) },
		"fieldType":           c.fieldType,
		"encodeStructField":   c.encodeStructFieldStmt,
		"decodeStructField":   c.decodeStructFieldStmt,
		"encodeMessageField":  c.encodeMessageFieldStmt,
		"decodeMessageField":  c.decodeMessageFieldStmt,
		"comment":             func(s string) string { return Comment(s, "///") },
		"generateComments":    func() bool { return c.Options.GenerateComments },
		"hasSerde":            func() bool { return c.Options.GenerateJSON },
	}
}

func (c *rustContext) typeName(def *schema.Definition) string {
	return c.Options.TypePrefix + ToPascalCase(def.Name) + c.Options.TypeSuffix
}

func (c *rustContext) baseRustType(t schema.TypeCode) string {
	if t.IsUserType() {
		return c.typeName(c.Schema.Definition(t.DefIndex()))
	}
	switch t {
	case schema.TypeBool:
		return "bool"
	case schema.TypeByte:
		return "u8"
	case schema.TypeInt:
		return "i32"
	case schema.TypeUint:
		return "u32"
	case schema.TypeFloat:
		return "f32"
	case schema.TypeString:
		return "String"
	case schema.TypeInt64:
		return "i64"
	case schema.TypeUint64:
		return "u64"
	default:
		return "()"
	}
}

// fieldType is the Rust type of a field: struct fields are required, so
// they use the base type (array-wrapped in Vec<T> if repeated); message
// fields are all optional, so non-array fields are additionally wrapped in
// Option<T>.
func (c *rustContext) fieldType(def *schema.Definition, f schema.Field) string {
	base := c.baseRustType(f.Type)
	if f.IsArray {
		return "Vec<" + base + ">"
	}
	if def.Kind == schema.KindMessage {
		return "Option<" + base + ">"
	}
	return base
}

func (c *rustContext) wireWrite(t schema.TypeCode, expr string) string {
	if t.IsUserType() {
		return fmt.Sprintf("%s.encode_to(writer)?;", expr)
	}
	switch t {
	case schema.TypeBool:
		return fmt.Sprintf("writer.write_bool(%s)?;", expr)
	case schema.TypeByte:
		return fmt.Sprintf("writer.write_byte(%s)?;", expr)
	case schema.TypeInt:
		return fmt.Sprintf("writer.write_svarint(%s)?;", expr)
	case schema.TypeUint:
		return fmt.Sprintf("writer.write_uvarint(%s)?;", expr)
	case schema.TypeFloat:
		return fmt.Sprintf("writer.write_var_float(%s)?;", expr)
	case schema.TypeString:
		return fmt.Sprintf("writer.write_string(%s)?;", expr)
	case schema.TypeInt64:
		return fmt.Sprintf("writer.write_svarint64(%s)?;", expr)
	case schema.TypeUint64:
		return fmt.Sprintf("writer.write_uvarint64(%s)?;", expr)
	default:
		return "// unreachable"
	}
}

func (c *rustContext) wireRead(t schema.TypeCode) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		return fmt.Sprintf("%s::decode_from(reader)?", c.typeName(def))
	}
	switch t {
	case schema.TypeBool:
		return "reader.read_bool()?"
	case schema.TypeByte:
		return "reader.read_byte()?"
	case schema.TypeInt:
		return "reader.read_svarint()?"
	case schema.TypeUint:
		return "reader.read_uvarint()?"
	case schema.TypeFloat:
		return "reader.read_var_float()?"
	case schema.TypeString:
		return "reader.read_string()?"
	case schema.TypeInt64:
		return "reader.read_svarint64()?"
	case schema.TypeUint64:
		return "reader.read_uvarint64()?"
	default:
		return "unreachable!()"
	}
}

func (c *rustContext) encodeStructFieldStmt(f schema.Field) string {
	expr := "self." + ToSnakeCase(f.Name)
	if f.IsArray {
		return fmt.Sprintf(`writer.write_uvarint(%s.len() as u32)?;
for item in &%s {
    %s
}`, expr, expr, c.wireWrite(f.Type, "item"))
	}
	return c.wireWrite(f.Type, "&"+expr)
}

func (c *rustContext) decodeStructFieldStmt(f schema.Field) string {
	name := ToSnakeCase(f.Name)
	if f.IsArray {
		return fmt.Sprintf(`let %s_len = reader.read_uvarint()?;
let mut %s = Vec::with_capacity(%s_len as usize);
for _ in 0..%s_len {
    %s.push(%s);
}`, name, name, name, name, name, c.wireRead(f.Type))
	}
	return fmt.Sprintf("let %s = %s;", name, c.wireRead(f.Type))
}

// encodeMessageFieldStmt writes field f's tag and value only when present
// (Some(_), or a non-empty Vec for array fields).
func (c *rustContext) encodeMessageFieldStmt(f schema.Field) string {
	name := ToSnakeCase(f.Name)
	if f.IsArray {
		return fmt.Sprintf(`if !self.%s.is_empty() {
    writer.write_uvarint(%d)?;
    writer.write_uvarint(self.%s.len() as u32)?;
    for item in &self.%s {
        %s
    }
}`, name, f.Value, name, name, c.wireWrite(f.Type, "item"))
	}
	return fmt.Sprintf(`if let Some(ref value) = self.%s {
    writer.write_uvarint(%d)?;
    %s
}`, name, f.Value, c.wireWrite(f.Type, "value"))
}

func (c *rustContext) decodeMessageFieldStmt(f schema.Field) string {
	name := ToSnakeCase(f.Name)
	if f.IsArray {
		elem := c.baseRustType(f.Type)
		return fmt.Sprintf(`{
    let len = reader.read_uvarint()?;
    let mut items: Vec<%s> = Vec::with_capacity(len as usize);
    for _ in 0..len {
        items.push(%s);
    }
    msg.%s = items;
}`, elem, c.wireRead(f.Type), name)
	}
	return fmt.Sprintf("msg.%s = Some(%s);", name, c.wireRead(f.Type))
}

func init() {
	Register(NewRustGenerator())
}

const rustTemplate = `// Code generated by the kiwi compiler. DO NOT EDIT.
#![allow(dead_code)]

use kiwi::{DecodeError, Reader, Writer};
{{if hasSerde}}use serde::{Deserialize, Serialize};
{{end}}
{{range $def := definitions}}
{{if eq $def.Kind 0}}{{/* enum */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
{{if hasSerde}}#[derive(Serialize, Deserialize)]
{{end -}}
#[derive(Debug, Clone, Copy, PartialEq, Eq)]
pub enum {{typeName $def}} {
{{- range $f := $def.Fields}}
	{{variantName $f}} = {{$f.Value}},
{{- end}}
}

impl {{typeName $def}} {
	pub fn encode_to(&self, writer: &mut Writer) -> Result<(), DecodeError> {
		writer.write_uvarint(*self as u32)
	}

	pub fn decode_from(reader: &mut Reader) -> Result<Self, DecodeError> {
		let v = reader.read_uvarint()?;
		match v {
{{- range $f := $def.Fields}}
			{{$f.Value}} => Ok({{typeName $def}}::{{variantName $f}}),
{{- end}}
			other => Err(DecodeError::UnknownEnumVariant(other)),
		}
	}
}
{{end -}}
{{if eq $def.Kind 1}}{{/* struct */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
{{if hasSerde}}#[derive(Serialize, Deserialize)]
{{end -}}
#[derive(Debug, Clone, PartialEq)]
pub struct {{typeName $def}} {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	pub {{fieldName $f}}: {{fieldType $def $f}},
{{- end}}
}

impl {{typeName $def}} {
	pub fn encode_to(&self, writer: &mut Writer) -> Result<(), DecodeError> {
{{- range $f := $def.Fields}}
		{{encodeStructField $f}}
{{- end}}
		Ok(())
	}

	pub fn decode_from(reader: &mut Reader) -> Result<Self, DecodeError> {
{{- range $f := $def.Fields}}
		{{decodeStructField $f}}
{{- end}}
		Ok({{typeName $def}} {
{{- range $f := $def.Fields}}
			{{fieldName $f}},
{{- end}}
		})
	}
}
{{end -}}
{{if eq $def.Kind 2}}{{/* message */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
{{if hasSerde}}#[derive(Serialize, Deserialize)]
{{end -}}
#[derive(Debug, Clone, Default, PartialEq)]
pub struct {{typeName $def}} {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	pub {{fieldName $f}}: {{fieldType $def $f}},
{{- end}}
}

impl {{typeName $def}} {
	pub fn encode_to(&self, writer: &mut Writer) -> Result<(), DecodeError> {
{{- range $f := $def.Fields}}
		{{encodeMessageField $f}}
{{- end}}
		writer.write_uvarint(0)?;
		Ok(())
	}

	pub fn decode_from(reader: &mut Reader) -> Result<Self, DecodeError> {
		let mut msg = {{typeName $def}}::default();
		loop {
			let id = reader.read_uvarint()?;
			if id == 0 {
				break;
			}
			match id {
{{- range $f := $def.Fields}}
				{{$f.Value}} => {
					{{decodeMessageField $f}}
				}
{{- end}}
				other => return Err(DecodeError::UnknownField(other)),
			}
		}
		Ok(msg)
	}
}
{{end -}}
{{end -}}
`
