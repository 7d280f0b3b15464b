package codegen

import (
	"fmt"
	"io"
	"text/template"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// TypeScriptGenerator emits TypeScript source from a Schema. Generated
// code calls only the kiwi runtime module's ByteWriter/ByteReader
// primitives - never anything tied to this module's dynamic Value tree or
// Schema model.
type TypeScriptGenerator struct{}

func NewTypeScriptGenerator() *TypeScriptGenerator { return &TypeScriptGenerator{} }

func (g *TypeScriptGenerator) Language() Language    { return LanguageTypeScript }
func (g *TypeScriptGenerator) FileExtension() string { return ".ts" }

func (g *TypeScriptGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &tsContext{Schema: s, Options: opts}
	tmpl, err := template.New("ts").Funcs(ctx.funcMap()).Parse(tsTemplate)
	if err != nil {
		return fmt.Errorf("codegen: parse typescript template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type tsContext struct {
	Schema  *schema.Schema
	Options Options
}

func (c *tsContext) definitions() []*schema.Definition {
	defs := make([]*schema.Definition, len(c.Schema.Definitions))
	for i := range c.Schema.Definitions {
		defs[i] = &c.Schema.Definitions[i]
	}
	return defs
}

func (c *tsContext) funcMap() template.FuncMap {
	return template.FuncMap{
		"definitions":        c.definitions,
		"typeName":           c.typeName,
		"fieldName":          func(f schema.Field) string { return ToCamelCase(f.Name) },
		"fieldType":          c.fieldType,
		"fieldOptional":      c.fieldOptional,
		"encodeStructField":  c.encodeStructFieldStmt,
		"decodeStructField":  c.decodeStructFieldStmt,
		"encodeMessageField": c.encodeMessageFieldStmt,
		"decodeMessageField": c.decodeMessageFieldStmt,
		"comment":            func(s string) string { return Comment(s, "//") },
		"generateComments":   func() bool { return c.Options.GenerateComments },
	}
}

func (c *tsContext) typeName(def *schema.Definition) string {
	return c.Options.TypePrefix + ToPascalCase(def.Name) + c.Options.TypeSuffix
}

func (c *tsContext) baseTSType(t schema.TypeCode) string {
	if t.IsUserType() {
		return c.typeName(c.Schema.Definition(t.DefIndex()))
	}
	switch t {
	case schema.TypeBool:
		return "boolean"
	case schema.TypeByte, schema.TypeInt, schema.TypeUint, schema.TypeFloat:
		return "number"
	case schema.TypeString:
		return "string"
	case schema.TypeInt64, schema.TypeUint64:
		return "bigint"
	default:
		return "unknown"
	}
}

// fieldType is the TypeScript type of a field, array-suffixed for repeated
// fields. Optionality is not part of the type: message fields are marked
// optional with "?" by fieldOptional, and struct fields stay required.
func (c *tsContext) fieldType(def *schema.Definition, f schema.Field) string {
	base := c.baseTSType(f.Type)
	if f.IsArray {
		return base + "[]"
	}
	return base
}

func (c *tsContext) fieldOptional(def *schema.Definition, f schema.Field) string {
	if def.Kind == schema.KindMessage {
		return "?"
	}
	return ""
}

func (c *tsContext) wireWrite(t schema.TypeCode, expr string) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		if def.Kind == schema.KindEnum {
			return fmt.Sprintf("writer.writeUvarint(%s);", expr)
		}
		return fmt.Sprintf("%s.encodeTo(writer);", expr)
	}
	switch t {
	case schema.TypeBool:
		return fmt.Sprintf("writer.writeBool(%s);", expr)
	case schema.TypeByte:
		return fmt.Sprintf("writer.writeByte(%s);", expr)
	case schema.TypeInt:
		return fmt.Sprintf("writer.writeSvarint(%s);", expr)
	case schema.TypeUint:
		return fmt.Sprintf("writer.writeUvarint(%s);", expr)
	case schema.TypeFloat:
		return fmt.Sprintf("writer.writeVarFloat(%s);", expr)
	case schema.TypeString:
		return fmt.Sprintf("writer.writeString(%s);", expr)
	case schema.TypeInt64:
		return fmt.Sprintf("writer.writeSvarint64(%s);", expr)
	case schema.TypeUint64:
		return fmt.Sprintf("writer.writeUvarint64(%s);", expr)
	default:
		return "// unreachable"
	}
}

func (c *tsContext) wireRead(t schema.TypeCode) string {
	if t.IsUserType() {
		def := c.Schema.Definition(t.DefIndex())
		if def.Kind == schema.KindEnum {
			return "reader.readUvarint()"
		}
		return fmt.Sprintf("%s.decodeFrom(reader)", c.typeName(def))
	}
	switch t {
	case schema.TypeBool:
		return "reader.readBool()"
	case schema.TypeByte:
		return "reader.readByte()"
	case schema.TypeInt:
		return "reader.readSvarint()"
	case schema.TypeUint:
		return "reader.readUvarint()"
	case schema.TypeFloat:
		return "reader.readVarFloat()"
	case schema.TypeString:
		return "reader.readString()"
	case schema.TypeInt64:
		return "reader.readSvarint64()"
	case schema.TypeUint64:
		return "reader.readUvarint64()"
	default:
		return "undefined"
	}
}

func (c *tsContext) encodeStructFieldStmt(f schema.Field) string {
	expr := "this." + ToCamelCase(f.Name)
	if f.IsArray {
		return fmt.Sprintf(`writer.writeUvarint(%s.length);
for (const item of %s) {
    %s
}`, expr, expr, c.wireWrite(f.Type, "item"))
	}
	return c.wireWrite(f.Type, expr)
}

func (c *tsContext) decodeStructFieldStmt(f schema.Field) string {
	name := ToCamelCase(f.Name)
	if f.IsArray {
		elem := c.baseTSType(f.Type)
		return fmt.Sprintf(`const %sLength = reader.readUvarint();
const %s: %s[] = [];
for (let i = 0; i < %sLength; i++) {
    %s.push(%s);
}`, name, name, elem, name, name, c.wireRead(f.Type))
	}
	return fmt.Sprintf("const %s = %s;", name, c.wireRead(f.Type))
}

// encodeMessageFieldStmt writes field f's tag and value only when present
// (not undefined, or a non-empty array for array fields).
func (c *tsContext) encodeMessageFieldStmt(f schema.Field) string {
	name := ToCamelCase(f.Name)
	if f.IsArray {
		return fmt.Sprintf(`if (this.%s !== undefined && this.%s.length > 0) {
    writer.writeUvarint(%d);
    writer.writeUvarint(this.%s.length);
    for (const item of this.%s) {
        %s
    }
}`, name, name, f.Value, name, name, c.wireWrite(f.Type, "item"))
	}
	return fmt.Sprintf(`if (this.%s !== undefined) {
    writer.writeUvarint(%d);
    %s
}`, name, f.Value, c.wireWrite(f.Type, "this."+name))
}

func (c *tsContext) decodeMessageFieldStmt(f schema.Field) string {
	name := ToCamelCase(f.Name)
	if f.IsArray {
		elem := c.baseTSType(f.Type)
		return fmt.Sprintf(`{
    const length = reader.readUvarint();
    const items: %s[] = [];
    for (let i = 0; i < length; i++) {
        items.push(%s);
    }
    msg.%s = items;
    break;
}`, elem, c.wireRead(f.Type), name)
	}
	return fmt.Sprintf(`msg.%s = %s;
    break;`, name, c.wireRead(f.Type))
}

func init() {
	Register(NewTypeScriptGenerator())
}

const tsTemplate = `// Code generated by the kiwi compiler. DO NOT EDIT.

import { ByteReader, ByteWriter } from "./kiwi-runtime";

{{range $def := definitions}}
{{if eq $def.Kind 0}}{{/* enum */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
export enum {{typeName $def}} {
{{- range $f := $def.Fields}}
	{{fieldName $f}} = {{$f.Value}},
{{- end}}
}

export function encode{{typeName $def}}(value: {{typeName $def}}, writer: ByteWriter): void {
	writer.writeUvarint(value as number);
}

export function decode{{typeName $def}}(reader: ByteReader): {{typeName $def}} {
	return reader.readUvarint() as {{typeName $def}};
}
{{end -}}
{{if eq $def.Kind 1}}{{/* struct */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
export class {{typeName $def}} {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	{{fieldName $f}}{{fieldOptional $def $f}}: {{fieldType $def $f}};
{{- end}}

	constructor(init: {
{{- range $f := $def.Fields}}
		{{fieldName $f}}: {{fieldType $def $f}};
{{- end}}
	}) {
{{- range $f := $def.Fields}}
		this.{{fieldName $f}} = init.{{fieldName $f}};
{{- end}}
	}

	encodeTo(writer: ByteWriter): void {
{{- range $f := $def.Fields}}
		{{encodeStructField $f}}
{{- end}}
	}

	static decodeFrom(reader: ByteReader): {{typeName $def}} {
{{- range $f := $def.Fields}}
		{{decodeStructField $f}}
{{- end}}
		return new {{typeName $def}}({
{{- range $f := $def.Fields}}
			{{fieldName $f}},
{{- end}}
		});
	}
}
{{end -}}
{{if eq $def.Kind 2}}{{/* message */ -}}
{{if generateComments}}{{range $def.Comments}}{{comment .}}
{{end}}{{end -}}
export class {{typeName $def}} {
{{- range $f := $def.Fields}}
{{- if generateComments}}{{range $f.Comments}}
	{{comment .}}{{end}}{{end}}
	{{fieldName $f}}{{fieldOptional $def $f}}: {{fieldType $def $f}};
{{- end}}

	encodeTo(writer: ByteWriter): void {
{{- range $f := $def.Fields}}
		{{encodeMessageField $f}}
{{- end}}
		writer.writeUvarint(0);
	}

	static decodeFrom(reader: ByteReader): {{typeName $def}} {
		const msg = new {{typeName $def}}();
		for (;;) {
			const id = reader.readUvarint();
			if (id === 0) {
				break;
			}
			switch (id) {
{{- range $f := $def.Fields}}
				case {{$f.Value}}: {
					{{decodeMessageField $f}}
				}
{{- end}}
				default:
					throw new Error("kiwi: {{typeName $def}}: unknown field id " + id);
			}
		}
		return msg;
	}
}
{{end -}}
{{end -}}
`
