package schema

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads, parses, and validates the .kiwi schema at path. It
// returns the schema (possibly partially populated) alongside every parse
// and validation error found; a non-empty error slice should be treated as
// a hard failure by callers. Kiwi schemas are single files with no import
// directive, so unlike a multi-file IDL loader there is no search path or
// import-cycle bookkeeping here.
func LoadFile(path string) (*Schema, []error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading %s: %w", path, err)}
	}
	return LoadString(path, string(content))
}

// LoadString parses and validates schema source already in memory, using
// filename only to annotate error positions.
func LoadString(filename, source string) (*Schema, []error) {
	schema, parseErrors := ParseFile(filename, source)
	var errs []error
	for _, e := range parseErrors {
		errs = append(errs, e)
	}
	if len(parseErrors) > 0 {
		return schema, errs
	}

	for _, e := range Validate(schema) {
		if e.Severity == SeverityError {
			errs = append(errs, e)
		}
	}
	return schema, errs
}

// Writer renders a Schema back to .kiwi source text.
type Writer struct {
	indent string
}

// NewWriter creates a Writer using two-space indentation.
func NewWriter() *Writer {
	return &Writer{indent: "  "}
}

// SetIndent overrides the default two-space indentation.
func (w *Writer) SetIndent(indent string) {
	w.indent = indent
}

// WriteSchema writes every definition in schema to out, in order.
func (w *Writer) WriteSchema(out io.Writer, schema *Schema) error {
	for i, def := range schema.Definitions {
		w.writeDefinition(out, schema, &def)
		if i < len(schema.Definitions)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}

func (w *Writer) writeDefinition(out io.Writer, schema *Schema, def *Definition) {
	for _, c := range def.Comments {
		fmt.Fprintf(out, "// %s\n", c)
	}
	fmt.Fprintf(out, "%s %s {\n", def.Kind, def.Name)
	for _, f := range def.Fields {
		w.writeField(out, schema, def, &f)
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeField(out io.Writer, schema *Schema, def *Definition, f *Field) {
	for _, c := range f.Comments {
		fmt.Fprintf(out, "%s// %s\n", w.indent, c)
	}
	if def.Kind == KindEnum {
		fmt.Fprintf(out, "%s%s = %d;\n", w.indent, f.Name, f.Value)
		return
	}
	// A schema straight out of the parser still carries unresolved type
	// names; render those as written rather than through the def index.
	typeStr := f.UnresolvedType
	if typeStr == "" {
		typeStr = f.Type.String(schema)
	}
	if f.IsArray {
		typeStr += "[]"
	}
	if def.Kind == KindMessage {
		fmt.Fprintf(out, "%s%s %s = %d;\n", w.indent, typeStr, f.Name, f.Value)
	} else {
		fmt.Fprintf(out, "%s%s %s;\n", w.indent, typeStr, f.Name)
	}
}

// FormatSchema renders schema as .kiwi source text.
func FormatSchema(schema *Schema) string {
	var sb strings.Builder
	w := NewWriter()
	_ = w.WriteSchema(&sb, schema) // strings.Builder never errors
	return sb.String()
}

// WriteToFile renders schema as .kiwi source and writes it to path.
func WriteToFile(path string, schema *Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return NewWriter().WriteSchema(f, schema)
}
