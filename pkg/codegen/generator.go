// Package codegen emits target-language data-model and codec bindings from
// a Kiwi Schema. Generated code depends only on pkg/wire's ByteBuffer
// primitives (or the target language's equivalent) at runtime - never on
// the dynamic Value tree or the Schema model itself.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// Language identifies a code generation target.
type Language string

const (
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguageTypeScript Language = "typescript"
)

// Generator produces target-language source for a Schema.
type Generator interface {
	// Generate writes generated source for s to w.
	Generate(w io.Writer, s *schema.Schema, options Options) error

	// Language returns the target language.
	Language() Language

	// FileExtension returns the conventional file extension for generated
	// output (including the leading dot).
	FileExtension() string
}

// Options configures code generation. Ordering of definitions in the
// output always follows schema order, for determinism; that is not
// configurable.
type Options struct {
	// Package names the output Go package; the Go generator falls back to
	// "generated" if empty. The Rust and TypeScript generators do not use it.
	Package string

	// GenerateJSON additionally emits JSON (de)serialization support for
	// the generated types, alongside the Kiwi binary codec: json struct tags
	// in Go, serde derives in Rust. The TypeScript generator does not use it.
	GenerateJSON bool

	// GenerateComments copies schema doc comments into the generated source.
	GenerateComments bool

	// TypePrefix/TypeSuffix are prepended/appended to every generated type name.
	TypePrefix string
	TypeSuffix string
}

// DefaultOptions returns the default code generation options.
func DefaultOptions() Options {
	return Options{
		GenerateJSON:     true,
		GenerateComments: true,
	}
}

var registry = make(map[Language]Generator)

// Register makes gen available via Get/Languages.
func Register(gen Generator) {
	registry[gen.Language()] = gen
}

// Get returns the generator registered for lang, if any.
func Get(lang Language) (Generator, bool) {
	gen, ok := registry[lang]
	return gen, ok
}

// Languages returns every registered target language.
func Languages() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	return langs
}

// titleCaser backs ToPascalCase; golang.org/x/text/cases is Unicode-aware
// in a way strings.Title (deprecated) is not.
var titleCaser = cases.Title(language.English)

// ToPascalCase converts a schema identifier to PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts a schema identifier to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToSnakeCase converts a schema identifier to snake_case.
func ToSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

// ToUpperSnakeCase converts a schema identifier to UPPER_SNAKE_CASE.
func ToUpperSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return strings.Join(parts, "_")
}

// ToKebabCase converts a schema identifier to kebab-case.
func ToKebabCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "-")
}

func splitName(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// Indent indents every non-empty line of s by the given number of tabs.
func Indent(s string, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// Comment wraps text as a comment with the given line prefix.
func Comment(text, prefix string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + " " + line
	}
	return strings.Join(lines, "\n")
}

// GoComment wraps text as a Go doc comment.
func GoComment(text string) string { return Comment(text, "//") }

// GeneratorError reports a code generation failure tied to a schema position.
type GeneratorError struct {
	Message  string
	Position schema.Position
}

func (e *GeneratorError) Error() string {
	if e.Position.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Position, e.Message)
	}
	return e.Message
}
