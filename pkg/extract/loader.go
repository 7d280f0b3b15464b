// Package extract builds a Kiwi Schema by reflecting over annotated Go
// struct declarations - the reverse direction of pkg/codegen. A field's
// `kiwi:"N"` struct tag supplies its message field ID; a type's doc
// comment opts it into struct (positional, all-required) kind with a
// `@kiwi:struct` marker, and otherwise it is extracted as a message
// (all fields optional, wire-tagged).
package extract

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis via go/packages.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a PackageLoader configured to load enough
// information (types, type-checking info, syntax for doc comments) to
// extract a schema.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports |
				packages.NeedDeps,
		},
	}
}

// Load loads the packages matching patterns.
func (l *PackageLoader) Load(patterns []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("extract: load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("extract: package errors: %v", errs[0])
	}
	return pkgs, nil
}

// TypeInfo describes a Go type collected for extraction.
type TypeInfo struct {
	Name       string
	PkgPath    string
	Doc        string
	Fields     []*FieldInfo
	GoType     types.Type
	IsStruct   bool // doc carried the @kiwi:struct marker
	IsExported bool
}

// FieldInfo describes one field of a collected struct.
type FieldInfo struct {
	Name     string
	FieldNum uint32
	GoType   types.Type
	Repeated bool
}

// EnumInfo describes a Go integer type collected as a Kiwi enum.
type EnumInfo struct {
	Name    string
	PkgPath string
	Doc     string
	GoType  types.Type
	Values  []*EnumValueInfo
}

// EnumValueInfo describes one constant of a collected enum.
type EnumValueInfo struct {
	Name   string
	Number int64
}

// StructTag is a parsed `kiwi:"..."` struct tag.
type StructTag struct {
	FieldNum uint32
	Skip     bool
}

// extractDoc extracts documentation text from an AST comment group.
func extractDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return cg.Text()
}
