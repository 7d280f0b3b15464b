package extract

import (
	"go/ast"
	"go/types"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Config configures the type collector.
type Config struct {
	IncludePrivate  bool     // Include unexported types
	IncludePatterns []string // Type name glob patterns to include
	ExcludePatterns []string // Type name glob patterns to exclude
}

// DefaultConfig returns the collector's default configuration.
func DefaultConfig() *Config {
	return &Config{IncludePrivate: false}
}

// TypeCollector walks loaded packages collecting struct and enum types.
type TypeCollector struct {
	packages []*packages.Package
	config   *Config
	types    map[string]*TypeInfo
	enums    map[string]*EnumInfo
}

// NewTypeCollector creates a TypeCollector over pkgs.
func NewTypeCollector(pkgs []*packages.Package, cfg *Config) *TypeCollector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TypeCollector{
		packages: pkgs,
		config:   cfg,
		types:    make(map[string]*TypeInfo),
		enums:    make(map[string]*EnumInfo),
	}
}

// Collect analyzes every loaded package.
func (c *TypeCollector) Collect() error {
	for _, pkg := range c.packages {
		c.collectPackage(pkg)
	}
	return nil
}

// Types returns the collected struct types, keyed by qualified name.
func (c *TypeCollector) Types() map[string]*TypeInfo { return c.types }

// Enums returns the collected enum types, keyed by qualified name.
func (c *TypeCollector) Enums() map[string]*EnumInfo { return c.enums }

func (c *TypeCollector) collectPackage(pkg *packages.Package) {
	typeComments := make(map[string]string)
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := extractDoc(genDecl.Doc)
				if doc == "" {
					doc = extractDoc(typeSpec.Doc)
				}
				typeComments[typeSpec.Name.Name] = strings.TrimSpace(doc)
			}
		}
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}
		if !c.config.IncludePrivate && !obj.Exported() {
			continue
		}
		if !c.matchesPatterns(name) {
			continue
		}
		if typeName, ok := obj.(*types.TypeName); ok {
			c.collectType(typeName, pkg.PkgPath, typeComments[name])
		}
	}

	c.collectEnumValues(pkg)
}

func (c *TypeCollector) collectType(typeName *types.TypeName, pkgPath, doc string) {
	underlying := typeName.Type().Underlying()
	qualifiedName := pkgPath + "." + typeName.Name()

	switch t := underlying.(type) {
	case *types.Struct:
		info := &TypeInfo{
			Name:       typeName.Name(),
			PkgPath:    pkgPath,
			Doc:        doc,
			GoType:     typeName.Type(),
			IsStruct:   hasStructMarker(doc),
			IsExported: typeName.Exported(),
		}
		for i := 0; i < t.NumFields(); i++ {
			field := t.Field(i)
			if !c.config.IncludePrivate && !field.Exported() {
				continue
			}
			tag := c.parseTag(t.Tag(i), uint32(i+1))
			if tag.Skip {
				continue
			}
			info.Fields = append(info.Fields, &FieldInfo{
				Name:     field.Name(),
				FieldNum: tag.FieldNum,
				GoType:   field.Type(),
				Repeated: isSliceOrArray(field.Type()),
			})
		}
		c.types[qualifiedName] = info

	case *types.Basic:
		if t.Info()&types.IsInteger != 0 {
			c.enums[qualifiedName] = &EnumInfo{
				Name:    typeName.Name(),
				PkgPath: pkgPath,
				Doc:     doc,
				GoType:  typeName.Type(),
			}
		}
	}
}

func (c *TypeCollector) collectEnumValues(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		cnst, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}
		named, ok := cnst.Type().(*types.Named)
		if !ok || named.Obj().Pkg() == nil {
			continue
		}
		qualifiedName := named.Obj().Pkg().Path() + "." + named.Obj().Name()
		enumInfo, ok := c.enums[qualifiedName]
		if !ok {
			continue
		}
		if val, ok := constantToInt64(cnst); ok {
			enumInfo.Values = append(enumInfo.Values, &EnumValueInfo{Name: cnst.Name(), Number: val})
		}
	}
}

func constantToInt64(cnst *types.Const) (int64, bool) {
	if cnst.Val() == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(cnst.Val().String(), 10, 64)
	return n, err == nil
}

// parseTag parses a `kiwi:"N"` struct tag; defaultNum is the field's
// position (1-based) used when no explicit field number is given.
func (c *TypeCollector) parseTag(tag string, defaultNum uint32) *StructTag {
	st := &StructTag{FieldNum: defaultNum}
	kiwiTag := reflect.StructTag(tag).Get("kiwi")
	if kiwiTag == "-" {
		st.Skip = true
		return st
	}
	if kiwiTag != "" {
		if num, err := strconv.ParseUint(kiwiTag, 10, 32); err == nil && num > 0 {
			st.FieldNum = uint32(num)
		}
	}
	return st
}

// kiwiStructMarker matches the @kiwi:struct doc-comment annotation that
// opts a Go struct into Kiwi struct (positional, all-required) kind
// instead of the message (wire-tagged, all-optional) default.
var kiwiStructMarker = regexp.MustCompile(`@kiwi:struct\b`)

func hasStructMarker(doc string) bool {
	return kiwiStructMarker.MatchString(doc)
}

func (c *TypeCollector) matchesPatterns(name string) bool {
	if len(c.config.IncludePatterns) == 0 {
		for _, p := range c.config.ExcludePatterns {
			if matchGlob(p, name) {
				return false
			}
		}
		return true
	}
	matched := false
	for _, p := range c.config.IncludePatterns {
		if matchGlob(p, name) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, p := range c.config.ExcludePatterns {
		if matchGlob(p, name) {
			return false
		}
	}
	return true
}

func matchGlob(pattern, name string) bool {
	regexPattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, `.*`) + "$"
	matched, _ := regexp.MatchString(regexPattern, name)
	return matched
}

func isSliceOrArray(t types.Type) bool {
	switch t.(type) {
	case *types.Slice, *types.Array:
		return true
	default:
		return false
	}
}
