package schema

import (
	"fmt"
	"sort"
)

// Severity indicates whether a ValidationError blocks code generation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ValidationError is a single schema-validity issue.
type ValidationError struct {
	Position Position
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Position, e.Severity, e.Message)
}

// Validator checks a parsed Schema against Kiwi's structural rules: unique
// definition and field names, positive and unique message field IDs,
// unique enum discriminants, resolvable type references, and an acyclic
// struct graph (a struct that contains itself, directly or transitively,
// has no finite frameless encoding).
type Validator struct {
	schema *Schema
	errors []ValidationError
}

// NewValidator creates a Validator for schema.
func NewValidator(schema *Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate is a convenience wrapper around NewValidator(schema).Validate().
func Validate(schema *Schema) []ValidationError {
	return NewValidator(schema).Validate()
}

// Validate runs all checks and returns every issue found, sorted by
// source position.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil

	v.checkDuplicateNames()
	v.resolveFieldTypes()

	for i := range v.schema.Definitions {
		def := &v.schema.Definitions[i]
		switch def.Kind {
		case KindEnum:
			v.validateEnum(def)
		case KindStruct:
			v.validateStructOrMessage(def)
		case KindMessage:
			v.validateStructOrMessage(def)
		}
	}

	v.checkStructCycles()

	sort.SliceStable(v.errors, func(i, j int) bool {
		a, b := v.errors[i].Position, v.errors[j].Position
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	return v.errors
}

// HasErrors reports whether Validate found any error-severity issue.
func (v *Validator) HasErrors() bool {
	for _, e := range v.errors {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues from the last Validate.
func (v *Validator) Errors() []ValidationError {
	var out []ValidationError
	for _, e := range v.errors {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues from the last Validate.
func (v *Validator) Warnings() []ValidationError {
	var out []ValidationError
	for _, e := range v.errors {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

func (v *Validator) checkDuplicateNames() {
	seen := make(map[string]Position)
	for _, def := range v.schema.Definitions {
		if prior, ok := seen[def.Name]; ok {
			v.addError(def.Position, "duplicate definition name %q (previously defined at %s)", def.Name, prior)
			continue
		}
		seen[def.Name] = def.Position
	}
}

// resolveFieldTypes replaces each field's UnresolvedType name with the
// matching definition's TypeCode, or reports an unknown-type error.
func (v *Validator) resolveFieldTypes() {
	for i := range v.schema.Definitions {
		def := &v.schema.Definitions[i]
		if def.Kind == KindEnum {
			continue
		}
		for j := range def.Fields {
			f := &def.Fields[j]
			if f.UnresolvedType == "" {
				continue
			}
			idx := v.schema.DefIndex(f.UnresolvedType)
			if idx < 0 {
				v.addError(f.Position, "undefined type %q in field %s.%s", f.UnresolvedType, def.Name, f.Name)
				continue
			}
			f.Type = UserType(idx)
			f.UnresolvedType = ""
		}
	}
}

func (v *Validator) validateEnum(def *Definition) {
	names := make(map[string]bool)
	values := make(map[uint32]string)

	for _, f := range def.Fields {
		if names[f.Name] {
			v.addError(f.Position, "duplicate enum member name %q in %q", f.Name, def.Name)
		}
		names[f.Name] = true

		if existing, ok := values[f.Value]; ok {
			v.addError(f.Position, "duplicate enum discriminant %d in %q (also used by %q)", f.Value, def.Name, existing)
		} else {
			values[f.Value] = f.Name
		}
	}
}

func (v *Validator) validateStructOrMessage(def *Definition) {
	names := make(map[string]bool)
	ids := make(map[uint32]string)

	for _, f := range def.Fields {
		if names[f.Name] {
			v.addError(f.Position, "duplicate field name %q in %q", f.Name, def.Name)
		}
		names[f.Name] = true

		if def.Kind == KindMessage {
			if f.Value == 0 {
				v.addError(f.Position, "message field %q.%s must have an ID >= 1 (0 is reserved for END)", def.Name, f.Name)
			}
			if existing, ok := ids[f.Value]; ok {
				v.addError(f.Position, "duplicate field ID %d in %q (also used by %q)", f.Value, def.Name, existing)
			} else {
				ids[f.Value] = f.Name
			}
		}

		if f.Type.IsUserType() {
			target := v.schema.Definition(f.Type.DefIndex())
			if target != nil && target.Kind == KindMessage && def.Kind == KindStruct {
				v.addError(f.Position, "struct field %q.%s cannot reference message %q (structs may only nest other structs or enums)", def.Name, f.Name, target.Name)
			}
		}
	}
}

// checkStructCycles reports struct reference cycles: a struct that contains
// itself, directly or through a chain of other structs. Each cycle is
// reported once, on the struct whose field leads back into the chain being
// walked; the other structs in the cycle get no error of their own. Kiwi
// structs are frameless and positional: a cycle would require infinite wire
// bytes to encode.
func (v *Validator) checkStructCycles() {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]int, len(v.schema.Definitions))

	var visit func(i int, chain []string) bool
	visit = func(i int, chain []string) bool {
		if state[i] == done {
			return false
		}
		if state[i] == visiting {
			return true
		}
		state[i] = visiting
		def := &v.schema.Definitions[i]
		for _, f := range def.Fields {
			if !f.Type.IsUserType() || f.IsArray {
				// An array field is length-prefixed, so an array of the
				// enclosing struct is still finitely encodable; only
				// by-value containment is unbounded.
				continue
			}
			target := v.schema.Definition(f.Type.DefIndex())
			if target == nil || target.Kind != KindStruct {
				continue
			}
			if visit(f.Type.DefIndex(), append(chain, def.Name)) {
				if state[i] != done {
					v.addError(def.Position, "struct %q is part of a reference cycle (via field %q)", def.Name, f.Name)
				}
				state[i] = done
				return false
			}
		}
		state[i] = done
		return false
	}

	for i, def := range v.schema.Definitions {
		if def.Kind == KindStruct && state[i] == unvisited {
			visit(i, nil)
		}
	}
}

func (v *Validator) addError(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

