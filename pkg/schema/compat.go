package schema

import "fmt"

// BreakingChangeKind classifies a single incompatible schema change.
type BreakingChangeKind int

const (
	DefinitionRemoved BreakingChangeKind = iota
	DefinitionKindChanged
	MessageFieldTypeChanged
	MessageFieldIDReused
	StructFieldsChanged // any field add/remove/reorder/retype in a struct
	EnumDiscriminantReused
	EnumMemberRemoved
)

func (k BreakingChangeKind) String() string {
	switch k {
	case DefinitionRemoved:
		return "definition removed"
	case DefinitionKindChanged:
		return "definition kind changed"
	case MessageFieldTypeChanged:
		return "message field type changed"
	case MessageFieldIDReused:
		return "message field ID reused"
	case StructFieldsChanged:
		return "struct layout changed"
	case EnumDiscriminantReused:
		return "enum discriminant reused"
	case EnumMemberRemoved:
		return "enum member removed"
	default:
		return "unknown breaking change"
	}
}

// BreakingChange is one incompatibility found by CheckCompatibility.
type BreakingChange struct {
	Kind     BreakingChangeKind
	Message  string
	Location string
}

func (b BreakingChange) Error() string {
	if b.Location != "" {
		return fmt.Sprintf("%s: %s (%s)", b.Kind, b.Message, b.Location)
	}
	return fmt.Sprintf("%s: %s", b.Kind, b.Message)
}

// CompatibilityReport holds everything CheckCompatibility found between an
// old and new version of a schema.
type CompatibilityReport struct {
	Breaking []BreakingChange
	Warnings []string
}

// IsCompatible reports whether new can decode data written against old
// (forward compatibility) and old can decode data written against new
// (backward compatibility) without a breaking change.
func (r *CompatibilityReport) IsCompatible() bool {
	return len(r.Breaking) == 0
}

// CheckCompatibility compares two versions of a schema. old is the
// currently deployed schema, new is the proposed replacement.
//
// Message definitions tolerate adding or removing fields (readers who
// don't know a field skip it; see Decoder's unknown-field handling) and
// only flag a reused field ID with a different type, since that is the
// one change an old or new reader cannot tell apart on the wire.
//
// Struct definitions have no such slack: a struct is a frameless,
// positional encoding, so ANY change to its field list - an add, a
// remove, a reorder, or a retype - shifts every subsequent field's
// position and is breaking.
func CheckCompatibility(oldSchema, newSchema *Schema) *CompatibilityReport {
	report := &CompatibilityReport{}

	oldByName := make(map[string]*Definition, len(oldSchema.Definitions))
	for i := range oldSchema.Definitions {
		oldByName[oldSchema.Definitions[i].Name] = &oldSchema.Definitions[i]
	}
	newByName := make(map[string]*Definition, len(newSchema.Definitions))
	for i := range newSchema.Definitions {
		newByName[newSchema.Definitions[i].Name] = &newSchema.Definitions[i]
	}

	for name, oldDef := range oldByName {
		newDef, ok := newByName[name]
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Kind:     DefinitionRemoved,
				Message:  fmt.Sprintf("%s %q was removed", oldDef.Kind, name),
				Location: name,
			})
			continue
		}
		if newDef.Kind != oldDef.Kind {
			report.Breaking = append(report.Breaking, BreakingChange{
				Kind:     DefinitionKindChanged,
				Message:  fmt.Sprintf("%q changed from %s to %s", name, oldDef.Kind, newDef.Kind),
				Location: name,
			})
			continue
		}
		switch oldDef.Kind {
		case KindEnum:
			checkEnumCompat(oldDef, newDef, report)
		case KindStruct:
			checkStructCompat(oldDef, newDef, report)
		case KindMessage:
			checkMessageCompat(oldDef, newDef, report)
		}
	}

	for name := range newByName {
		if _, existed := oldByName[name]; !existed {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s %q was added", newByName[name].Kind, name))
		}
	}

	return report
}

func checkMessageCompat(oldDef, newDef *Definition, report *CompatibilityReport) {
	oldByID := make(map[uint32]*Field, len(oldDef.Fields))
	for i := range oldDef.Fields {
		oldByID[oldDef.Fields[i].Value] = &oldDef.Fields[i]
	}
	newByID := make(map[uint32]*Field, len(newDef.Fields))
	for i := range newDef.Fields {
		newByID[newDef.Fields[i].Value] = &newDef.Fields[i]
	}

	for id, oldF := range oldByID {
		newF, ok := newByID[id]
		if !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s.%s (id %d) was removed", oldDef.Name, oldF.Name, id))
			continue
		}
		if oldF.Type != newF.Type || oldF.IsArray != newF.IsArray {
			report.Breaking = append(report.Breaking, BreakingChange{
				Kind:     MessageFieldTypeChanged,
				Message:  fmt.Sprintf("field id %d retyped", id),
				Location: fmt.Sprintf("%s.%s", oldDef.Name, oldF.Name),
			})
		}
		if oldF.Name != newF.Name {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: field id %d renamed from %q to %q", oldDef.Name, id, oldF.Name, newF.Name))
		}
	}

	for id, newF := range newByID {
		if _, existed := oldByID[id]; !existed {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s.%s (id %d) was added", newDef.Name, newF.Name, id))
		}
	}
}

func checkStructCompat(oldDef, newDef *Definition, report *CompatibilityReport) {
	same := len(oldDef.Fields) == len(newDef.Fields)
	if same {
		for i := range oldDef.Fields {
			if oldDef.Fields[i].Type != newDef.Fields[i].Type || oldDef.Fields[i].IsArray != newDef.Fields[i].IsArray {
				same = false
				break
			}
		}
	}
	if !same {
		report.Breaking = append(report.Breaking, BreakingChange{
			Kind:     StructFieldsChanged,
			Message:  fmt.Sprintf("struct %q's field layout changed", oldDef.Name),
			Location: oldDef.Name,
		})
	}
}

func checkEnumCompat(oldDef, newDef *Definition, report *CompatibilityReport) {
	oldByValue := make(map[uint32]string, len(oldDef.Fields))
	for _, f := range oldDef.Fields {
		oldByValue[f.Value] = f.Name
	}
	newByValue := make(map[uint32]string, len(newDef.Fields))
	for _, f := range newDef.Fields {
		newByValue[f.Value] = f.Name
	}

	for val, oldName := range oldByValue {
		newName, ok := newByValue[val]
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Kind:     EnumMemberRemoved,
				Message:  fmt.Sprintf("enum member %q (%d) was removed", oldName, val),
				Location: fmt.Sprintf("%s.%s", oldDef.Name, oldName),
			})
			continue
		}
		if newName != oldName {
			report.Breaking = append(report.Breaking, BreakingChange{
				Kind:     EnumDiscriminantReused,
				Message:  fmt.Sprintf("discriminant %d renamed from %q to %q", val, oldName, newName),
				Location: fmt.Sprintf("%s.%s", oldDef.Name, oldName),
			})
		}
	}
}
