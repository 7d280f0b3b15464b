package extract

import (
	"go/types"
	"strings"
	"testing"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ID", "id"},
		{"UserName", "user_name"},
		{"FirstName", "first_name"},
		{"HTTPRequest", "http_request"},
		{"HTTPServer", "http_server"},
		{"XMLParser", "xml_parser"},
		{"simple", "simple"},
		{"userID", "user_id"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := toSnakeCase(tt.input)
			if result != tt.expected {
				t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"User*", "User", true},
		{"User*", "UserInfo", true},
		{"User*", "Admin", false},
		{"*Info", "UserInfo", true},
		{"*Info", "User", false},
		{"*", "Anything", true},
		{"User", "User", true},
		{"User", "Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			result := matchGlob(tt.pattern, tt.name)
			if result != tt.expected {
				t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, result, tt.expected)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	c := NewTypeCollector(nil, nil)

	tag := c.parseTag(`kiwi:"7"`, 3)
	if tag.Skip || tag.FieldNum != 7 {
		t.Errorf("parseTag(kiwi:\"7\") = %+v, want FieldNum 7", tag)
	}

	tag = c.parseTag(`kiwi:"-"`, 3)
	if !tag.Skip {
		t.Errorf("parseTag(kiwi:\"-\") should skip")
	}

	tag = c.parseTag(``, 3)
	if tag.Skip || tag.FieldNum != 3 {
		t.Errorf("parseTag(no tag) = %+v, want positional FieldNum 3", tag)
	}
}

func TestHasStructMarker(t *testing.T) {
	if !hasStructMarker("Color is a packed RGBA color.\n\n@kiwi:struct") {
		t.Error("doc with @kiwi:struct marker not detected")
	}
	if hasStructMarker("Profile describes one user account.") {
		t.Error("doc without marker detected as struct")
	}
	if hasStructMarker("mentions @kiwi:structure in passing") {
		t.Error("marker must match on a word boundary")
	}
}

func TestBasicTypeMapping(t *testing.T) {
	b := NewSchemaBuilder(nil, nil)

	tests := []struct {
		kind types.BasicKind
		want schema.TypeCode
	}{
		{types.Bool, schema.TypeBool},
		{types.Uint8, schema.TypeByte},
		{types.Int32, schema.TypeInt},
		{types.Uint32, schema.TypeUint},
		{types.Float32, schema.TypeFloat},
		{types.String, schema.TypeString},
		{types.Int64, schema.TypeInt64},
		{types.Uint64, schema.TypeUint64},
	}
	for _, tt := range tests {
		code, isArray, err := b.goTypeToCode(types.Typ[tt.kind])
		if err != nil {
			t.Errorf("goTypeToCode(%v): %v", tt.kind, err)
			continue
		}
		if isArray || code != tt.want {
			t.Errorf("goTypeToCode(%v) = (%d, %v), want (%d, false)", tt.kind, code, isArray, tt.want)
		}
	}
}

func TestSliceTypeMapping(t *testing.T) {
	b := NewSchemaBuilder(nil, nil)

	code, isArray, err := b.goTypeToCode(types.NewSlice(types.Typ[types.String]))
	if err != nil {
		t.Fatal(err)
	}
	if !isArray || code != schema.TypeString {
		t.Errorf("[]string = (%d, %v), want (TypeString, true)", code, isArray)
	}

	nested := types.NewSlice(types.NewSlice(types.Typ[types.Int32]))
	if _, _, err := b.goTypeToCode(nested); err == nil {
		t.Error("nested slice should be rejected")
	}
}

func TestFloat64Narrowing(t *testing.T) {
	b := NewSchemaBuilder(nil, nil)
	code, _, err := b.goTypeToCode(types.Typ[types.Float64])
	if err != nil {
		t.Fatal(err)
	}
	if code != schema.TypeFloat {
		t.Errorf("float64 = %d, want TypeFloat", code)
	}
	if len(b.Warnings()) == 0 {
		t.Error("float64 narrowing should warn")
	}
}

func TestBuildEnum(t *testing.T) {
	enums := map[string]*EnumInfo{
		"example.Status": {
			Name: "Status",
			Values: []*EnumValueInfo{
				{Name: "StatusActive", Number: 1},
				{Name: "StatusUnknown", Number: 0},
				{Name: "StatusBogus", Number: -1},
			},
		},
	}
	b := NewSchemaBuilder(nil, enums)
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	def := s.DefinitionByName("Status")
	if def == nil || def.Kind != schema.KindEnum {
		t.Fatal("Status enum not built")
	}
	if len(def.Fields) != 2 {
		t.Fatalf("got %d members, want 2 (negative skipped)", len(def.Fields))
	}
	if def.Fields[0].Name != "StatusUnknown" || def.Fields[0].Value != 0 {
		t.Errorf("members not sorted by discriminant: %+v", def.Fields)
	}
	if len(b.Warnings()) == 0 {
		t.Error("negative discriminant should warn")
	}
}

// TestExtractTestdata runs the full loader/collector/builder pipeline over
// the annotated types in ./testdata.
func TestExtractTestdata(t *testing.T) {
	text, err := ExtractToString([]string{"./testdata"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"enum Status {",
		"StatusActive = 1;",
		"struct Color {",
		"byte red;",
		"message Profile {",
		"uint id = 1;",
		"Status status = 3;",
		"string[] tags = 4;",
		"Color[] themes = 5;",
		"message Roster {",
		"Profile owner = 1;",
		"Profile[] profiles = 2;",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted schema missing %q:\n%s", want, text)
		}
	}

	if strings.Contains(text, "internal") {
		t.Errorf("kiwi:\"-\" field was not skipped:\n%s", text)
	}
}
