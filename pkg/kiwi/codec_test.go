package kiwi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// s1 is the reference schema used throughout the codec tests:
//
//	enum Type { FLAT = 0; ROUND = 1; POINTED = 2; }
//	struct Color { byte red; byte green; byte blue; byte alpha; }
//	message Example { uint clientID = 1; Type type = 2; Color[] colors = 3; }
func s1(t *testing.T) *schema.Schema {
	t.Helper()
	s, errs := schema.LoadString("s1.kiwi", `
enum Type { FLAT = 0; ROUND = 1; POINTED = 2; }
struct Color { byte red; byte green; byte blue; byte alpha; }
message Example { uint clientID = 1; Type type = 2; Color[] colors = 3; }
`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return s
}

func TestEncodeEmptyMessage(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	def := s.DefinitionByName("Example")
	out, err := enc.Encode(def, Object("Example", map[string]Value{}))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("got %x, want %x", out, want)
	}
}

func TestEncodeScalarAndEnum(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	def := s.DefinitionByName("Example")
	v := Object("Example", map[string]Value{
		"clientID": Uint(1),
		"type":     Enum("Type", "ROUND"),
	})
	out, err := enc.Encode(def, v)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x01, 0x02, 0x01, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("got %x, want %x", out, want)
	}
}

func TestEncodeArrayOfStruct(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	def := s.DefinitionByName("Example")
	v := Object("Example", map[string]Value{
		"colors": Array([]Value{
			Object("Color", map[string]Value{
				"red": Byte(1), "green": Byte(2), "blue": Byte(3), "alpha": Byte(4),
			}),
		}),
	})
	out, err := enc.Encode(def, v)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x03, 0x01, 0x01, 0x02, 0x03, 0x04, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("got %x, want %x", out, want)
	}
}

func TestEncodeFloatZero(t *testing.T) {
	s, errs := schema.LoadString("m.kiwi", `message M { float x = 1; }`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	enc := NewEncoder(s)
	def := s.DefinitionByName("M")
	out, err := enc.Encode(def, Object("M", map[string]Value{"x": Float(0.0)}))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("got %x, want %x", out, want)
	}
}

func TestDecodeMirrorsEncode(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	dec := NewDecoder(s)
	def := s.DefinitionByName("Example")

	v := Object("Example", map[string]Value{
		"clientID": Uint(42),
		"type":     Enum("Type", "POINTED"),
		"colors": Array([]Value{
			Object("Color", map[string]Value{
				"red": Byte(10), "green": Byte(20), "blue": Byte(30), "alpha": Byte(40),
			}),
		}),
	})
	data, err := enc.Encode(def, v)
	if err != nil {
		t.Fatal(err)
	}
	got, n, err := dec.Decode(data, def)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Errorf("consumed %d bytes, want %d", n, len(data))
	}
	if !got.Equal(v) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, v)
	}
}

func TestDecodeUnknownEnumVariantIsPreserved(t *testing.T) {
	s := s1(t)
	dec := NewDecoder(s)
	def := s.DefinitionByName("Example")
	// tag 0x02 (type), discriminant 99 (not a known Type variant), end.
	data := []byte{0x02, 99, 0x00}
	v, _, err := dec.Decode(data, def)
	if err != nil {
		t.Fatal(err)
	}
	got := v.Fields()["type"]
	if got.EnumName() != "" {
		t.Errorf("expected unresolved variant name, got %q", got.EnumName())
	}
	if got.EnumDiscriminant() != 99 {
		t.Errorf("got discriminant %d, want 99", got.EnumDiscriminant())
	}
}

func TestMissingStructFieldFailsEncode(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	def := s.DefinitionByName("Example")
	v := Object("Example", map[string]Value{
		"colors": Array([]Value{
			Object("Color", map[string]Value{"red": Byte(1)}), // missing green/blue/alpha
		}),
	})
	_, err := enc.Encode(def, v)
	var missing *MissingStructFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want *MissingStructFieldError", err)
	}
}

func TestTypeMismatchFailsEncode(t *testing.T) {
	s := s1(t)
	enc := NewEncoder(s)
	def := s.DefinitionByName("Example")
	v := Object("Example", map[string]Value{"clientID": String("not a uint")})
	_, err := enc.Encode(def, v)
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want *TypeMismatchError", err)
	}
}

func TestDecodeUnknownFieldWithoutAuxIsAnError(t *testing.T) {
	s := s1(t)
	dec := NewDecoder(s)
	def := s.DefinitionByName("Example")
	// tag 99 (not declared on Example), a byte payload, end.
	data := []byte{99, 0x01, 0x00}
	_, _, err := dec.Decode(data, def)
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want *UnknownFieldError", err)
	}
}

// TestForwardCompatUnknownFieldSkippedWithAux: a
// message encoded under a newer schema (S2, which adds "label") decodes
// under the older S1 when S2 is supplied as the auxiliary schema - unknown
// fields are skipped, not rejected.
func TestForwardCompatUnknownFieldSkippedWithAux(t *testing.T) {
	oldS := s1(t)
	newS, errs := schema.LoadString("s2.kiwi", `
enum Type { FLAT = 0; ROUND = 1; POINTED = 2; }
struct Color { byte red; byte green; byte blue; byte alpha; }
message Example { uint clientID = 1; Type type = 2; Color[] colors = 3; string label = 4; }
`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	enc := NewEncoder(newS)
	newDef := newS.DefinitionByName("Example")
	data, err := enc.Encode(newDef, Object("Example", map[string]Value{
		"clientID": Uint(7),
		"label":    String("hi"),
	}))
	if err != nil {
		t.Fatal(err)
	}

	oldDef := oldS.DefinitionByName("Example")
	dec := NewDecoder(oldS).WithAux(newS)
	got, n, err := dec.Decode(data, oldDef)
	if err != nil {
		t.Fatalf("decode with aux: %v", err)
	}
	if n != len(data) {
		t.Errorf("consumed %d bytes, want %d", n, len(data))
	}
	fields := got.Fields()
	if len(fields) != 1 {
		t.Fatalf("got fields %+v, want only clientID", fields)
	}
	if fields["clientID"].Uint() != 7 {
		t.Errorf("got clientID=%d, want 7", fields["clientID"].Uint())
	}

	// Without an aux schema the same bytes are a hard error.
	_, _, err = NewDecoder(oldS).Decode(data, oldDef)
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want *UnknownFieldError without aux", err)
	}
}

// TestStructDesyncIsDetectable: a struct decode
// against a drifted (extra-field) definition either errors (truncation) or
// silently misreads - structs are frameless. Here the drift shortens the
// buffer enough to force a truncation error, which is the detectable case.
func TestStructDesyncIsDetectable(t *testing.T) {
	oldS, errs := schema.LoadString("old.kiwi", `struct Point { int x; int y; }`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	newS, errs := schema.LoadString("new.kiwi", `struct Point { int x; int y; int z; }`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	enc := NewEncoder(oldS)
	data, err := enc.Encode(oldS.DefinitionByName("Point"), Object("Point", map[string]Value{
		"x": Int(1), "y": Int(2),
	}))
	if err != nil {
		t.Fatal(err)
	}

	dec := NewDecoder(newS)
	_, _, err = dec.Decode(data, newS.DefinitionByName("Point"))
	if err == nil {
		t.Fatal("expected decoding the shorter encoding against the longer definition to fail")
	}
}

func TestArrayLengthPrefixRoundTrip(t *testing.T) {
	s, errs := schema.LoadString("m.kiwi", `message M { int[] xs = 1; }`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	def := s.DefinitionByName("M")
	v := Object("M", map[string]Value{
		"xs": Array([]Value{Int(1), Int(-2), Int(3), Int(-4), Int(5)}),
	})
	enc := NewEncoder(s)
	data, err := enc.Encode(def, v)
	if err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(s)
	got, n, err := dec.Decode(data, def)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) || !got.Equal(v) {
		t.Errorf("got %+v (%d bytes), want %+v (%d bytes)", got, n, v, len(data))
	}
}

func TestRecursiveMessageRoundTrip(t *testing.T) {
	s, errs := schema.LoadString("tree.kiwi", `message Tree { int value = 1; Tree[] children = 2; }`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	def := s.DefinitionByName("Tree")
	v := Object("Tree", map[string]Value{
		"value": Int(1),
		"children": Array([]Value{
			Object("Tree", map[string]Value{"value": Int(2)}),
			Object("Tree", map[string]Value{"value": Int(3)}),
		}),
	})
	enc := NewEncoder(s)
	data, err := enc.Encode(def, v)
	if err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(s)
	got, n, err := dec.Decode(data, def)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) || !got.Equal(v) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, v)
	}
}
