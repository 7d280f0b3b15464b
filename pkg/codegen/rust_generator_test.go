package codegen

import (
	"bytes"
	"strings"
	"testing"
)

func TestRustGeneratorMessage(t *testing.T) {
	gen := NewRustGenerator()
	var buf bytes.Buffer

	if err := gen.Generate(&buf, exampleSchema(), DefaultOptions()); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "pub struct Example {") {
		t.Errorf("expected Example struct, got: %s", output)
	}
	if !strings.Contains(output, "pub client_id: Option<u32>,") {
		t.Errorf("expected optional scalar field, got: %s", output)
	}
	if !strings.Contains(output, "pub colors: Vec<Point>,") {
		t.Errorf("expected array field, got: %s", output)
	}
	if !strings.Contains(output, "pub fn encode_to(&self, writer: &mut Writer) -> Result<(), DecodeError>") {
		t.Error("expected encode_to method")
	}
	if !strings.Contains(output, "pub fn decode_from(reader: &mut Reader) -> Result<Self, DecodeError>") {
		t.Error("expected decode_from method")
	}
}

func TestRustGeneratorEnum(t *testing.T) {
	gen := NewRustGenerator()
	var buf bytes.Buffer

	if err := gen.Generate(&buf, exampleSchema(), DefaultOptions()); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "pub enum Color {") {
		t.Error("expected Color enum")
	}
	if !strings.Contains(output, "Flat = 0,") {
		t.Errorf("expected Flat variant, got: %s", output)
	}
	if !strings.Contains(output, "DecodeError::UnknownEnumVariant(other)") {
		t.Error("expected unknown-variant error path")
	}
}

func TestRustGeneratorStructIsPositional(t *testing.T) {
	gen := NewRustGenerator()
	var buf bytes.Buffer

	if err := gen.Generate(&buf, exampleSchema(), DefaultOptions()); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "pub struct Point {") {
		t.Error("expected Point struct")
	}
	if strings.Contains(output, "pub red: Option<u8>,") {
		t.Errorf("struct field should not be optional, got: %s", output)
	}
}
