// Package benchmark compares the Kiwi codec against JSON serialization and
// measures the cost of the individual wire primitives.
package benchmark

import (
	"encoding/json"
	"testing"

	"github.com/kiwiproto/kiwi-go/internal/wire"
	"github.com/kiwiproto/kiwi-go/pkg/kiwi"
	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

const benchSchema = `
enum Status {
  IDLE = 0;
  ACTIVE = 1;
  CLOSED = 2;
}

struct Point {
  float x;
  float y;
  float z;
}

message Sample {
  uint id = 1;
  string name = 2;
  Status status = 3;
  Point[] track = 4;
  int64 timestamp = 5;
  bool flagged = 6;
}
`

func loadBenchSchema(b *testing.B) *schema.Schema {
	b.Helper()
	s, errs := schema.LoadString("bench.kiwi", benchSchema)
	if len(errs) > 0 {
		b.Fatal(errs[0])
	}
	return s
}

func point(x, y, z float32) kiwi.Value {
	return kiwi.Object("Point", map[string]kiwi.Value{
		"x": kiwi.Float(x),
		"y": kiwi.Float(y),
		"z": kiwi.Float(z),
	})
}

func makeSmallSample() kiwi.Value {
	return kiwi.Object("Sample", map[string]kiwi.Value{
		"id":     kiwi.Uint(12345),
		"name":   kiwi.String("test-item"),
		"status": kiwi.Enum("Status", "ACTIVE"),
	})
}

func makeLargeSample() kiwi.Value {
	track := make([]kiwi.Value, 0, 256)
	for i := 0; i < 256; i++ {
		f := float32(i)
		track = append(track, point(f, f*2, f*3))
	}
	return kiwi.Object("Sample", map[string]kiwi.Value{
		"id":        kiwi.Uint(12345),
		"name":      kiwi.String("telemetry-batch"),
		"status":    kiwi.Enum("Status", "ACTIVE"),
		"track":     kiwi.Array(track),
		"timestamp": kiwi.Int64(1705900800),
		"flagged":   kiwi.Bool(true),
	})
}

// jsonSample is the encoding/json counterpart of the small Sample value.
type jsonSample struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func BenchmarkEncodeSmall(b *testing.B) {
	s := loadBenchSchema(b)
	def := s.DefinitionByName("Sample")
	enc := kiwi.NewEncoder(s)
	v := makeSmallSample()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(def, v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeSmallPooled(b *testing.B) {
	s := loadBenchSchema(b)
	def := s.DefinitionByName("Sample")
	enc := kiwi.NewEncoder(s)
	v := makeSmallSample()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := kiwi.GetBuffer(64)
		out, err := enc.Append(buf, def, v)
		if err != nil {
			b.Fatal(err)
		}
		kiwi.PutBuffer(out)
	}
}

func BenchmarkEncodeLarge(b *testing.B) {
	s := loadBenchSchema(b)
	def := s.DefinitionByName("Sample")
	enc := kiwi.NewEncoder(s)
	v := makeLargeSample()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(def, v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeSmall(b *testing.B) {
	s := loadBenchSchema(b)
	def := s.DefinitionByName("Sample")
	data, err := kiwi.NewEncoder(s).Encode(def, makeSmallSample())
	if err != nil {
		b.Fatal(err)
	}
	dec := kiwi.NewDecoder(s)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := dec.Decode(data, def); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeLarge(b *testing.B) {
	s := loadBenchSchema(b)
	def := s.DefinitionByName("Sample")
	data, err := kiwi.NewEncoder(s).Encode(def, makeLargeSample())
	if err != nil {
		b.Fatal(err)
	}
	dec := kiwi.NewDecoder(s)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := dec.Decode(data, def); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkJSONEncodeSmall(b *testing.B) {
	v := &jsonSample{ID: 12345, Name: "test-item", Status: "ACTIVE"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkJSONDecodeSmall(b *testing.B) {
	data, err := json.Marshal(&jsonSample{ID: 12345, Name: "test-item", Status: "ACTIVE"})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v jsonSample
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSchemaEncodeBinary(b *testing.B) {
	s := loadBenchSchema(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.EncodeBinary(s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSchemaDecodeBinary(b *testing.B) {
	s := loadBenchSchema(b)
	bin, err := schema.EncodeBinary(s)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.DecodeBinary(bin); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUvarint(b *testing.B) {
	buf := make([]byte, 0, wire.MaxVarintLen32)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out := wire.AppendUvarint(buf[:0], uint32(i))
		if _, _, err := wire.DecodeUvarint(out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUvarint64(b *testing.B) {
	buf := make([]byte, 0, wire.MaxVarintLen64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out := wire.AppendUvarint64(buf[:0], uint64(i)<<32)
		if _, _, err := wire.DecodeUvarint64(out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVarFloat(b *testing.B) {
	buf := make([]byte, 0, wire.MaxVarintLen32)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out := wire.AppendVarFloat(buf[:0], float32(i)+0.5)
		if _, _, err := wire.DecodeVarFloat(out); err != nil {
			b.Fatal(err)
		}
	}
}
