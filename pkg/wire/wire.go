// Package wire is the public runtime surface for generated Kiwi bindings:
// the ByteBuffer primitives re-exported from the module-internal
// implementation so that code emitted by the kiwi compiler compiles
// outside this module. Generated code needs nothing else at runtime - in
// particular, not the dynamic Value tree or the Schema model.
package wire

import "github.com/kiwiproto/kiwi-go/internal/wire"

// Maximum encoded lengths of the two varint widths.
const (
	MaxVarintLen32 = wire.MaxVarintLen32
	MaxVarintLen64 = wire.MaxVarintLen64
)

// The sentinel errors are the same instances the internal implementation
// returns, so errors.Is works across the boundary.
var (
	ErrTruncated    = wire.ErrTruncated
	ErrOverflow     = wire.ErrOverflow
	ErrTooLong      = wire.ErrTooLong
	ErrInvalidUTF8  = wire.ErrInvalidUTF8
	ErrNulInString  = wire.ErrNulInString
)

func AppendUvarint(buf []byte, v uint32) []byte   { return wire.AppendUvarint(buf, v) }
func AppendSvarint(buf []byte, v int32) []byte    { return wire.AppendSvarint(buf, v) }
func AppendUvarint64(buf []byte, v uint64) []byte { return wire.AppendUvarint64(buf, v) }
func AppendSvarint64(buf []byte, v int64) []byte  { return wire.AppendSvarint64(buf, v) }
func AppendVarFloat(buf []byte, v float32) []byte { return wire.AppendVarFloat(buf, v) }
func AppendByte(buf []byte, v byte) []byte        { return wire.AppendByte(buf, v) }
func AppendBool(buf []byte, v bool) []byte        { return wire.AppendBool(buf, v) }

func AppendString(buf []byte, s string) ([]byte, error) { return wire.AppendString(buf, s) }

func DecodeUvarint(data []byte) (uint32, int, error)   { return wire.DecodeUvarint(data) }
func DecodeSvarint(data []byte) (int32, int, error)    { return wire.DecodeSvarint(data) }
func DecodeUvarint64(data []byte) (uint64, int, error) { return wire.DecodeUvarint64(data) }
func DecodeSvarint64(data []byte) (int64, int, error)  { return wire.DecodeSvarint64(data) }
func DecodeVarFloat(data []byte) (float32, int, error) { return wire.DecodeVarFloat(data) }
func DecodeByte(data []byte) (byte, int, error)        { return wire.DecodeByte(data) }
func DecodeBool(data []byte) (bool, int, error)        { return wire.DecodeBool(data) }
func DecodeString(data []byte) (string, int, error)    { return wire.DecodeString(data) }

// UvarintSize returns the encoded length of v as a 32-bit varint.
func UvarintSize(v uint32) int { return wire.UvarintSize(v) }

// Uvarint64Size returns the encoded length of v as a 64-bit varint.
func Uvarint64Size(v uint64) int { return wire.Uvarint64Size(v) }
