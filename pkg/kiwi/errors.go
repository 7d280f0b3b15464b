package kiwi

import (
	"errors"
	"fmt"

	"github.com/kiwiproto/kiwi-go/internal/wire"
	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// Sentinel errors for the codec's closed error taxonomy.
// Check these with errors.Is(); the concrete error returned by Encode/Decode
// usually wraps one of these with field/definition context.
var (
	// ErrTruncated indicates the input ended before a complete value was read.
	ErrTruncated = errors.New("kiwi: truncated")

	// ErrInvalidUTF8 indicates a string's bytes were not valid UTF-8.
	ErrInvalidUTF8 = errors.New("kiwi: invalid utf-8")

	// ErrVarintOverflow indicates a varint decoded wider than its target type.
	ErrVarintOverflow = errors.New("kiwi: varint overflow")

	// ErrMalformedSchema indicates a self-describing schema binary was
	// structurally invalid. Aliased from pkg/schema so errors.Is matches
	// whichever package the caller imported.
	ErrMalformedSchema = schema.ErrMalformedSchema
)

// TypeMismatchError indicates a Value's tag didn't match the type the
// schema declared for the field or array element being encoded/decoded.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("kiwi: type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// Is reports whether target is the TypeMismatch sentinel kind, so callers
// can use errors.Is without caring about the specific Expected/Got values.
func (e *TypeMismatchError) Is(target error) bool {
	_, ok := target.(*TypeMismatchError)
	return ok
}

// UnknownFieldError indicates a message field ID absent from both the
// active schema and any auxiliary schema supplied to the Decoder.
type UnknownFieldError struct {
	Def string
	ID  uint32
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("kiwi: %s: unknown field id %d", e.Def, e.ID)
}

func (e *UnknownFieldError) Is(target error) bool {
	_, ok := target.(*UnknownFieldError)
	return ok
}

// MissingStructFieldError indicates a struct Object value was missing a
// field the definition requires; structs are positional and have no room
// for optionality.
type MissingStructFieldError struct {
	Def   string
	Field string
}

func (e *MissingStructFieldError) Error() string {
	return fmt.Sprintf("kiwi: %s: missing struct field %q", e.Def, e.Field)
}

func (e *MissingStructFieldError) Is(target error) bool {
	_, ok := target.(*MissingStructFieldError)
	return ok
}

// CodecError adds definition/byte-offset context to an underlying codec
// error: the first failure aborts the operation and surfaces with the
// definition name and byte offset it happened at.
type CodecError struct {
	Def    string
	Offset int
	Cause  error
}

func (e *CodecError) Error() string {
	if e.Def != "" {
		return fmt.Sprintf("kiwi: %s at offset %d: %v", e.Def, e.Offset, e.Cause)
	}
	return fmt.Sprintf("kiwi: at offset %d: %v", e.Offset, e.Cause)
}

func (e *CodecError) Unwrap() error { return e.Cause }

// wrapWireErr translates an internal/wire sentinel into the kiwi package's
// own sentinel, so callers of pkg/kiwi never need to import internal/wire
// to check error identity.
func wrapWireErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wire.ErrTruncated):
		return ErrTruncated
	case errors.Is(err, wire.ErrOverflow), errors.Is(err, wire.ErrTooLong):
		return ErrVarintOverflow
	case errors.Is(err, wire.ErrInvalidUTF8):
		return ErrInvalidUTF8
	default:
		return err
	}
}
