// Package internal holds the error taxonomy and small helpers shared by
// bitstream, per, schema, and asn1. It plays the same role that the
// dsnet/compress "internal" package plays for flate/bzip2/brotli: a place
// for the handful of types every sibling package needs without exporting
// them as part of the public surface of any one of them.
package internal

import (
	"fmt"

	"github.com/dsnet/golib/errs"
)

// BufferUnderrunError reports a decode that read past the bits available.
type BufferUnderrunError struct {
	Requested uint
	Available uint
}

func (e *BufferUnderrunError) Error() string {
	return fmt.Sprintf("per: buffer underrun: requested %d bits, %d available", e.Requested, e.Available)
}

// ConstraintViolationError reports a value outside its declared bounds.
type ConstraintViolationError struct {
	Kind   string // e.g. "integer-range", "size", "enum-name", "choice-alt", "alphabet"
	Detail string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("per: constraint violation (%s): %s", e.Kind, e.Detail)
}

// WireFormatError reports bits that make no sense under the PER grammar.
type WireFormatError struct {
	Detail string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("per: wire format error: %s", e.Detail)
}

// SchemaError reports a problem compiling or resolving a schema node.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("per: schema error: %s", e.Detail)
}

// Position marks a line/column in ASN.1 source text.
type Position struct {
	Line, Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError reports an ASN.1 syntax error with its source position.
type ParseError struct {
	Pos    Position
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("per: parse error at %s: %s", e.Pos, e.Detail)
}

// UnresolvedReferenceError reports a converter encountering a type name that
// is neither a primitive nor defined in the module being converted.
type UnresolvedReferenceError struct {
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("per: unresolved type reference %q", e.Name)
}

// PathError enriches a child error with the composite-codec path (field
// name, array index, or alternative name) that led to it, following the
// teacher's catch-enrich-rethrow convention at sub-decoder boundaries.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *PathError) Unwrap() error { return e.Err }

// WithPath wraps err with a path segment unless err is already nil.
// It is called from a deferred recover at each composite codec boundary.
func WithPath(segment string, err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok {
		return &PathError{Path: segment + "." + pe.Path, Err: pe.Err}
	}
	return &PathError{Path: segment, Err: err}
}

// Recover is the panic/recover boundary used by every exported Encode,
// Decode, DecodeWithMetadata, and Parse entry point. It mirrors flate/bzip2/xflate's
// errRecover, implemented on top of the teacher's own errs package instead
// of being hand-rolled per package.
func Recover(err *error) {
	errs.Recover(err)
}

// Panic panics with err if err is non-nil. It is the write-side counterpart
// used to abort an Encode/Decode from deep inside a composite codec.
func Panic(err error) {
	errs.Panic(err)
}

// Assert panics with err if cond is false.
func Assert(cond bool, err error) {
	errs.Assert(cond, err)
}
