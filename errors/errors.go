package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseScan    Phase = "scan"    // byte-level scanning
	PhaseParse   Phase = "parse"   // value tree construction
	PhaseCompile Phase = "compile" // shape compilation from Go types
	PhaseDecode  Phase = "decode"  // shape-directed decoding
	PhaseEncode  Phase = "encode"  // typed value to bytes
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedInput   Kind = "truncated_input"
	KindMalformedToken   Kind = "malformed_token"
	KindLengthMismatch   Kind = "length_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindShapeMismatch    Kind = "shape_mismatch"
	KindCoercionOverflow Kind = "coercion_overflow"
	KindInvalidUTF8      Kind = "invalid_utf8"
	KindFieldMissing     Kind = "field_missing"
	KindDuplicateKey     Kind = "duplicate_key"
	KindRecursionLimit   Kind = "recursion_limit"
	KindInvalidInput     Kind = "invalid_input"
	KindTypeMismatch     Kind = "type_mismatch"
)

// NoOffset marks errors that do not originate from a position in the input.
const NoOffset = -1

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Shape  string
	Got    string
	Detail string
	Path   []string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset > NoOffset {
		b.WriteString(" (offset ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
	}

	if e.Shape != "" || e.Got != "" {
		b.WriteString(": ")
		if e.Shape != "" && e.Got != "" {
			b.WriteString("expected ")
			b.WriteString(e.Shape)
			b.WriteString(", got ")
			b.WriteString(e.Got)
		} else if e.Shape != "" {
			b.WriteString("expected ")
			b.WriteString(e.Shape)
		} else {
			b.WriteString("got ")
			b.WriteString(e.Got)
		}
	}

	if e.Detail != "" {
		if e.Shape != "" || e.Got != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset of the offending node
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Shape sets the expected shape name
func (b *Builder) Shape(s string) *Builder {
	b.err.Shape = s
	return b
}

// Got sets the value kind actually found
func (b *Builder) Got(g string) *Builder {
	b.err.Got = g
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates an unexpected-end-of-input error
func Truncated(phase Phase, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncatedInput,
		Offset: offset,
		Detail: "unexpected end of input",
	}
}

// Malformed creates an unexpected-byte error
func Malformed(phase Phase, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedToken,
		Offset: offset,
		Detail: detail,
	}
}

// Unexpected creates a punctuation mismatch error
func Unexpected(phase Phase, offset int, expected, actual byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedToken,
		Offset: offset,
		Detail: fmt.Sprintf("expected %q, got %q", expected, actual),
	}
}

// LengthMismatch creates a declared-vs-actual length error
func LengthMismatch(offset int, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindLengthMismatch,
		Offset: offset,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Unsupported creates an unsupported-feature error
func Unsupported(phase Phase, offset int, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: offset,
		Detail: what,
	}
}

// ShapeMismatch creates a shape mismatch error
func ShapeMismatch(path []string, offset int, shape, got string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindShapeMismatch,
		Path:   path,
		Offset: offset,
		Shape:  shape,
		Got:    got,
	}
}

// Overflow creates a coercion overflow error
func Overflow(path []string, offset int, value any, target string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindCoercionOverflow,
		Path:   path,
		Offset: offset,
		Shape:  target,
		Detail: fmt.Sprintf("value %v does not fit %s", value, target),
		Value:  value,
	}
}

// InvalidUTF8 creates an invalid text encoding error
func InvalidUTF8(path []string, offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// FieldMissing creates a missing required field error
func FieldMissing(path []string, offset int, fieldName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFieldMissing,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// DuplicateKey creates a repeated array key error
func DuplicateKey(path []string, offset int, key string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDuplicateKey,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("key %s bound more than once", key),
	}
}

// RecursionLimit creates a nesting depth error
func RecursionLimit(phase Phase, offset, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRecursionLimit,
		Offset: offset,
		Detail: fmt.Sprintf("nesting exceeds maximum depth %d", limit),
	}
}

// TypeMismatch creates a Go type validation error
func TypeMismatch(phase Phase, path []string, goType, expected string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Offset: NoOffset,
		Got:    goType,
		Shape:  expected,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}
