package transcode

import (
	"reflect"
	"strings"
)

// Shape is a compiled shape descriptor: the structural expectation a
// decoded value must satisfy. Shapes are immutable once built and safe for
// concurrent use.
//
// GoType is set when the shape was compiled from a Go type via Compiler;
// hand-built shapes leave it nil and decode to structural results.
type Shape struct {
	GoType   reflect.Type
	Elem     *Shape
	Fields   []Field
	ArrayLen int
	Bits     int
	Kind     ShapeKind
	KeyKind  MapKeyKind
	Unsigned bool
}

// Field is one named record member, in declaration order.
type Field struct {
	Name     []byte
	Shape    *Shape
	Index    int
	Optional bool
}

// String renders the shape for error messages, e.g. "sequence<text>".
func (s *Shape) String() string {
	switch s.Kind {
	case KindOptional:
		return "optional<" + s.Elem.String() + ">"
	case KindSequence:
		return "sequence<" + s.Elem.String() + ">"
	case KindMap:
		return "map<" + s.KeyKind.String() + ", " + s.Elem.String() + ">"
	case KindRecord:
		names := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			names[i] = string(f.Name)
		}
		return "record{" + strings.Join(names, ", ") + "}"
	default:
		return s.Kind.String()
	}
}

// Explicit constructors so callers without reflection support can build
// descriptors by hand.

// Bool returns a boolean scalar shape.
func Bool() *Shape {
	return &Shape{Kind: KindBool}
}

// Int64 returns a 64-bit signed integer scalar shape.
func Int64() *Shape {
	return &Shape{Kind: KindInt, Bits: 64}
}

// Float64 returns a 64-bit float scalar shape.
func Float64() *Shape {
	return &Shape{Kind: KindFloat, Bits: 64}
}

// Text returns a text scalar shape: byte-strings that must be valid UTF-8.
func Text() *Shape {
	return &Shape{Kind: KindText}
}

// Bytes returns a raw byte-string scalar shape, no validation.
func Bytes() *Shape {
	return &Shape{Kind: KindBytes, ArrayLen: -1}
}

// Optional wraps inner so that null and missing record keys decode to an
// absent result.
func Optional(inner *Shape) *Shape {
	return &Shape{Kind: KindOptional, Elem: inner}
}

// SequenceOf returns a shape matching arrays keyed by the exact index run
// 0..n-1.
func SequenceOf(elem *Shape) *Shape {
	return &Shape{Kind: KindSequence, Elem: elem, ArrayLen: -1}
}

// MapOf returns a shape matching arrays with any ordering of keys of the
// given kind.
func MapOf(key MapKeyKind, elem *Shape) *Shape {
	return &Shape{Kind: KindMap, KeyKind: key, Elem: elem}
}

// RecordOf returns a shape matching arrays keyed by the given field names.
func RecordOf(fields ...Field) *Shape {
	if len(fields) == 0 {
		return UnitRecord()
	}
	return &Shape{Kind: KindRecord, Fields: fields}
}

// FieldOf builds one record field.
func FieldOf(name string, shape *Shape, optional bool) Field {
	s := shape
	if optional && s.Kind != KindOptional {
		s = Optional(s)
	}
	return Field{Name: []byte(name), Shape: s, Index: -1, Optional: optional}
}

// UnitRecord returns the zero-field record shape, matching an empty array.
func UnitRecord() *Shape {
	return &Shape{Kind: KindUnitRecord}
}

// Any returns the free-form shape accepting every well-formed value.
func Any() *Shape {
	return &Shape{Kind: KindAny}
}
