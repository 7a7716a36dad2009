package wire

import "strconv"

// Kind identifies the semantic kind of a parsed Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBytes:
		return "byte-string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed tree. The payload field corresponding to
// Kind is set; all others are zero. Values are immutable after parsing and
// never shared between parse calls. Offset is the position of the node's
// first byte in the input, recorded for error reporting.
type Value struct {
	Bytes  []byte
	Elems  []Entry
	Int    int64
	Float  float64
	Offset int
	Kind   Kind
	Bool   bool
}

// Entry is one key/value pair of an array, in encounter order.
type Entry struct {
	Value *Value
	Key   Key
}

// KeyKind identifies the kind of an array key. The format permits only
// integer and byte-string keys; the parser rejects anything else.
type KeyKind uint8

const (
	KeyInt KeyKind = iota
	KeyBytes
)

// Key is an array key: a signed integer or a raw byte string.
type Key struct {
	Bytes  []byte
	Int    int64
	Offset int
	Kind   KeyKind
}

// String renders the key for diagnostics: decimal for integer keys,
// quoted for byte-string keys.
func (k Key) String() string {
	if k.Kind == KeyInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return strconv.Quote(string(k.Bytes))
}

// Constructors for building Value trees by hand, used by the encoder's
// callers and in tests.

// Null returns a null Value.
func Null() *Value {
	return &Value{Kind: KindNull}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) *Value {
	return &Value{Kind: KindBool, Bool: b}
}

// IntValue returns an integer Value.
func IntValue(n int64) *Value {
	return &Value{Kind: KindInt, Int: n}
}

// FloatValue returns a float Value.
func FloatValue(f float64) *Value {
	return &Value{Kind: KindFloat, Float: f}
}

// BytesValue returns a byte-string Value. The slice is not copied.
func BytesValue(b []byte) *Value {
	return &Value{Kind: KindBytes, Bytes: b}
}

// TextValue returns a byte-string Value holding the UTF-8 bytes of s.
func TextValue(s string) *Value {
	return &Value{Kind: KindBytes, Bytes: []byte(s)}
}

// ArrayValue returns an array Value with the given entries in order.
func ArrayValue(entries ...Entry) *Value {
	return &Value{Kind: KindArray, Elems: entries}
}

// IntKey returns an integer array key.
func IntKey(n int64) Key {
	return Key{Kind: KeyInt, Int: n}
}

// TextKey returns a byte-string array key holding the UTF-8 bytes of s.
func TextKey(s string) Key {
	return Key{Kind: KeyBytes, Bytes: []byte(s)}
}
