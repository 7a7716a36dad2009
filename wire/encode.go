package wire

import (
	"math"
	"strconv"

	"github.com/phpser/phpser/errors"
)

// Writer accumulates canonical serialized bytes. Length prefixes are
// always written from the final byte representation, never estimated.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteNull writes a null node.
func (w *Writer) WriteNull() {
	w.buf = append(w.buf, TagNull, SepSemicolon)
}

// WriteBool writes a boolean node.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf = append(w.buf, TagBool, SepColon, '1', SepSemicolon)
	} else {
		w.buf = append(w.buf, TagBool, SepColon, '0', SepSemicolon)
	}
}

// WriteInt writes an integer node.
func (w *Writer) WriteInt(n int64) {
	w.buf = append(w.buf, TagInt, SepColon)
	w.buf = strconv.AppendInt(w.buf, n, 10)
	w.buf = append(w.buf, SepSemicolon)
}

// WriteFloat writes a float node, using the fixed textual tokens for
// not-a-number and infinities.
func (w *Writer) WriteFloat(f float64) {
	w.buf = append(w.buf, TagFloat, SepColon)
	w.buf = append(w.buf, FormatFloat(f)...)
	w.buf = append(w.buf, SepSemicolon)
}

// WriteBytes writes a byte-string node. The length prefix is the exact
// byte count of b.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, TagString, SepColon)
	w.buf = strconv.AppendInt(w.buf, int64(len(b)), 10)
	w.buf = append(w.buf, SepColon, SepQuote)
	w.buf = append(w.buf, b...)
	w.buf = append(w.buf, SepQuote, SepSemicolon)
}

// WriteText writes a byte-string node holding the UTF-8 bytes of s.
func (w *Writer) WriteText(s string) {
	w.buf = append(w.buf, TagString, SepColon)
	w.buf = strconv.AppendInt(w.buf, int64(len(s)), 10)
	w.buf = append(w.buf, SepColon, SepQuote)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, SepQuote, SepSemicolon)
}

// BeginArray writes an array header declaring count key/value pairs. The
// caller must write exactly count pairs followed by EndArray.
func (w *Writer) BeginArray(count int) {
	w.buf = append(w.buf, TagArray, SepColon)
	w.buf = strconv.AppendInt(w.buf, int64(count), 10)
	w.buf = append(w.buf, SepColon, SepOpenBrace)
}

// EndArray closes an array opened by BeginArray.
func (w *Writer) EndArray() {
	w.buf = append(w.buf, SepCloseBrace)
}

// FormatFloat renders f in the canonical locale-independent form.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return FloatNaN
	case math.IsInf(f, 1):
		return FloatInf
	case math.IsInf(f, -1):
		return FloatNegInf
	}
	return strconv.FormatFloat(f, 'G', -1, 64)
}

// Encode renders a Value tree to canonical bytes. It is total over
// well-formed trees; only a key of invalid kind fails.
func Encode(v *Value) ([]byte, error) {
	w := NewWriter()
	if err := encodeValue(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeValue(w *Writer, v *Value) error {
	switch v.Kind {
	case KindNull:
		w.WriteNull()
	case KindBool:
		w.WriteBool(v.Bool)
	case KindInt:
		w.WriteInt(v.Int)
	case KindFloat:
		w.WriteFloat(v.Float)
	case KindBytes:
		w.WriteBytes(v.Bytes)
	case KindArray:
		w.BeginArray(len(v.Elems))
		for _, e := range v.Elems {
			switch e.Key.Kind {
			case KeyInt:
				w.WriteInt(e.Key.Int)
			case KeyBytes:
				w.WriteBytes(e.Key.Bytes)
			default:
				return errors.InvalidInput(errors.PhaseEncode,
					"array key must be integer or byte-string")
			}
			if err := encodeValue(w, e.Value); err != nil {
				return err
			}
		}
		w.EndArray()
	default:
		return errors.InvalidInput(errors.PhaseEncode, "unknown value kind")
	}
	return nil
}
