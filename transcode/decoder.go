package transcode

import (
	"bytes"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/phpser/phpser/errors"
	"github.com/phpser/phpser/wire"
)

// Decoder drives parsed values into typed results under the direction of a
// compiled shape. A Decoder is safe for concurrent use.
type Decoder struct {
	compiler *Compiler
	maxDepth int
}

// Option configures a Decoder or Encoder.
type Option func(*options)

type options struct {
	maxDepth int
}

// WithMaxDepth overrides the default nesting limit.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

func NewDecoder(opts ...Option) *Decoder {
	return NewDecoderWithCompiler(NewCompiler(), opts...)
}

// NewDecoderWithCompiler builds a Decoder sharing an existing shape cache.
func NewDecoderWithCompiler(c *Compiler, opts ...Option) *Decoder {
	o := options{maxDepth: wire.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{compiler: c, maxDepth: o.maxDepth}
}

// Unmarshal parses data and decodes the result into target, which must be
// a non-nil pointer. The pointed-to type determines the expected shape.
func (d *Decoder) Unmarshal(data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.InvalidInput(errors.PhaseDecode, "target must be a non-nil pointer")
	}

	shape, err := d.compiler.Compile(rv.Type().Elem())
	if err != nil {
		return err
	}

	v, err := wire.Parse(data, wire.WithMaxDepth(d.maxDepth))
	if err != nil {
		return err
	}

	return d.decodeInto(v, shape, rv.Elem(), nil)
}

// DecodeValue applies a shape to an already-parsed value and returns the
// structural result. Shapes compiled from Go types yield values of that
// type; hand-built shapes yield bool, int64, float64, string, []byte,
// []any and map variants.
func (d *Decoder) DecodeValue(v *wire.Value, shape *Shape) (any, error) {
	if shape.GoType != nil {
		rv := reflect.New(shape.GoType).Elem()
		if err := d.decodeInto(v, shape, rv, nil); err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	}
	return d.decodeDynamic(v, shape, nil)
}

func (d *Decoder) decodeInto(v *wire.Value, s *Shape, rv reflect.Value, path []string) error {
	switch s.Kind {
	case KindOptional:
		if v.Kind == wire.KindNull {
			rv.SetZero()
			return nil
		}
		ptr := reflect.New(rv.Type().Elem())
		if err := d.decodeInto(v, s.Elem, ptr.Elem(), path); err != nil {
			return err
		}
		rv.Set(ptr)
		return nil

	case KindBool:
		if v.Kind != wire.KindBool {
			return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		rv.SetBool(v.Bool)
		return nil

	case KindInt:
		n, err := intFrom(v, s, path)
		if err != nil {
			return err
		}
		if s.Unsigned {
			if n < 0 || rv.OverflowUint(uint64(n)) {
				return errors.Overflow(path, v.Offset, n, rv.Type().String())
			}
			rv.SetUint(uint64(n))
			return nil
		}
		if rv.OverflowInt(n) {
			return errors.Overflow(path, v.Offset, n, rv.Type().String())
		}
		rv.SetInt(n)
		return nil

	case KindFloat:
		f, err := floatFrom(v, s, path)
		if err != nil {
			return err
		}
		if s.Bits == 32 && !roundTrips32(f) {
			return errors.Overflow(path, v.Offset, f, rv.Type().String())
		}
		rv.SetFloat(f)
		return nil

	case KindText:
		text, err := textFrom(v, s, path)
		if err != nil {
			return err
		}
		rv.SetString(text)
		return nil

	case KindBytes:
		if v.Kind != wire.KindBytes {
			return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		if s.ArrayLen >= 0 {
			if len(v.Bytes) != s.ArrayLen {
				return errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
					Path(path...).
					Offset(v.Offset).
					Detail("expected %d bytes, got %d", s.ArrayLen, len(v.Bytes)).
					Build()
			}
			reflect.Copy(rv, reflect.ValueOf(v.Bytes))
			return nil
		}
		rv.SetBytes(append([]byte(nil), v.Bytes...))
		return nil

	case KindSequence:
		if err := checkSequence(v, s, path); err != nil {
			return err
		}
		n := len(v.Elems)
		if s.ArrayLen >= 0 {
			if n != s.ArrayLen {
				return errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
					Path(path...).
					Offset(v.Offset).
					Detail("expected %d elements, got %d", s.ArrayLen, n).
					Build()
			}
		} else {
			rv.Set(reflect.MakeSlice(rv.Type(), n, n))
		}
		for i, e := range v.Elems {
			elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
			if err := d.decodeInto(e.Value, s.Elem, rv.Index(i), elemPath); err != nil {
				return err
			}
		}
		return nil

	case KindMap:
		return d.decodeMapInto(v, s, rv, path)

	case KindRecord:
		return d.decodeRecordInto(v, s, rv, path)

	case KindUnitRecord:
		if v.Kind != wire.KindArray {
			return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		if len(v.Elems) != 0 {
			return errors.ShapeMismatch(path, v.Offset, s.String(),
				"array with "+strconv.Itoa(len(v.Elems))+" entries")
		}
		return nil

	case KindAny:
		result, err := d.decodeAny(v, path)
		if err != nil {
			return err
		}
		if result == nil {
			rv.SetZero()
			return nil
		}
		rv.Set(reflect.ValueOf(result))
		return nil

	default:
		return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Path(path...).
			Detail("unknown shape kind %d", s.Kind).
			Build()
	}
}

func (d *Decoder) decodeMapInto(v *wire.Value, s *Shape, rv reflect.Value, path []string) error {
	if v.Kind != wire.KindArray {
		return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}

	mapType := rv.Type()
	rv.Set(reflect.MakeMapWithSize(mapType, len(v.Elems)))

	for _, e := range v.Elems {
		key := reflect.New(mapType.Key()).Elem()
		if err := decodeMapKey(e.Key, s.KeyKind, key, path); err != nil {
			return err
		}
		// Duplicates are detected on the bound Go key, not the wire
		// form: i:1 and s:1:"1" both land on the text key "1".
		if rv.MapIndex(key).IsValid() {
			return errors.DuplicateKey(path, e.Key.Offset, e.Key.String())
		}

		elemPath := append(append([]string{}, path...), "["+e.Key.String()+"]")
		elem := reflect.New(mapType.Elem()).Elem()
		if err := d.decodeInto(e.Value, s.Elem, elem, elemPath); err != nil {
			return err
		}
		rv.SetMapIndex(key, elem)
	}
	return nil
}

// decodeMapKey binds one array key to a Go map key. Integer keys bind to
// text keys through their decimal rendering, mirroring how the source
// format folds numeric strings into integer keys.
func decodeMapKey(k wire.Key, kind MapKeyKind, rv reflect.Value, path []string) error {
	switch kind {
	case MapKeyInt:
		if k.Kind != wire.KeyInt {
			return errors.ShapeMismatch(path, k.Offset, "integer key", "byte-string key")
		}
		if rv.OverflowInt(k.Int) {
			return errors.Overflow(path, k.Offset, k.Int, rv.Type().String())
		}
		rv.SetInt(k.Int)
		return nil

	case MapKeyText:
		if k.Kind == wire.KeyInt {
			rv.SetString(strconv.FormatInt(k.Int, 10))
			return nil
		}
		if !utf8.Valid(k.Bytes) {
			return errors.InvalidUTF8(path, k.Offset, k.Bytes)
		}
		rv.SetString(string(k.Bytes))
		return nil

	default: // MapKeyAny
		if k.Kind == wire.KeyInt {
			rv.Set(reflect.ValueOf(k.Int))
			return nil
		}
		rv.Set(reflect.ValueOf(string(k.Bytes)))
		return nil
	}
}

func (d *Decoder) decodeRecordInto(v *wire.Value, s *Shape, rv reflect.Value, path []string) error {
	if v.Kind != wire.KindArray {
		return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}

	seen := make([]bool, len(s.Fields))
	for _, e := range v.Elems {
		idx := findField(s.Fields, e.Key)
		if idx < 0 {
			continue // unknown keys are ignored
		}
		f := s.Fields[idx]
		if seen[idx] {
			return errors.DuplicateKey(path, e.Key.Offset, e.Key.String())
		}
		seen[idx] = true

		fieldPath := append(append([]string{}, path...), string(f.Name))
		if err := d.decodeInto(e.Value, f.Shape, rv.Field(f.Index), fieldPath); err != nil {
			return err
		}
	}

	for i, f := range s.Fields {
		if seen[i] || f.Optional {
			continue
		}
		return errors.FieldMissing(path, v.Offset, string(f.Name))
	}
	return nil
}

// findField matches an array key against record fields. Byte-string keys
// match by exact bytes; integer keys match the field whose name is the
// key's decimal rendering.
func findField(fields []Field, k wire.Key) int {
	if k.Kind == wire.KeyBytes {
		for i := range fields {
			if bytes.Equal(fields[i].Name, k.Bytes) {
				return i
			}
		}
		return -1
	}
	decimal := strconv.AppendInt(nil, k.Int, 10)
	for i := range fields {
		if bytes.Equal(fields[i].Name, decimal) {
			return i
		}
	}
	return -1
}

// decodeDynamic walks hand-built shapes without a Go type, producing
// structural results.
func (d *Decoder) decodeDynamic(v *wire.Value, s *Shape, path []string) (any, error) {
	switch s.Kind {
	case KindOptional:
		if v.Kind == wire.KindNull {
			return nil, nil
		}
		return d.decodeDynamic(v, s.Elem, path)

	case KindBool:
		if v.Kind != wire.KindBool {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		return v.Bool, nil

	case KindInt:
		return intFrom(v, s, path)

	case KindFloat:
		return floatFrom(v, s, path)

	case KindText:
		return textFrom(v, s, path)

	case KindBytes:
		if v.Kind != wire.KindBytes {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		return append([]byte(nil), v.Bytes...), nil

	case KindSequence:
		if err := checkSequence(v, s, path); err != nil {
			return nil, err
		}
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
			elem, err := d.decodeDynamic(e.Value, s.Elem, elemPath)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil

	case KindMap:
		if v.Kind != wire.KindArray {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		out := make(map[any]any, len(v.Elems))
		for _, e := range v.Elems {
			id := e.Key.String()
			key, err := dynamicMapKey(e.Key, s.KeyKind, path)
			if err != nil {
				return nil, err
			}
			if _, dup := out[key]; dup {
				return nil, errors.DuplicateKey(path, e.Key.Offset, id)
			}
			elemPath := append(append([]string{}, path...), "["+id+"]")
			elem, err := d.decodeDynamic(e.Value, s.Elem, elemPath)
			if err != nil {
				return nil, err
			}
			out[key] = elem
		}
		return out, nil

	case KindRecord:
		if v.Kind != wire.KindArray {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		out := make(map[string]any, len(s.Fields))
		seen := make([]bool, len(s.Fields))
		for _, e := range v.Elems {
			idx := findField(s.Fields, e.Key)
			if idx < 0 {
				continue
			}
			f := s.Fields[idx]
			if seen[idx] {
				return nil, errors.DuplicateKey(path, e.Key.Offset, e.Key.String())
			}
			seen[idx] = true

			fieldPath := append(append([]string{}, path...), string(f.Name))
			elem, err := d.decodeDynamic(e.Value, f.Shape, fieldPath)
			if err != nil {
				return nil, err
			}
			out[string(f.Name)] = elem
		}
		for i, f := range s.Fields {
			if seen[i] || f.Optional {
				continue
			}
			return nil, errors.FieldMissing(path, v.Offset, string(f.Name))
		}
		return out, nil

	case KindUnitRecord:
		if v.Kind != wire.KindArray {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
		}
		if len(v.Elems) != 0 {
			return nil, errors.ShapeMismatch(path, v.Offset, s.String(),
				"array with "+strconv.Itoa(len(v.Elems))+" entries")
		}
		return map[string]any{}, nil

	default: // KindAny
		return d.decodeAny(v, path)
	}
}

func dynamicMapKey(k wire.Key, kind MapKeyKind, path []string) (any, error) {
	switch kind {
	case MapKeyInt:
		if k.Kind != wire.KeyInt {
			return nil, errors.ShapeMismatch(path, k.Offset, "integer key", "byte-string key")
		}
		return k.Int, nil
	case MapKeyText:
		if k.Kind == wire.KeyInt {
			return strconv.FormatInt(k.Int, 10), nil
		}
		if !utf8.Valid(k.Bytes) {
			return nil, errors.InvalidUTF8(path, k.Offset, k.Bytes)
		}
		return string(k.Bytes), nil
	default:
		if k.Kind == wire.KeyInt {
			return k.Int, nil
		}
		return string(k.Bytes), nil
	}
}

// decodeAny maps a value with no shape constraint onto plain Go data:
// nil, bool, int64, float64, string (valid UTF-8) or []byte, []any for
// arrays keyed 0..n-1, and map[any]any otherwise.
func (d *Decoder) decodeAny(v *wire.Value, path []string) (any, error) {
	switch v.Kind {
	case wire.KindNull:
		return nil, nil
	case wire.KindBool:
		return v.Bool, nil
	case wire.KindInt:
		return v.Int, nil
	case wire.KindFloat:
		return v.Float, nil
	case wire.KindBytes:
		if utf8.Valid(v.Bytes) {
			return string(v.Bytes), nil
		}
		return append([]byte(nil), v.Bytes...), nil
	default:
		if isIndexRun(v.Elems) {
			out := make([]any, len(v.Elems))
			for i, e := range v.Elems {
				elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
				elem, err := d.decodeAny(e.Value, elemPath)
				if err != nil {
					return nil, err
				}
				out[i] = elem
			}
			return out, nil
		}
		out := make(map[any]any, len(v.Elems))
		for _, e := range v.Elems {
			var key any
			if e.Key.Kind == wire.KeyInt {
				key = e.Key.Int
			} else {
				key = string(e.Key.Bytes)
			}
			if _, dup := out[key]; dup {
				return nil, errors.DuplicateKey(path, e.Key.Offset, e.Key.String())
			}
			elemPath := append(append([]string{}, path...), "["+e.Key.String()+"]")
			elem, err := d.decodeAny(e.Value, elemPath)
			if err != nil {
				return nil, err
			}
			out[key] = elem
		}
		return out, nil
	}
}

// isIndexRun reports whether the entries are keyed by the exact integer
// run 0..n-1 in order.
func isIndexRun(elems []wire.Entry) bool {
	for i, e := range elems {
		if e.Key.Kind != wire.KeyInt || e.Key.Int != int64(i) {
			return false
		}
	}
	return true
}

func checkSequence(v *wire.Value, s *Shape, path []string) error {
	if v.Kind != wire.KindArray {
		return errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}
	for i, e := range v.Elems {
		if e.Key.Kind != wire.KeyInt || e.Key.Int != int64(i) {
			return errors.New(errors.PhaseDecode, errors.KindShapeMismatch).
				Path(path...).
				Offset(e.Key.Offset).
				Shape(s.String()).
				Got("array with key " + e.Key.String() + " at position " + strconv.Itoa(i)).
				Build()
		}
	}
	return nil
}

// intFrom extracts an integer, accepting a float only when it carries an
// exactly representable integral value.
func intFrom(v *wire.Value, s *Shape, path []string) (int64, error) {
	switch v.Kind {
	case wire.KindInt:
		return v.Int, nil
	case wire.KindFloat:
		f := v.Float
		if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, errors.Overflow(path, v.Offset, f, s.String())
		}
		return int64(f), nil
	default:
		return 0, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}
}

// floatFrom extracts a float, widening integers exactly.
func floatFrom(v *wire.Value, s *Shape, path []string) (float64, error) {
	switch v.Kind {
	case wire.KindFloat:
		return v.Float, nil
	case wire.KindInt:
		return float64(v.Int), nil
	default:
		return 0, errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}
}

func textFrom(v *wire.Value, s *Shape, path []string) (string, error) {
	if v.Kind != wire.KindBytes {
		return "", errors.ShapeMismatch(path, v.Offset, s.String(), v.Kind.String())
	}
	if !utf8.Valid(v.Bytes) {
		return "", errors.InvalidUTF8(path, v.Offset, v.Bytes)
	}
	return string(v.Bytes), nil
}

// roundTrips32 reports whether f survives narrowing to float32. NaN and
// infinities always narrow cleanly.
func roundTrips32(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return true
	}
	return float64(float32(f)) == f
}
