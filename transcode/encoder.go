package transcode

import (
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/phpser/phpser/errors"
	"github.com/phpser/phpser/wire"
)

// Encoder renders Go values to canonical serialized bytes. Encoding is
// reflection-driven and writes directly, without building a value tree.
// An Encoder is safe for concurrent use.
type Encoder struct {
	maxDepth int
}

func NewEncoder(opts ...Option) *Encoder {
	o := options{maxDepth: wire.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return &Encoder{maxDepth: o.maxDepth}
}

// Marshal encodes v. A nil value encodes as null. Output is canonical:
// map keys are sorted, nil pointer struct fields are omitted, and array
// counts always match the pairs written.
func (e *Encoder) Marshal(v any) ([]byte, error) {
	w := wire.NewWriter()
	if v == nil {
		w.WriteNull()
		return w.Bytes(), nil
	}
	if err := e.encodeValue(w, reflect.ValueOf(v), 0, nil); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (e *Encoder) encodeValue(w *wire.Writer, rv reflect.Value, depth int, path []string) error {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			w.WriteNull()
			return nil
		}
		return e.encodeValue(w, rv.Elem(), depth, path)

	case reflect.Bool:
		w.WriteBool(rv.Bool())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.WriteInt(rv.Int())
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return errors.New(errors.PhaseEncode, errors.KindCoercionOverflow).
				Path(path...).
				Value(u).
				Detail("value %d exceeds maximum integer", u).
				Build()
		}
		w.WriteInt(int64(u))
		return nil

	case reflect.Float32, reflect.Float64:
		w.WriteFloat(rv.Float())
		return nil

	case reflect.String:
		w.WriteText(rv.String())
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			w.WriteBytes(rv.Bytes())
			return nil
		}
		return e.encodeSequence(w, rv, depth, path)

	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			w.WriteBytes(buf)
			return nil
		}
		return e.encodeSequence(w, rv, depth, path)

	case reflect.Map:
		return e.encodeMap(w, rv, depth, path)

	case reflect.Struct:
		return e.encodeStruct(w, rv, depth, path)

	default:
		return errors.TypeMismatch(errors.PhaseEncode, path, rv.Type().String(), "serializable value")
	}
}

func (e *Encoder) encodeSequence(w *wire.Writer, rv reflect.Value, depth int, path []string) error {
	if depth >= e.maxDepth {
		return errors.RecursionLimit(errors.PhaseEncode, errors.NoOffset, e.maxDepth)
	}
	n := rv.Len()
	w.BeginArray(n)
	for i := 0; i < n; i++ {
		w.WriteInt(int64(i))
		elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
		if err := e.encodeValue(w, rv.Index(i), depth+1, elemPath); err != nil {
			return err
		}
	}
	w.EndArray()
	return nil
}

// mapEntry is one resolved map pair awaiting the canonical sort: integer
// keys ascending, then text keys in byte order.
type mapEntry struct {
	text  string
	value reflect.Value
	num   int64
	isInt bool
}

func (e *Encoder) encodeMap(w *wire.Writer, rv reflect.Value, depth int, path []string) error {
	if depth >= e.maxDepth {
		return errors.RecursionLimit(errors.PhaseEncode, errors.NoOffset, e.maxDepth)
	}

	entries := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entry := mapEntry{value: iter.Value()}
		key := iter.Key()
		if key.Kind() == reflect.Interface {
			if key.IsNil() {
				return errors.InvalidInput(errors.PhaseEncode, "map key must not be nil")
			}
			key = key.Elem()
		}
		switch key.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			entry.isInt = true
			entry.num = key.Int()
		case reflect.String:
			entry.text = key.String()
		default:
			return errors.TypeMismatch(errors.PhaseEncode, path, key.Type().String(), "string or integer map key")
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.isInt != b.isInt {
			return a.isInt
		}
		if a.isInt {
			return a.num < b.num
		}
		return a.text < b.text
	})

	w.BeginArray(len(entries))
	for _, entry := range entries {
		var id string
		if entry.isInt {
			w.WriteInt(entry.num)
			id = strconv.FormatInt(entry.num, 10)
		} else {
			w.WriteText(entry.text)
			id = entry.text
		}
		elemPath := append(append([]string{}, path...), "["+id+"]")
		if err := e.encodeValue(w, entry.value, depth+1, elemPath); err != nil {
			return err
		}
	}
	w.EndArray()
	return nil
}

// encodeStruct writes a record array. Nil pointer fields are left out
// entirely rather than written as null, so the declared count reflects
// only the pairs present.
func (e *Encoder) encodeStruct(w *wire.Writer, rv reflect.Value, depth int, path []string) error {
	if depth >= e.maxDepth {
		return errors.RecursionLimit(errors.PhaseEncode, errors.NoOffset, e.maxDepth)
	}

	specs := structFields(rv.Type())
	present := specs[:0:0]
	for _, fs := range specs {
		fv := rv.Field(fs.field.Index[0])
		if fv.Kind() == reflect.Ptr && fv.IsNil() {
			continue
		}
		present = append(present, fs)
	}

	w.BeginArray(len(present))
	for _, fs := range present {
		w.WriteText(fs.name)
		fieldPath := append(append([]string{}, path...), fs.name)
		if err := e.encodeValue(w, rv.Field(fs.field.Index[0]), depth+1, fieldPath); err != nil {
			return err
		}
	}
	w.EndArray()
	return nil
}
