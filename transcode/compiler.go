package transcode

import (
	"reflect"
	"strings"
	"sync"

	"github.com/phpser/phpser/errors"
)

// Compiler turns Go types into shape descriptors. Compiled shapes are
// cached by reflect.Type, so repeated decodes of the same target pay the
// reflection cost once.
type Compiler struct {
	cache sync.Map // reflect.Type -> *Shape
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile returns the shape for goType, building and caching it on first
// use. Types the format cannot express (channels, funcs, complex numbers,
// non-empty interfaces) fail with a compile-phase error.
func (c *Compiler) Compile(goType reflect.Type) (*Shape, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Detail("Go type cannot be nil").
			Build()
	}

	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*Shape), nil
	}

	s, err := c.compile(goType, nil, make(map[reflect.Type]*Shape))
	if err != nil {
		return nil, err
	}

	debugf("compiled %s as %s", goType, s)
	c.cache.Store(goType, s)
	return s, nil
}

// compile does the real work. inProgress holds placeholder shapes for
// struct types currently being compiled, so self-referential types resolve
// to the same descriptor instead of recursing forever.
func (c *Compiler) compile(goType reflect.Type, path []string, inProgress map[reflect.Type]*Shape) (*Shape, error) {
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*Shape), nil
	}
	if pending, ok := inProgress[goType]; ok {
		return pending, nil
	}

	switch goType.Kind() {
	case reflect.Bool:
		return &Shape{GoType: goType, Kind: KindBool}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Shape{GoType: goType, Kind: KindInt, Bits: goType.Bits()}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Shape{GoType: goType, Kind: KindInt, Bits: goType.Bits(), Unsigned: true}, nil

	case reflect.Float32, reflect.Float64:
		return &Shape{GoType: goType, Kind: KindFloat, Bits: goType.Bits()}, nil

	case reflect.String:
		return &Shape{GoType: goType, Kind: KindText}, nil

	case reflect.Ptr:
		elem, err := c.compile(goType.Elem(), path, inProgress)
		if err != nil {
			return nil, err
		}
		return &Shape{GoType: goType, Kind: KindOptional, Elem: elem}, nil

	case reflect.Slice:
		if goType.Elem().Kind() == reflect.Uint8 {
			return &Shape{GoType: goType, Kind: KindBytes, ArrayLen: -1}, nil
		}
		elemPath := append(append([]string{}, path...), "[elem]")
		elem, err := c.compile(goType.Elem(), elemPath, inProgress)
		if err != nil {
			return nil, err
		}
		return &Shape{GoType: goType, Kind: KindSequence, Elem: elem, ArrayLen: -1}, nil

	case reflect.Array:
		if goType.Elem().Kind() == reflect.Uint8 {
			return &Shape{GoType: goType, Kind: KindBytes, ArrayLen: goType.Len()}, nil
		}
		elemPath := append(append([]string{}, path...), "[elem]")
		elem, err := c.compile(goType.Elem(), elemPath, inProgress)
		if err != nil {
			return nil, err
		}
		return &Shape{GoType: goType, Kind: KindSequence, Elem: elem, ArrayLen: goType.Len()}, nil

	case reflect.Map:
		return c.compileMap(goType, path, inProgress)

	case reflect.Struct:
		return c.compileStruct(goType, path, inProgress)

	case reflect.Interface:
		if goType.NumMethod() == 0 {
			return &Shape{GoType: goType, Kind: KindAny}, nil
		}
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), "empty interface")

	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Path(path...).
			Detail("unsupported Go type %s", goType.String()).
			Build()
	}
}

func (c *Compiler) compileMap(goType reflect.Type, path []string, inProgress map[reflect.Type]*Shape) (*Shape, error) {
	var keyKind MapKeyKind
	switch goType.Key().Kind() {
	case reflect.String:
		keyKind = MapKeyText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		keyKind = MapKeyInt
	case reflect.Interface:
		if goType.Key().NumMethod() != 0 {
			return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.Key().String(), "string or integer map key")
		}
		keyKind = MapKeyAny
	default:
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.Key().String(), "string or integer map key")
	}

	elemPath := append(append([]string{}, path...), "[value]")
	elem, err := c.compile(goType.Elem(), elemPath, inProgress)
	if err != nil {
		return nil, err
	}
	return &Shape{GoType: goType, Kind: KindMap, KeyKind: keyKind, Elem: elem}, nil
}

func (c *Compiler) compileStruct(goType reflect.Type, path []string, inProgress map[reflect.Type]*Shape) (*Shape, error) {
	s := &Shape{GoType: goType, Kind: KindRecord}
	inProgress[goType] = s
	defer delete(inProgress, goType)

	specs := structFields(goType)
	if len(specs) == 0 {
		s.Kind = KindUnitRecord
		return s, nil
	}

	fields := make([]Field, 0, len(specs))
	for _, fs := range specs {
		fieldPath := append(append([]string{}, path...), fs.name)
		shape, err := c.compile(fs.field.Type, fieldPath, inProgress)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{
			Name:     []byte(fs.name),
			Shape:    shape,
			Index:    fs.field.Index[0],
			Optional: shape.Kind == KindOptional,
		})
	}

	s.Fields = fields
	return s, nil
}

// fieldSpec is the resolved serialization identity of one struct field. It
// is shared between the compiler and the encoder so both agree on names
// and skips.
type fieldSpec struct {
	name  string
	field reflect.StructField
}

// structFields lists the serializable fields of a struct type in
// declaration order. Unexported fields and fields tagged `php:"-"` are
// skipped; a `php:"name"` tag overrides the field name.
func structFields(goType reflect.Type) []fieldSpec {
	specs := make([]fieldSpec, 0, goType.NumField())
	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("php"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		specs = append(specs, fieldSpec{name: name, field: f})
	}
	return specs
}
