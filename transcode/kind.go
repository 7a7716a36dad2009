package transcode

// ShapeKind identifies the structural kind a decoded value must satisfy.
type ShapeKind uint8

const (
	KindBool ShapeKind = iota
	KindInt
	KindFloat
	KindText
	KindBytes
	KindOptional
	KindSequence
	KindMap
	KindRecord
	KindUnitRecord
	KindAny
)

func (k ShapeKind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindOptional:
		return "optional"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	case KindUnitRecord:
		return "unit record"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// MapKeyKind constrains the keys a map shape accepts.
type MapKeyKind uint8

const (
	MapKeyInt MapKeyKind = iota
	MapKeyText
	// MapKeyAny accepts both integer and byte-string keys; used for
	// free-form decoding.
	MapKeyAny
)

func (k MapKeyKind) String() string {
	switch k {
	case MapKeyInt:
		return "integer"
	case MapKeyText:
		return "text"
	case MapKeyAny:
		return "any"
	default:
		return "unknown"
	}
}
