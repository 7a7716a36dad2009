// Package transcode converts between Go values and the serialized byte
// format parsed by package wire.
//
// # Overview
//
// Decoding is shape-directed: a compiled shape describes the structure a
// value must have, and the decoder applies it to a parsed tree:
//
//	┌────────────────────────────────────────────────────────┐
//	│ Go Value ←→ [Transcode] ←→ wire.Value ←→ raw bytes     │
//	└────────────────────────────────────────────────────────┘
//
// # Key Types
//
//	Compiler - Turns Go types into Shape descriptors, with caching
//	Shape    - Structural expectation for a decoded value
//	Decoder  - Applies shapes to parsed values
//	Encoder  - Renders Go values to canonical bytes
//
// # Shape Compilation
//
// Go types map onto shapes as follows:
//
//	Go type             Shape
//	─────────────────────────────
//	bool                boolean
//	int*/uint*          integer (width-checked on decode)
//	float32/float64     float
//	string              text (must be valid UTF-8)
//	[]byte, [N]byte     byte-string
//	[]T, [N]T           sequence keyed 0..n-1
//	map[K]V             map (K must be string or integer)
//	*T                  optional
//	struct              record matched by field name
//	any                 free-form
//
// Struct fields honor `php:"name"` tags; `php:"-"` skips a field and
// unexported fields are never considered. Pointer fields are optional:
// missing keys and nulls decode to nil, and nil values are omitted from
// output entirely.
//
// Shapes can also be built by hand with the constructor functions (Bool,
// SequenceOf, RecordOf, ...) and applied with Decoder.DecodeValue, which
// returns structural results without any target type.
//
// # Coercions
//
// Decoding applies a small set of exact numeric coercions: integers widen
// to floats, and floats bind to integer targets only when their value is
// integral and representable. Anything lossy fails with coercion_overflow.
//
// # Canonical Output
//
// The encoder always produces canonical bytes: exact length prefixes,
// sorted map keys (integers ascending, then text in byte order), and
// locale-independent float rendering. Encoding is depth-limited to reject
// cyclic values.
//
// # Thread Safety
//
// Compiler, Shape, Decoder and Encoder are all safe for concurrent use.
//
// # Error Handling
//
// Errors use the structured types from the errors package:
//
//	[decode] shape_mismatch at user.age (offset 27): expected integer, got byte-string
//	[decode] field_missing at user: required field "name" not found
package transcode
