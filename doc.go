// Package phpser reads and writes PHP's native serialize() byte format.
//
// The format is textual and length-prefixed: every string carries an exact
// byte count and every array declares how many key/value pairs follow, so
// inputs can be validated byte for byte and outputs are canonical.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	phpser/              Root package with Marshal/Unmarshal entry points
//	├── wire/            Byte format: parser, value trees, canonical writer
//	├── transcode/       Shape compilation, typed decoding, reflect encoding
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Decode into a struct:
//
//	type User struct {
//	    Name  string  `php:"name"`
//	    Age   int     `php:"age"`
//	    Email *string `php:"email"` // optional
//	}
//
//	var u User
//	err := phpser.Unmarshal([]byte(`a:2:{s:4:"name";s:5:"alice";s:3:"age";i:30;}`), &u)
//
// And back:
//
//	data, err := phpser.Marshal(u)
//
// # Supported Values
//
//   - null, booleans, 64-bit integers, floats (including NAN and INF)
//   - byte-strings with exact length prefixes
//   - arrays with integer and string keys, covering PHP's lists and maps
//
// Object payloads (O:, C:), references (r:, R:) and enums (E:) are
// rejected with a structured unsupported error.
//
// # Inspection
//
// Parsed values can be examined without a target type:
//
//	v, err := phpser.Parse(data)       // *wire.Value tree
//	var anything any
//	err = phpser.Unmarshal(data, &anything)
//
// # Thread Safety
//
// The package-level functions and all exported types are safe for
// concurrent use. Compiled shapes are cached per type, so repeated calls
// for the same target pay the reflection cost once.
package phpser
