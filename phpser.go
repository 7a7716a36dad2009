package phpser

import (
	"github.com/phpser/phpser/transcode"
	"github.com/phpser/phpser/wire"
)

// Shared defaults behind the package-level API. The compiler cache makes
// these cheap to share between every caller.
var (
	defaultDecoder = transcode.NewDecoder()
	defaultEncoder = transcode.NewEncoder()
)

// Unmarshal parses data and stores the result in the value pointed to by
// target. See package transcode for the type mapping and coercion rules.
func Unmarshal(data []byte, target any) error {
	return defaultDecoder.Unmarshal(data, target)
}

// Marshal returns the canonical serialized form of v.
func Marshal(v any) ([]byte, error) {
	return defaultEncoder.Marshal(v)
}

// Parse reads data into a value tree without applying any shape. The tree
// preserves key order and byte offsets for every node.
func Parse(data []byte, opts ...wire.Option) (*wire.Value, error) {
	return wire.Parse(data, opts...)
}
