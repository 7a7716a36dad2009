package wire

// Type tags identifying the kind of a serialized node.
const (
	TagNull   = 'N'
	TagBool   = 'b'
	TagInt    = 'i'
	TagFloat  = 'd'
	TagString = 's'
	TagArray  = 'a'
)

// Tags the format defines but this implementation rejects.
const (
	TagObject       = 'O'
	TagCustomObject = 'C'
	TagRef          = 'r'
	TagValueRef     = 'R'
	TagEnum         = 'E'
)

// Fixed punctuation bytes.
const (
	SepColon      = ':'
	SepSemicolon  = ';'
	SepQuote      = '"'
	SepOpenBrace  = '{'
	SepCloseBrace = '}'
)

// Textual tokens for float special values.
const (
	FloatNaN    = "NAN"
	FloatInf    = "INF"
	FloatNegInf = "-INF"
)

// DefaultMaxDepth bounds array nesting during parsing and encoding.
const DefaultMaxDepth = 128
