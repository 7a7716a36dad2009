package wire

import (
	"math"
	"strconv"

	"github.com/phpser/phpser/errors"
	"github.com/phpser/phpser/wire/internal/scan"
)

// Option configures a parse call.
type Option func(*parser)

// WithMaxDepth overrides the array nesting limit. Values below one are
// ignored.
func WithMaxDepth(n int) Option {
	return func(p *parser) {
		if n >= 1 {
			p.maxDepth = n
		}
	}
}

// Parse consumes the entire input and returns the parsed Value tree.
// Trailing bytes after the root node are an error.
func Parse(data []byte, opts ...Option) (*Value, error) {
	v, n, err := ParsePrefix(data, opts...)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, errors.Malformed(errors.PhaseParse, n, "trailing data after value")
	}
	return v, nil
}

// ParsePrefix parses one value from the front of data and returns it along
// with the number of bytes consumed.
func ParsePrefix(data []byte, opts ...Option) (*Value, int, error) {
	p := &parser{s: scan.New(data), maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(p)
	}
	v, err := p.parseValue(0)
	if err != nil {
		return nil, p.s.Pos(), err
	}
	return v, p.s.Pos(), nil
}

type parser struct {
	s        *scan.Scanner
	maxDepth int
}

func (p *parser) parseValue(depth int) (*Value, error) {
	offset := p.s.Pos()
	tag, err := p.s.Next()
	if err != nil {
		return nil, err
	}

	if tag == TagNull {
		// Null is the one tag without a colon.
		if err := p.s.Expect(SepSemicolon); err != nil {
			return nil, err
		}
		return &Value{Kind: KindNull, Offset: offset}, nil
	}

	switch tag {
	case TagBool, TagInt, TagFloat, TagString, TagArray:
		if err := p.s.Expect(SepColon); err != nil {
			return nil, err
		}
	case TagObject, TagCustomObject:
		return nil, errors.Unsupported(errors.PhaseParse, offset, "object serialization")
	case TagRef, TagValueRef:
		return nil, errors.Unsupported(errors.PhaseParse, offset, "reference tag")
	case TagEnum:
		return nil, errors.Unsupported(errors.PhaseParse, offset, "enum serialization")
	default:
		return nil, errors.Malformed(errors.PhaseParse, offset, "invalid type tag "+strconv.QuoteRune(rune(tag)))
	}

	switch tag {
	case TagBool:
		return p.parseBool(offset)
	case TagInt:
		return p.parseInt(offset)
	case TagFloat:
		return p.parseFloat(offset)
	case TagString:
		return p.parseString(offset)
	default:
		return p.parseArray(offset, depth)
	}
}

func (p *parser) parseBool(offset int) (*Value, error) {
	pos := p.s.Pos()
	c, err := p.s.Next()
	if err != nil {
		return nil, err
	}
	if c != '0' && c != '1' {
		return nil, errors.Malformed(errors.PhaseParse, pos, "invalid boolean value "+strconv.QuoteRune(rune(c)))
	}
	if err := p.s.Expect(SepSemicolon); err != nil {
		return nil, err
	}
	return &Value{Kind: KindBool, Bool: c == '1', Offset: offset}, nil
}

func (p *parser) parseInt(offset int) (*Value, error) {
	n, err := p.s.ReadDecimal()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepSemicolon); err != nil {
		return nil, err
	}
	return &Value{Kind: KindInt, Int: n, Offset: offset}, nil
}

func (p *parser) parseFloat(offset int) (*Value, error) {
	start := p.s.Pos()
	var token []byte
	for {
		c, ok := p.s.Peek()
		if !ok {
			return nil, errors.Truncated(errors.PhaseParse, p.s.Pos())
		}
		if c == SepSemicolon {
			break
		}
		token = append(token, c)
		if _, err := p.s.Next(); err != nil {
			return nil, err
		}
	}
	if err := p.s.Expect(SepSemicolon); err != nil {
		return nil, err
	}

	f, err := parseFloatToken(token)
	if err != nil {
		return nil, errors.Malformed(errors.PhaseParse, start, "invalid float literal "+strconv.Quote(string(token)))
	}
	return &Value{Kind: KindFloat, Float: f, Offset: offset}, nil
}

// parseFloatToken accepts the fixed special tokens and locale-independent
// decimal notation with optional sign, fraction, and exponent.
func parseFloatToken(token []byte) (float64, error) {
	switch string(token) {
	case FloatNaN:
		return math.NaN(), nil
	case FloatInf:
		return math.Inf(1), nil
	case FloatNegInf:
		return math.Inf(-1), nil
	}
	if len(token) == 0 {
		return 0, strconv.ErrSyntax
	}
	for _, c := range token {
		switch {
		case c >= '0' && c <= '9':
		case c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E':
		default:
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(string(token), 64)
}

func (p *parser) parseString(offset int) (*Value, error) {
	length, err := p.s.ReadUnsigned()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepColon); err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepQuote); err != nil {
		return nil, err
	}
	data, err := p.s.ReadExact(int(length))
	if err != nil {
		return nil, err
	}
	// The byte after the payload must be the closing quote; anything else
	// means the declared length does not match the actual content.
	if c, ok := p.s.Peek(); ok && c != SepQuote {
		return nil, errors.LengthMismatch(p.s.Pos(),
			"byte-string declared %d bytes but content continues", length)
	}
	if err := p.s.Expect(SepQuote); err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepSemicolon); err != nil {
		return nil, err
	}
	return &Value{Kind: KindBytes, Bytes: data, Offset: offset}, nil
}

func (p *parser) parseArray(offset, depth int) (*Value, error) {
	if depth >= p.maxDepth {
		return nil, errors.RecursionLimit(errors.PhaseParse, offset, p.maxDepth)
	}

	count, err := p.s.ReadUnsigned()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepColon); err != nil {
		return nil, err
	}
	if err := p.s.Expect(SepOpenBrace); err != nil {
		return nil, err
	}

	// The declared count is untrusted; cap the preallocation so a huge
	// prefix cannot force a huge allocation before content validation.
	capHint := count
	if capHint > 1024 {
		capHint = 1024
	}
	elems := make([]Entry, 0, capHint)
	for i := int64(0); i < count; i++ {
		if c, ok := p.s.Peek(); ok && c == SepCloseBrace {
			return nil, errors.LengthMismatch(p.s.Pos(),
				"array declared %d pairs, found %d", count, i)
		}

		key, err := p.parseKey(depth + 1)
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, Entry{Key: key, Value: val})
	}

	c, ok := p.s.Peek()
	if !ok {
		return nil, errors.Truncated(errors.PhaseParse, p.s.Pos())
	}
	if c != SepCloseBrace {
		return nil, errors.LengthMismatch(p.s.Pos(),
			"array declared %d pairs but content continues", count)
	}
	if err := p.s.Expect(SepCloseBrace); err != nil {
		return nil, err
	}

	return &Value{Kind: KindArray, Elems: elems, Offset: offset}, nil
}

func (p *parser) parseKey(depth int) (Key, error) {
	node, err := p.parseValue(depth)
	if err != nil {
		return Key{}, err
	}
	switch node.Kind {
	case KindInt:
		return Key{Kind: KeyInt, Int: node.Int, Offset: node.Offset}, nil
	case KindBytes:
		return Key{Kind: KeyBytes, Bytes: node.Bytes, Offset: node.Offset}, nil
	default:
		return Key{}, errors.Unsupported(errors.PhaseParse, node.Offset,
			"array key of kind "+node.Kind.String())
	}
}
