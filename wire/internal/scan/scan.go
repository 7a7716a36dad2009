// Package scan implements the byte-level cursor underlying the value parser.
//
// The Scanner recognizes fixed punctuation, extracts decimal numbers and
// length-prefixed payloads, and tracks the byte position for error
// reporting. It performs no semantic interpretation.
package scan

import (
	"math"
	"strconv"

	"github.com/phpser/phpser/errors"
)

// Scanner is a cursor over an immutable byte buffer. Every successful read
// advances the cursor; a failed read leaves the cursor at the offending byte.
type Scanner struct {
	data []byte
	pos  int
}

// New creates a Scanner over data. The buffer is not copied and must not be
// mutated while the Scanner is in use.
func New(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Pos returns the current byte position.
func (s *Scanner) Pos() int {
	return s.pos
}

// Remaining returns the number of unread bytes.
func (s *Scanner) Remaining() int {
	return len(s.data) - s.pos
}

// Peek returns the next byte without consuming it. The second return value
// is false at end of input.
func (s *Scanner) Peek() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	return s.data[s.pos], true
}

// Next consumes and returns the next byte.
func (s *Scanner) Next() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, errors.Truncated(errors.PhaseScan, s.pos)
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// Expect consumes the next byte and fails unless it equals want. On
// mismatch the cursor stays on the offending byte.
func (s *Scanner) Expect(want byte) error {
	if s.pos >= len(s.data) {
		return errors.Truncated(errors.PhaseScan, s.pos)
	}
	if s.data[s.pos] != want {
		return errors.Unexpected(errors.PhaseScan, s.pos, want, s.data[s.pos])
	}
	s.pos++
	return nil
}

// ReadUnsigned reads one or more ASCII decimal digits as a non-negative
// int64. The first non-digit byte is left unconsumed.
func (s *Scanner) ReadUnsigned() (int64, error) {
	c, ok := s.Peek()
	if !ok {
		return 0, errors.Truncated(errors.PhaseScan, s.pos)
	}
	if c < '0' || c > '9' {
		return 0, errors.Malformed(errors.PhaseScan, s.pos, "expected digit, got "+quoteByte(c))
	}

	start := s.pos
	var n int64
	for {
		c, ok := s.Peek()
		if !ok || c < '0' || c > '9' {
			return n, nil
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			s.pos = start
			return 0, errors.New(errors.PhaseScan, errors.KindCoercionOverflow).
				Offset(start).
				Detail("decimal literal exceeds 64-bit range").
				Build()
		}
		n = n*10 + d
		s.pos++
	}
}

// ReadDecimal reads a signed decimal integer: an optional '-' or '+' sign
// followed by one or more digits.
func (s *Scanner) ReadDecimal() (int64, error) {
	start := s.pos
	neg := false
	if c, ok := s.Peek(); ok && (c == '-' || c == '+') {
		neg = c == '-'
		s.pos++
	}

	c, ok := s.Peek()
	if !ok {
		s.pos = start
		return 0, errors.Truncated(errors.PhaseScan, start)
	}
	if c < '0' || c > '9' {
		return 0, errors.Malformed(errors.PhaseScan, s.pos, "expected digit, got "+quoteByte(c))
	}

	// Accumulate negated so MinInt64 round-trips.
	var n int64
	for {
		c, ok := s.Peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		d := int64(c - '0')
		if n < (math.MinInt64+d)/10 {
			s.pos = start
			return 0, errors.New(errors.PhaseScan, errors.KindCoercionOverflow).
				Offset(start).
				Detail("decimal literal exceeds 64-bit range").
				Build()
		}
		n = n*10 - d
		s.pos++
	}

	if neg {
		return n, nil
	}
	if n == math.MinInt64 {
		s.pos = start
		return 0, errors.New(errors.PhaseScan, errors.KindCoercionOverflow).
			Offset(start).
			Detail("decimal literal exceeds 64-bit range").
			Build()
	}
	return -n, nil
}

// ReadExact returns the next n bytes as a sub-slice of the input buffer,
// failing with the cursor unmoved if fewer remain. The result aliases the
// Scanner's buffer.
func (s *Scanner) ReadExact(n int) ([]byte, error) {
	if n > len(s.data)-s.pos {
		return nil, errors.Truncated(errors.PhaseScan, len(s.data))
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func quoteByte(c byte) string {
	return strconv.QuoteRune(rune(c))
}
