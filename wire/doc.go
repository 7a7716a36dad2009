// Package wire implements the byte format: the language-neutral Value
// model, the recursive-descent value parser, and the canonical encoder.
//
// A serialized node is a one-letter tag followed by tag-specific
// punctuation and payload:
//
//	N;                            null
//	b:0;  b:1;                    boolean
//	i:<decimal>;                  signed 64-bit integer
//	d:<decimal-or-special>;       64-bit float (NAN, INF, -INF)
//	s:<byte-length>:"<bytes>";    byte-string, length counts raw bytes
//	a:<count>:{<pairs>}           array of key/value node pairs
//
// Parse builds an immutable Value tree with exact length accounting: a
// declared array count or string byte length that does not match the
// actual content is an error, never silently tolerated. Object, reference
// and enum tags are rejected as unsupported.
//
// The parser records each node's byte offset so that shape-directed
// decoding (package transcode) can report precise positions.
package wire
