package transcode

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	perrors "github.com/phpser/phpser/errors"
	"github.com/phpser/phpser/wire"
)

func mustUnmarshal(t *testing.T, input string, target any) {
	t.Helper()
	if err := NewDecoder().Unmarshal([]byte(input), target); err != nil {
		t.Fatalf("Unmarshal(%q): %v", input, err)
	}
}

func unmarshalErrKind(t *testing.T, input string, target any, kind perrors.Kind) {
	t.Helper()
	err := NewDecoder().Unmarshal([]byte(input), target)
	if err == nil {
		t.Fatalf("Unmarshal(%q): expected error", input)
	}
	var pe *perrors.Error
	if !errors.As(err, &pe) {
		t.Fatalf("Unmarshal(%q): error %v is not a structured error", input, err)
	}
	if pe.Kind != kind {
		t.Errorf("Unmarshal(%q): got kind %s, want %s (%v)", input, pe.Kind, kind, err)
	}
}

func TestDecodeScalars(t *testing.T) {
	var b bool
	mustUnmarshal(t, "b:1;", &b)
	if !b {
		t.Error("b:1; decoded as false")
	}

	var n int
	mustUnmarshal(t, "i:-42;", &n)
	if n != -42 {
		t.Errorf("i:-42; decoded as %d", n)
	}

	var f float64
	mustUnmarshal(t, "d:1.5;", &f)
	if f != 1.5 {
		t.Errorf("d:1.5; decoded as %g", f)
	}

	var s string
	mustUnmarshal(t, `s:5:"hello";`, &s)
	if s != "hello" {
		t.Errorf("string decoded as %q", s)
	}

	var raw []byte
	mustUnmarshal(t, "s:2:\"\xff\xfe\";", &raw)
	if !bytes.Equal(raw, []byte{0xff, 0xfe}) {
		t.Errorf("bytes decoded as %x", raw)
	}
}

func TestDecodeBoolStrict(t *testing.T) {
	var b bool
	unmarshalErrKind(t, "i:1;", &b, perrors.KindShapeMismatch)
	unmarshalErrKind(t, `s:4:"true";`, &b, perrors.KindShapeMismatch)
}

func TestDecodeFloatSpecials(t *testing.T) {
	var f float64
	mustUnmarshal(t, "d:NAN;", &f)
	if !math.IsNaN(f) {
		t.Errorf("d:NAN; decoded as %g", f)
	}
	mustUnmarshal(t, "d:-INF;", &f)
	if !math.IsInf(f, -1) {
		t.Errorf("d:-INF; decoded as %g", f)
	}
}

func TestDecodeIntCoercion(t *testing.T) {
	var n int
	mustUnmarshal(t, "d:3.0;", &n)
	if n != 3 {
		t.Errorf("d:3.0; decoded as %d", n)
	}
	unmarshalErrKind(t, "d:3.5;", &n, perrors.KindCoercionOverflow)
	unmarshalErrKind(t, "d:1.0E+30;", &n, perrors.KindCoercionOverflow)
}

func TestDecodeIntOverflow(t *testing.T) {
	var small int8
	mustUnmarshal(t, "i:127;", &small)
	if small != 127 {
		t.Errorf("i:127; decoded as %d", small)
	}
	unmarshalErrKind(t, "i:128;", &small, perrors.KindCoercionOverflow)

	var u uint16
	unmarshalErrKind(t, "i:-1;", &u, perrors.KindCoercionOverflow)
	unmarshalErrKind(t, "i:65536;", &u, perrors.KindCoercionOverflow)
	mustUnmarshal(t, "i:65535;", &u)
	if u != 65535 {
		t.Errorf("i:65535; decoded as %d", u)
	}
}

func TestDecodeFloatCoercion(t *testing.T) {
	var f float64
	mustUnmarshal(t, "i:7;", &f)
	if f != 7 {
		t.Errorf("i:7; decoded as %g", f)
	}

	// 1.5 narrows to float32 without loss, 1.1 does not.
	var f32 float32
	mustUnmarshal(t, "d:1.5;", &f32)
	if f32 != 1.5 {
		t.Errorf("d:1.5; decoded as %g", f32)
	}
	unmarshalErrKind(t, "d:1.1;", &f32, perrors.KindCoercionOverflow)
}

func TestDecodeTextInvalidUTF8(t *testing.T) {
	var s string
	unmarshalErrKind(t, "s:1:\"\xff\";", &s, perrors.KindInvalidUTF8)
}

func TestDecodeOptional(t *testing.T) {
	var p *int
	mustUnmarshal(t, "N;", &p)
	if p != nil {
		t.Errorf("N; decoded as %v", *p)
	}
	mustUnmarshal(t, "i:5;", &p)
	if p == nil || *p != 5 {
		t.Errorf("i:5; decoded as %v", p)
	}
}

func TestDecodeSequence(t *testing.T) {
	var got []string
	mustUnmarshal(t, `a:3:{i:0;s:1:"a";i:1;s:1:"b";i:2;s:1:"c";}`, &got)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("sequence decoded as %v", got)
	}

	var empty []int
	mustUnmarshal(t, "a:0:{}", &empty)
	if len(empty) != 0 {
		t.Errorf("empty array decoded as %v", empty)
	}
}

func TestDecodeSequenceOrdering(t *testing.T) {
	// The key set is complete but not in index order.
	var got []string
	unmarshalErrKind(t, `a:3:{i:1;s:1:"a";i:0;s:1:"b";i:2;s:1:"c";}`, &got, perrors.KindShapeMismatch)

	// Text keys never satisfy a sequence.
	unmarshalErrKind(t, `a:1:{s:1:"x";s:1:"a";}`, &got, perrors.KindShapeMismatch)
}

func TestDecodeFixedArray(t *testing.T) {
	var got [2]int
	mustUnmarshal(t, "a:2:{i:0;i:10;i:1;i:20;}", &got)
	if got != [2]int{10, 20} {
		t.Errorf("fixed array decoded as %v", got)
	}
	unmarshalErrKind(t, "a:1:{i:0;i:10;}", &got, perrors.KindLengthMismatch)

	var buf [3]byte
	mustUnmarshal(t, `s:3:"abc";`, &buf)
	if buf != [3]byte{'a', 'b', 'c'} {
		t.Errorf("byte array decoded as %q", buf)
	}
	unmarshalErrKind(t, `s:2:"ab";`, &buf, perrors.KindLengthMismatch)
}

func TestDecodeMap(t *testing.T) {
	var got map[string]int64
	mustUnmarshal(t, `a:2:{s:1:"a";i:1;s:1:"b";i:2;}`, &got)
	if !reflect.DeepEqual(got, map[string]int64{"a": 1, "b": 2}) {
		t.Errorf("map decoded as %v", got)
	}

	var byIndex map[int]string
	mustUnmarshal(t, `a:2:{i:3;s:1:"x";i:7;s:1:"y";}`, &byIndex)
	if !reflect.DeepEqual(byIndex, map[int]string{3: "x", 7: "y"}) {
		t.Errorf("int-keyed map decoded as %v", byIndex)
	}
}

func TestDecodeMapIntegerKeyCoercion(t *testing.T) {
	// Integer keys bind to text-keyed maps through their decimal form,
	// the inverse of the writer folding numeric strings to integers.
	var got map[string]string
	mustUnmarshal(t, `a:1:{i:42;s:1:"x";}`, &got)
	if !reflect.DeepEqual(got, map[string]string{"42": "x"}) {
		t.Errorf("map decoded as %v", got)
	}

	// Text keys never bind to integer-keyed maps.
	var byIndex map[int]string
	unmarshalErrKind(t, `a:1:{s:1:"a";s:1:"x";}`, &byIndex, perrors.KindShapeMismatch)
}

func TestDecodeMapDuplicateKey(t *testing.T) {
	var got map[string]int
	unmarshalErrKind(t, `a:2:{s:1:"a";i:1;s:1:"a";i:2;}`, &got, perrors.KindDuplicateKey)

	// An integer key and its decimal text form bind to the same Go key,
	// so the pair counts as a duplicate even though the wire forms differ.
	var byText map[string]string
	unmarshalErrKind(t, `a:2:{i:1;s:1:"x";s:1:"1";s:1:"y";}`, &byText, perrors.KindDuplicateKey)

	var byAny map[any]any
	unmarshalErrKind(t, `a:2:{i:3;b:1;i:3;b:0;}`, &byAny, perrors.KindDuplicateKey)
}

type login struct {
	User  string `php:"user"`
	Pass  string `php:"password"`
	Token *string
}

func TestDecodeRecord(t *testing.T) {
	var got login
	mustUnmarshal(t, `a:2:{s:4:"user";s:5:"admin";s:8:"password";s:6:"secret";}`, &got)
	if got.User != "admin" || got.Pass != "secret" || got.Token != nil {
		t.Errorf("record decoded as %+v", got)
	}
}

type nested struct {
	Foo bool   `php:"foo"`
	Bar string `php:"bar"`
	Sub struct {
		X int64 `php:"x"`
	} `php:"sub"`
}

func TestDecodeRecordNested(t *testing.T) {
	var got nested
	mustUnmarshal(t, `a:3:{s:3:"foo";b:1;s:3:"bar";s:3:"xyz";s:3:"sub";a:1:{s:1:"x";i:42;}}`, &got)
	if !got.Foo || got.Bar != "xyz" || got.Sub.X != 42 {
		t.Errorf("record decoded as %+v", got)
	}
}

type address struct {
	Province   *string `php:"province"`
	PostalCode *string `php:"postalcode"`
	Country    *string `php:"country"`
}

func TestDecodeRecordOptionalFields(t *testing.T) {
	var got address
	mustUnmarshal(t, `a:1:{s:8:"province";s:3:"xyz";}`, &got)
	if got.Province == nil || *got.Province != "xyz" {
		t.Errorf("province decoded as %v", got.Province)
	}
	if got.PostalCode != nil || got.Country != nil {
		t.Errorf("absent fields decoded as %+v", got)
	}

	// Explicit null behaves like absence.
	got = address{}
	mustUnmarshal(t, `a:2:{s:8:"province";N;s:7:"country";s:2:"ca";}`, &got)
	if got.Province != nil {
		t.Errorf("null province decoded as %v", *got.Province)
	}
	if got.Country == nil || *got.Country != "ca" {
		t.Errorf("country decoded as %v", got.Country)
	}
}

func TestDecodeRecordFieldMissing(t *testing.T) {
	var got login
	unmarshalErrKind(t, `a:1:{s:4:"user";s:5:"admin";}`, &got, perrors.KindFieldMissing)
}

func TestDecodeRecordDuplicateKey(t *testing.T) {
	var got login
	input := `a:3:{s:4:"user";s:1:"a";s:4:"user";s:1:"b";s:8:"password";s:1:"p";}`
	unmarshalErrKind(t, input, &got, perrors.KindDuplicateKey)
}

func TestDecodeRecordUnknownKeysIgnored(t *testing.T) {
	var got login
	mustUnmarshal(t, `a:3:{s:4:"user";s:1:"u";s:8:"password";s:1:"p";s:5:"extra";i:9;}`, &got)
	if got.User != "u" || got.Pass != "p" {
		t.Errorf("record decoded as %+v", got)
	}
}

type pair struct {
	Name   string   `php:"0"`
	Label  string   `php:"1"`
	Unit   struct{} `php:"2"`
	hidden int
}

func TestDecodeRecordIntegerKey(t *testing.T) {
	// Integer keys bind to fields whose name is the key's decimal form,
	// which is how positional tuples arrive on the wire.
	var got pair
	mustUnmarshal(t, `a:3:{i:0;s:4:"user";i:1;s:0:"";i:2;a:0:{}}`, &got)
	if got.Name != "user" || got.Label != "" {
		t.Errorf("tuple decoded as %+v", got)
	}
}

func TestDecodeUnitRecord(t *testing.T) {
	var got struct{}
	mustUnmarshal(t, "a:0:{}", &got)
	unmarshalErrKind(t, "i:0;", &got, perrors.KindShapeMismatch)
	unmarshalErrKind(t, `a:1:{s:1:"x";i:1;}`, &got, perrors.KindShapeMismatch)
}

func TestDecodeAny(t *testing.T) {
	var got any
	mustUnmarshal(t, "N;", &got)
	if got != nil {
		t.Errorf("N; decoded as %v", got)
	}

	mustUnmarshal(t, `a:2:{i:0;i:1;i:1;s:1:"x";}`, &got)
	if !reflect.DeepEqual(got, []any{int64(1), "x"}) {
		t.Errorf("index run decoded as %#v", got)
	}

	mustUnmarshal(t, `a:2:{s:1:"a";i:1;i:5;b:1;}`, &got)
	want := map[any]any{"a": int64(1), int64(5): true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mixed keys decoded as %#v", got)
	}

	mustUnmarshal(t, "s:1:\"\xff\";", &got)
	if !bytes.Equal(got.([]byte), []byte{0xff}) {
		t.Errorf("non-text bytes decoded as %#v", got)
	}
}

func TestDecodeRejectedTags(t *testing.T) {
	var got any
	unmarshalErrKind(t, `O:3:"Foo":0:{}`, &got, perrors.KindUnsupported)
	unmarshalErrKind(t, "r:1;", &got, perrors.KindUnsupported)
}

func TestDecodeTargetValidation(t *testing.T) {
	d := NewDecoder()

	if err := d.Unmarshal([]byte("i:1;"), nil); err == nil {
		t.Error("nil target accepted")
	}

	var n int
	if err := d.Unmarshal([]byte("i:1;"), n); err == nil {
		t.Error("non-pointer target accepted")
	}

	var p *int
	if err := d.Unmarshal([]byte("i:1;"), p); err == nil {
		t.Error("nil pointer target accepted")
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	input := []byte(`a:1:{i:0;a:1:{i:0;a:1:{i:0;i:1;}}}`)
	var got any
	if err := NewDecoder(WithMaxDepth(3)).Unmarshal(input, &got); err != nil {
		t.Fatalf("depth 3 rejected: %v", err)
	}
	err := NewDecoder(WithMaxDepth(2)).Unmarshal(input, &got)
	var pe *perrors.Error
	if !errors.As(err, &pe) || pe.Kind != perrors.KindRecursionLimit {
		t.Errorf("depth 2: got %v, want recursion limit", err)
	}
}

func TestDecodeValueDynamic(t *testing.T) {
	shape := RecordOf(
		FieldOf("name", Text(), false),
		FieldOf("age", Int64(), false),
		FieldOf("nick", Text(), true),
	)

	v, err := wire.Parse([]byte(`a:2:{s:4:"name";s:5:"alice";s:3:"age";i:30;}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewDecoder().DecodeValue(v, shape)
	if err != nil {
		t.Fatal(err)
	}
	record, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("decoded as %T", got)
	}
	if record["name"] != "alice" || record["age"] != int64(30) {
		t.Errorf("decoded as %v", record)
	}
	if _, present := record["nick"]; present {
		t.Errorf("absent optional field present: %v", record["nick"])
	}
}

func TestDecodeValueTyped(t *testing.T) {
	c := NewCompiler()
	shape, err := c.Compile(reflect.TypeOf([]int64(nil)))
	if err != nil {
		t.Fatal(err)
	}
	v, err := wire.Parse([]byte("a:2:{i:0;i:10;i:1;i:20;}"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewDecoderWithCompiler(c).DecodeValue(v, shape)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int64{10, 20}) {
		t.Errorf("decoded as %#v", got)
	}
}

func TestDecodeErrorPath(t *testing.T) {
	var got nested
	err := NewDecoder().Unmarshal([]byte(`a:3:{s:3:"foo";b:1;s:3:"bar";s:3:"xyz";s:3:"sub";a:1:{s:1:"x";s:1:"y";}}`), &got)
	var pe *perrors.Error
	if !errors.As(err, &pe) {
		t.Fatalf("got %v", err)
	}
	if len(pe.Path) != 2 || pe.Path[0] != "sub" || pe.Path[1] != "x" {
		t.Errorf("error path: got %v, want [sub x]", pe.Path)
	}
}
