package transcode

import (
	"errors"
	"math"
	"reflect"
	"testing"

	perrors "github.com/phpser/phpser/errors"
)

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	out, err := NewEncoder().Marshal(v)
	if err != nil {
		t.Fatalf("Marshal(%#v): %v", v, err)
	}
	return string(out)
}

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "N;"},
		{true, "b:1;"},
		{false, "b:0;"},
		{int(-42), "i:-42;"},
		{int64(math.MaxInt64), "i:9223372036854775807;"},
		{uint8(255), "i:255;"},
		{1.5, "d:1.5;"},
		{math.Inf(-1), "d:-INF;"},
		{"hello", `s:5:"hello";`},
		{"héllo", `s:6:"héllo";`},
		{[]byte{0xff, 0x00}, "s:2:\"\xff\x00\";"},
	}
	for _, tt := range tests {
		if got := mustMarshal(t, tt.value); got != tt.want {
			t.Errorf("Marshal(%#v): got %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestEncodeUintOverflow(t *testing.T) {
	_, err := NewEncoder().Marshal(uint64(math.MaxInt64) + 1)
	var pe *perrors.Error
	if !errors.As(err, &pe) || pe.Kind != perrors.KindCoercionOverflow {
		t.Errorf("got %v, want coercion overflow", err)
	}
}

func TestEncodeSequence(t *testing.T) {
	if got := mustMarshal(t, []string{"a", "b"}); got != `a:2:{i:0;s:1:"a";i:1;s:1:"b";}` {
		t.Errorf("slice encoded as %q", got)
	}
	if got := mustMarshal(t, []int{}); got != "a:0:{}" {
		t.Errorf("empty slice encoded as %q", got)
	}
	if got := mustMarshal(t, [2]int{10, 20}); got != "a:2:{i:0;i:10;i:1;i:20;}" {
		t.Errorf("array encoded as %q", got)
	}
	if got := mustMarshal(t, [3]byte{'a', 'b', 'c'}); got != `s:3:"abc";` {
		t.Errorf("byte array encoded as %q", got)
	}
}

func TestEncodeMapSorted(t *testing.T) {
	// Map iteration order is random; output must not be.
	got := mustMarshal(t, map[string]int{"b": 2, "a": 1, "c": 3})
	if got != `a:3:{s:1:"a";i:1;s:1:"b";i:2;s:1:"c";i:3;}` {
		t.Errorf("map encoded as %q", got)
	}

	got = mustMarshal(t, map[int]string{7: "y", -1: "z", 3: "x"})
	if got != `a:3:{i:-1;s:1:"z";i:3;s:1:"x";i:7;s:1:"y";}` {
		t.Errorf("int-keyed map encoded as %q", got)
	}

	// Mixed keys sort integers before text.
	got = mustMarshal(t, map[any]any{"a": 1, int64(5): true})
	if got != `a:2:{i:5;b:1;s:1:"a";i:1;}` {
		t.Errorf("mixed-key map encoded as %q", got)
	}
}

func TestEncodeStruct(t *testing.T) {
	got := mustMarshal(t, login{User: "admin", Pass: "secret"})
	if got != `a:2:{s:4:"user";s:5:"admin";s:8:"password";s:6:"secret";}` {
		t.Errorf("struct encoded as %q", got)
	}
}

func TestEncodeStructNilFieldOmitted(t *testing.T) {
	// A nil pointer field disappears from the output and the count.
	province := "xyz"
	got := mustMarshal(t, address{Province: &province})
	if got != `a:1:{s:8:"province";s:3:"xyz";}` {
		t.Errorf("struct encoded as %q", got)
	}

	if got := mustMarshal(t, address{}); got != "a:0:{}" {
		t.Errorf("all-nil struct encoded as %q", got)
	}
}

func TestEncodeStructTagSkip(t *testing.T) {
	type carrier struct {
		Kept    int `php:"kept"`
		Skipped int `php:"-"`
		secret  int
	}
	got := mustMarshal(t, carrier{Kept: 1, Skipped: 2, secret: 3})
	if got != `a:1:{s:4:"kept";i:1;}` {
		t.Errorf("struct encoded as %q", got)
	}
}

func TestEncodeNestedPointer(t *testing.T) {
	n := 5
	if got := mustMarshal(t, &n); got != "i:5;" {
		t.Errorf("pointer encoded as %q", got)
	}
	var p *int
	if got := mustMarshal(t, p); got != "N;" {
		t.Errorf("nil pointer encoded as %q", got)
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	_, err := NewEncoder().Marshal(make(chan int))
	var pe *perrors.Error
	if !errors.As(err, &pe) || pe.Kind != perrors.KindTypeMismatch {
		t.Errorf("got %v, want type mismatch", err)
	}
}

func TestEncodeCyclicValue(t *testing.T) {
	type node struct {
		Next *node `php:"next"`
	}
	a := &node{}
	a.Next = a
	_, err := NewEncoder().Marshal(a)
	var pe *perrors.Error
	if !errors.As(err, &pe) || pe.Kind != perrors.KindRecursionLimit {
		t.Errorf("got %v, want recursion limit", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type profile struct {
		Name   string         `php:"name"`
		Age    int64          `php:"age"`
		Scores []float64      `php:"scores"`
		Labels map[string]int `php:"labels"`
		Nick   *string        `php:"nick"`
	}
	nick := "al"
	in := profile{
		Name:   "alice",
		Age:    30,
		Scores: []float64{1.5, -0.25},
		Labels: map[string]int{"x": 1},
		Nick:   &nick,
	}

	data, err := NewEncoder().Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out profile
	if err := NewDecoder().Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(%q): %v", data, err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}
