package logstore

import (
	"errors"
	"testing"
)

func TestValueCompareCrossVariant(t *testing.T) {
	values := []Value{
		ArrayValue([]Value{}),
		StringValue("a"),
		NumberValue(0),
		BoolValue(false),
		NullValue(),
	}
	// Reverse order: each should be greater than the one after it.
	for i := 0; i < len(values)-1; i++ {
		if values[i].Compare(values[i+1]) <= 0 {
			t.Errorf("expected values[%d] (%v) > values[%d] (%v)", i, values[i].kind, i+1, values[i+1].kind)
		}
	}
}

func TestValueCompareWithinVariant(t *testing.T) {
	if BoolValue(false).Compare(BoolValue(true)) >= 0 {
		t.Error("false should compare less than true")
	}
	if NumberValue(1).Compare(NumberValue(2)) >= 0 {
		t.Error("1 should compare less than 2")
	}
	if StringValue("a").Compare(StringValue("b")) >= 0 {
		t.Error(`"a" should compare less than "b"`)
	}
}

func TestValueCompareArrays(t *testing.T) {
	a := ArrayValue([]Value{NumberValue(1), NumberValue(2)})
	b := ArrayValue([]Value{NumberValue(1), NumberValue(3)})
	if a.Compare(b) >= 0 {
		t.Error("expected [1,2] < [1,3]")
	}

	short := ArrayValue([]Value{NumberValue(1)})
	long := ArrayValue([]Value{NumberValue(1), NumberValue(2)})
	if short.Compare(long) >= 0 {
		t.Error("expected shorter prefix array to compare less than longer one")
	}
}

func TestValueEqual(t *testing.T) {
	if !NumberValue(3.5).Equal(NumberValue(3.5)) {
		t.Error("equal numbers should be Equal")
	}
	if NullValue().Equal(BoolValue(false)) {
		t.Error("null should not equal false")
	}
}

func TestValueHashStableForEqualValues(t *testing.T) {
	a := StringValue("hello")
	b := StringValue("hello")
	if a.Hash() != b.Hash() {
		t.Error("equal values must hash equally")
	}

	arrA := ArrayValue([]Value{NumberValue(1), StringValue("x")})
	arrB := ArrayValue([]Value{NumberValue(1), StringValue("x")})
	if arrA.Hash() != arrB.Hash() {
		t.Error("equal arrays must hash equally")
	}
}

func TestValueHashDiffersAcrossKinds(t *testing.T) {
	if NullValue().Hash() == BoolValue(false).Hash() {
		t.Error("null and false should not hash the same")
	}
}

func TestValueKeyPreservesEquality(t *testing.T) {
	a := NumberValue(42)
	b := NumberValue(42)
	c := NumberValue(43)
	if a.Key() != b.Key() {
		t.Error("equal values must have identical keys")
	}
	if a.Key() == c.Key() {
		t.Error("distinct values must not collide on key")
	}
}

func TestValueFromJSONScalars(t *testing.T) {
	cases := []struct {
		in   interface{}
		kind Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{float64(1.5), KindNumber},
		{"s", KindString},
		{[]interface{}{float64(1), "a"}, KindArray},
	}
	for _, c := range cases {
		v, err := ValueFromJSON(c.in)
		if err != nil {
			t.Fatalf("ValueFromJSON(%v): %v", c.in, err)
		}
		if v.Kind() != c.kind {
			t.Errorf("ValueFromJSON(%v) kind = %v, want %v", c.in, v.Kind(), c.kind)
		}
	}
}

func TestValueFromJSONRejectsNestedObject(t *testing.T) {
	_, err := ValueFromJSON(map[string]interface{}{"a": 1})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for nested object, got %v", err)
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	values := []Value{
		NullValue(),
		BoolValue(true),
		NumberValue(3.14),
		StringValue("hi"),
		ArrayValue([]Value{NumberValue(1), StringValue("x"), BoolValue(false)}),
	}
	for _, v := range values {
		data, err := v.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", v.kind, err)
		}
		var out Value
		if err := out.UnmarshalJSON(data); err != nil {
			t.Fatalf("UnmarshalJSON(%q): %v", data, err)
		}
		if !v.Equal(out) {
			t.Errorf("round trip mismatch: %v != %v", v, out)
		}
	}
}

func TestSortValues(t *testing.T) {
	values := []Value{
		NumberValue(3),
		NumberValue(1),
		NumberValue(2),
	}
	SortValues(values)
	for i := 0; i < len(values)-1; i++ {
		if values[i].Compare(values[i+1]) > 0 {
			t.Errorf("SortValues did not sort: %v", values)
		}
	}
}
