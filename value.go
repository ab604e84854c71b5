// Value is the tagged union stored in every record field.
//
// A Value is one of Null, Bool, Number, String, or an ordered Array of
// Value. Cross-variant ordering is fixed as Null < Bool < Number < String
// < Array (spec §3, §9: "the source's total order over the tagged value
// is under-specified across variants; this spec fixes it"); within a
// variant, values compare by their natural order. Numbers are
// canonicalised to float64 for both comparison and hashing — the
// original textual form need not round-trip.
//
// Grounded on original_source/src/log_value.rs's LogValue enum and its
// Ord/Hash/From<JsonValue> implementations.
package logstore

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// Kind identifies a Value's variant. The numeric values fix the
// cross-variant ordering described above; do not reorder them.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
)

// Value is an immutable tagged union. Construct one with NullValue,
// BoolValue, NumberValue, StringValue, or ArrayValue rather than building
// the struct literal directly.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	a    []Value
}

func NullValue() Value             { return Value{kind: KindNull} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func NumberValue(n float64) Value  { return Value{kind: KindNumber, n: n} }
func StringValue(s string) Value   { return Value{kind: KindString, s: s} }
func ArrayValue(a []Value) Value   { return Value{kind: KindArray, a: a} }

// Kind reports the value's variant.
func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool      { return v.b }
func (v Value) Number() float64 { return v.n }
func (v Value) String() string  { return v.s }
func (v Value) Array() []Value  { return v.a }

// Compare returns -1, 0, or 1 per the fixed total order: cross-variant by
// Kind rank, within-variant by natural order (lexicographic strings,
// numeric doubles, elementwise arrays).
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}

	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		if v.b == other.b {
			return 0
		}
		if !v.b {
			return -1
		}
		return 1
	case KindNumber:
		switch {
		case v.n < other.n:
			return -1
		case v.n > other.n:
			return 1
		default:
			return 0
		}
	case KindString:
		switch {
		case v.s < other.s:
			return -1
		case v.s > other.s:
			return 1
		default:
			return 0
		}
	case KindArray:
		for i := 0; i < len(v.a) && i < len(other.a); i++ {
			if c := v.a[i].Compare(other.a[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(v.a) < len(other.a):
			return -1
		case len(v.a) > len(other.a):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// Equal reports whether two values compare equal.
func (v Value) Equal(other Value) bool { return v.Compare(other) == 0 }

// canonicalBytes returns a byte encoding in which Equal values share the
// same bytes and distinct values do not; Hash and Key use it directly,
// with no Equal check afterwards. Numbers are encoded as their canonical
// float64 bit pattern per spec §3, with -0 folded into 0; array elements
// carry a 4-byte big-endian length prefix.
func (v Value) canonicalBytes() []byte {
	switch v.kind {
	case KindNull:
		return []byte{byte(KindNull)}
	case KindBool:
		if v.b {
			return []byte{byte(KindBool), 1}
		}
		return []byte{byte(KindBool), 0}
	case KindNumber:
		buf := make([]byte, 9)
		buf[0] = byte(KindNumber)
		n := v.n
		if n == 0 {
			n = 0 // -0 compares equal to 0, so it must encode the same
		}
		putFloat64(buf[1:], n)
		return buf
	case KindString:
		buf := make([]byte, 1+len(v.s))
		buf[0] = byte(KindString)
		copy(buf[1:], v.s)
		return buf
	case KindArray:
		buf := []byte{byte(KindArray)}
		for _, e := range v.a {
			eb := e.canonicalBytes()
			n := len(eb)
			buf = append(buf, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
			buf = append(buf, eb...)
		}
		return buf
	default:
		return nil
	}
}

// Hash returns a hash derived from the variant tag and contents, so that
// equal values (per Compare) always hash equally.
func (v Value) Hash() uint64 {
	return hashBytes(v.canonicalBytes())
}

// Key returns a string suitable for use as a Go map key that preserves
// equality: two values are Equal iff their Key()s are identical. Used by
// IndexFile's mem-index and term map, which need a comparable key type.
func (v Value) Key() string {
	return string(v.canonicalBytes())
}

// jsonValue mirrors the shape the encoding/json and goccy/go-json
// packages produce for arbitrary JSON, used as the intermediate form
// when converting a decoded interface{} into a Value.
type jsonValue = interface{}

// ValueFromJSON converts a decoded JSON value (as produced by
// json.Unmarshal into interface{}) into a Value. Nested objects are
// rejected per spec §3's "no nested object values" invariant.
func ValueFromJSON(j jsonValue) (Value, error) {
	switch x := j.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(x), nil
	case float64:
		return NumberValue(x), nil
	case json.Number:
		// Unreached by UnmarshalJSON below, which decodes into a plain
		// interface{} (no UseNumber). Kept for callers who decode their
		// own JSON with a json.Decoder.UseNumber() and pass the result
		// to ValueFromJSON directly.
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q: %v", ErrDecode, x, err)
		}
		return NumberValue(f), nil
	case string:
		return StringValue(x), nil
	case []interface{}:
		arr := make([]Value, len(x))
		for i, e := range x {
			v, err := ValueFromJSON(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return ArrayValue(arr), nil
	case map[string]interface{}:
		return Value{}, fmt.Errorf("%w: nested object values are not supported", ErrDecode)
	default:
		return Value{}, fmt.Errorf("%w: unsupported JSON type %T", ErrDecode, j)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.a)
	default:
		return nil, fmt.Errorf("%w: unknown value kind %d", ErrEncode, v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	val, err := ValueFromJSON(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// SortValues sorts a slice of values in place using Compare.
func SortValues(values []Value) {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Compare(values[j]) < 0
	})
}
