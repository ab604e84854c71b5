package logstore

import (
	"errors"
	"testing"
)

func TestRecordValidateRejectsReservedField(t *testing.T) {
	r := Record{"__id": StringValue("x")}
	if err := r.Validate(); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for reserved field, got %v", err)
	}
}

func TestRecordValidateAcceptsNormalFields(t *testing.T) {
	r := Record{
		"d": NumberValue(23),
		"c": NullValue(),
		"b": BoolValue(true),
		"a": StringValue("something"),
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRecordEncodeDecodeRoundTrip(t *testing.T) {
	r := Record{
		"d": NumberValue(23),
		"c": NullValue(),
		"b": BoolValue(true),
		"a": StringValue("something"),
		"e": ArrayValue([]Value{NumberValue(1), NumberValue(2)}),
	}

	data, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}

	if len(out) != len(r) {
		t.Fatalf("decoded record has %d fields, want %d", len(out), len(r))
	}
	for field, v := range r {
		ov, ok := out[field]
		if !ok {
			t.Fatalf("decoded record missing field %q", field)
		}
		if !v.Equal(ov) {
			t.Errorf("field %q: got %v, want %v", field, ov, v)
		}
	}
}

func TestDecodeRecordRejectsNestedObject(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"a":{"x":"z"}}`))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for nested object, got %v", err)
	}
}

func TestDecodeRecordRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeRecord([]byte(`{not json`))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for malformed JSON, got %v", err)
	}
}

func TestRecordEncodeEmptyRecord(t *testing.T) {
	r := Record{}
	data, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty record, got %v", out)
	}
}
