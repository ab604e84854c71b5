// Compression round-trip tests.
//
// The term-map blob is zstd-compressed at close and decompressed at open.
// A compression bug has two failure modes: silent corruption (decoded
// output differs from the original) or a decode error on a well-formed
// frame. Either would make a reopened IndexFile lose its term map. These
// tests verify every byte survives the round trip for a range of inputs.
package logstore

import (
	"bytes"
	"testing"
)

func TestCompressBlobRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"simple text", []byte("hello world")},
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"binary data", []byte{0x00, 0x01, 0xff, 0xfe, 0x80, 0x7f}},
		{"unicode", []byte("日本語テキスト")},
		{"serialized map", []byte(`{"a":1,"b":2}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := compressBlob(tt.data)
			decoded, err := decompressBlob(encoded)
			if err != nil {
				t.Fatalf("decompressBlob: %v", err)
			}
			if len(tt.data) == 0 {
				if len(decoded) != 0 {
					t.Errorf("round trip of empty input produced %v", decoded)
				}
				return
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("round trip failed: got %v, want %v", decoded, tt.data)
			}
		})
	}
}

func TestCompressBlobEmpty(t *testing.T) {
	if result := compressBlob([]byte{}); result != nil {
		t.Errorf("compressBlob(empty) = %v, want nil", result)
	}
}

func TestDecompressBlobEmpty(t *testing.T) {
	result, err := decompressBlob(nil)
	if err != nil {
		t.Fatalf("decompressBlob: %v", err)
	}
	if result != nil {
		t.Errorf("decompressBlob(nil) = %v, want nil", result)
	}
}

func TestCompressBlobLargeData(t *testing.T) {
	data := bytes.Repeat([]byte("term map entry for compaction test "), 40000)

	encoded := compressBlob(data)
	decoded, err := decompressBlob(encoded)
	if err != nil {
		t.Fatalf("decompressBlob: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("large data round trip failed: lengths got %d, want %d", len(decoded), len(data))
	}
}

func TestCompressBlobReducesSize(t *testing.T) {
	data := bytes.Repeat([]byte("aaaaaaaaaa"), 1000)
	encoded := compressBlob(data)
	if len(encoded) >= len(data) {
		t.Errorf("compression did not reduce size: encoded %d >= original %d", len(encoded), len(data))
	}
}

func TestCompressBlobAllByteValues(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	encoded := compressBlob(data)
	decoded, err := decompressBlob(encoded)
	if err != nil {
		t.Fatalf("decompressBlob: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("binary data round trip failed")
	}
}
