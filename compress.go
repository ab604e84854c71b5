// Compression for the IndexFile term-map blob.
//
// The term map (value -> record offset) is appended as a single blob past
// the backing RecordFile's accounted end_of_file (spec: "not a RecordFile
// record; appended raw at close and re-read at open"). It is pure binary,
// not embedded in a text format, so it is Zstd-compressed directly with
// no further text-safe encoding layer.
package logstore

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder — both are documented as safe for concurrent use.
// Allocated once because zstd encoder/decoder construction is expensive
// (internal state tables, dictionaries); a term map's close-time write is
// infrequent but its size can be large, so per-call construction would
// dominate compaction cost.
//
// SpeedFastest favours the write path (every Close/flush cycle) over the
// read path (every Open); term maps are re-read far less often than they
// are rewritten under sustained insert load.
var (
	blobEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	blobDecoder, _ = zstd.NewReader(nil)
)

// compressBlob compresses data for storage past a RecordFile's EOF.
// Returns nil for empty input.
func compressBlob(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	return blobEncoder.EncodeAll(data, nil)
}

// decompressBlob reverses compressBlob. Returns nil, nil for empty input.
func decompressBlob(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	out, err := blobDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrDecode, err)
	}
	return out, nil
}
