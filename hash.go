// Hash algorithm implementations shared by Value.Hash and ContentID.
//
// Three algorithms are supported; ContentID takes the choice as its alg
// argument.
// Value.Hash always uses xxHash3 internally (it only needs to agree with
// itself within one process); ContentID exposes the algorithm choice
// because its output is meant to be a stable, persisted identifier.
package logstore

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants, used by Config.HashAlgorithm and ContentID.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// hashHex runs the given string through the selected algorithm and
// returns a 16 lowercase hex character digest. Returns "" for an
// unrecognised algorithm.
func hashHex(s string, alg int) string {
	switch alg {
	case AlgXXHash3:
		h := xxh3.HashString(s)
		return fmt.Sprintf("%016x", h)
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write([]byte(s))
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write([]byte(s))
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return ""
	}
}

// hashBytes runs arbitrary bytes through the default xxHash3 algorithm,
// used internally by Value.Hash where a uint64 rather than a hex string
// is wanted.
func hashBytes(b []byte) uint64 {
	return xxh3.Hash(b)
}

// putFloat64 writes the IEEE-754 big-endian bit pattern of f into buf,
// which must be at least 8 bytes. Big-endian is used so the canonical
// byte form's lexicographic order matches numeric order for non-negative
// values (negative values sort in reverse), which keeps canonicalBytes
// stable and easy to reason about
// even though only equality (not ordering) is required of it today.
func putFloat64(buf []byte, f float64) {
	binary.BigEndian.PutUint64(buf, math.Float64bits(f))
}
