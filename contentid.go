// ContentID is a content-derived identifier helper, supplementing the
// core with a conformant building block for a future ingest adapter's
// "__id" field.
//
// Grounded on spec.md §6's description of the algorithm and
// original_source/src/http_server.rs's ElasticsearchService (the only
// place the original computes such an ID, out of scope here) — and on
// hash.go's own three-algorithm dispatch, which this reuses directly
// rather than duplicating.
package logstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ContentID hashes the canonicalized, sorted field/value sequence of
// rec together with ts using the selected algorithm, returning a
// 16-hex-character digest. Store.Insert never calls this automatically
// — spec.md treats "__"-prefixed fields as the ingest adapter's concern
// — but it is exported so a caller assembling that adapter has a
// conformant implementation ready to call.
func ContentID(rec Record, ts int64, alg int) string {
	fields := make([]string, 0, len(rec))
	for field := range rec {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for _, field := range fields {
		b.WriteString(field)
		b.WriteByte('=')
		b.Write(rec[field].canonicalBytes())
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "ts=%s", strconv.FormatInt(ts, 10))

	return hashHex(b.String(), alg)
}
