// Record is the unit stored in the log and referenced by indexes.
//
// Grounded on original_source/src/log_file.rs, whose add/get encode and
// decode a HashMap<String, LogValue> per record. This port keeps the
// same flat field/value map shape but swaps the original's MessagePack
// framing for JSON via goccy/go-json, matching the self-describing
// binary object encoding the target format calls for and the teacher's
// own encoding library choice.
package logstore

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Record is a flat map of field name to Value. Nested records are not
// supported; ValueFromJSON already rejects nested objects at the field
// level.
type Record map[string]Value

// reservedFieldPrefix marks field names reserved for the (out-of-scope)
// ingest adapter's own "__id"/"__ts" fields (spec.md §6). The adapter,
// not Store, is responsible for rejecting user records that set them
// directly — Store.Insert treats "__"-prefixed fields as ordinary data,
// per spec.md §6: "the core itself treats these fields as ordinary."
// Validate is exposed for an adapter to call before handing a record to
// Store.Insert.
const reservedFieldPrefix = "__"

// Validate reports whether r is safe for the ingest adapter to hand to
// Store.Insert: no field name uses the reserved "__" prefix. Not called
// by Store.Insert.
func (r Record) Validate() error {
	for field := range r {
		if strings.HasPrefix(field, reservedFieldPrefix) {
			return fmt.Errorf("%w: field %q uses reserved prefix %q", ErrEncode, field, reservedFieldPrefix)
		}
	}
	return nil
}

// Encode serializes r to its on-disk JSON form.
func (r Record) Encode() ([]byte, error) {
	buf, err := json.Marshal(map[string]Value(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf, nil
}

// DecodeRecord parses a record's on-disk JSON form. Any field whose
// value cannot be converted to a Value (e.g. a nested object) causes
// the whole record to fail with ErrDecode, matching the original's
// from_slice::<HashMap<String, LogValue>> behavior of failing the
// entire record rather than skipping the bad field.
func DecodeRecord(data []byte) (Record, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rec := make(Record, len(raw))
	for field, j := range raw {
		v, err := ValueFromJSON(j)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrDecode, field, err)
		}
		rec[field] = v
	}
	return rec, nil
}
