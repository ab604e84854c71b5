// Package logstore is a single-node append-only log store with secondary
// indexes. Records are flat field/value maps; each field is indexed
// incrementally so that "every record where field K equals value V" is a
// point lookup rather than a scan.
package logstore

import "errors"

// Sentinel errors returned by store operations. Each maps to a taxonomy
// entry: callers should use errors.Is against these rather than comparing
// wrapped error strings.
var (
	// ErrNotADirectory is returned when Open's target is not a directory.
	ErrNotADirectory = errors.New("logstore: not a directory")

	// ErrBadHeader is returned when a record file's header does not match
	// the expected magic for its kind.
	ErrBadHeader = errors.New("logstore: bad record file header")

	// ErrCorrupt is returned when a recovery scan fails to parse a record
	// that the sentinel count says should exist.
	ErrCorrupt = errors.New("logstore: corrupt record")

	// ErrShortRead is returned when a positional read hits end-of-file
	// before the declared record length is satisfied.
	ErrShortRead = errors.New("logstore: short read")

	// ErrEncode is returned when a record or value fails to serialize.
	ErrEncode = errors.New("logstore: encode failed")

	// ErrDecode is returned when a record or value fails to deserialize.
	ErrDecode = errors.New("logstore: decode failed")

	// ErrFlushFailed is returned when an index compaction aborts. The
	// mem-index is left intact so the caller may retry.
	ErrFlushFailed = errors.New("logstore: flush failed")

	// ErrClosed is returned when operating on a closed store or file.
	ErrClosed = errors.New("logstore: store is closed")
)
