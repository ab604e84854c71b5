// RecordFile is the append-only length-prefixed binary container that
// backs both LogFile and IndexFile.
//
// On-disk layout:
//
//	[ magic, fixed length per caller ]
//	[ count : u32 LE ]
//	[ end_of_file : u64 LE ]
//	[ record: size u32 LE, payload ]...
//
// Grounded on original_source/src/record_file.rs's RecordFile/append/
// read_at/RecordFileIterator, translated from Rust's explicit
// seek-then-read/write calls into Go's positional os.File.ReadAt/WriteAt
// (pread/pwrite semantics — no shared cursor to race), which is also the
// style the teacher's db.go uses for its own file access.
package logstore

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

const lengthPrefixSize = 4

// RecordFile is a single append-only container of length-prefixed
// records behind a fixed-length magic header and a durable count/EOF
// trailer. All exported methods are safe for concurrent use; writers
// serialize on mu while ReadAt uses the OS's positional read and never
// takes mu, so concurrent reads never block on each other or on a
// writer.
type RecordFile struct {
	mu         sync.Mutex
	f          *os.File
	path       string
	magicLen   int
	count      uint32
	eof        uint64
	syncWrites bool
}

// OpenRecordFile opens (creating if absent) the record file at path
// with the given fixed-length magic. A freshly created file gets a
// durable count of badCount on disk, so that a process crashing before
// the first clean Close is detected as needing recovery on next open,
// exactly like original_source/src/record_file.rs's BAD_COUNT sentinel;
// its in-memory count starts at 0.
//
// If the file already exists, its magic is verified against header
// (ErrBadHeader on mismatch) and its count/EOF trailer is loaded as-is,
// including badCount if the prior session didn't close cleanly; callers
// that care must check NeedsRecovery and call Recover.
func OpenRecordFile(path string, magic []byte) (*RecordFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	magicLen := len(magic)
	headerSize := int64(magicLen + countEOFSize)

	rf := &RecordFile{f: f, path: path, magicLen: magicLen}

	if info.Size() == 0 {
		if _, err := f.WriteAt(magic, 0); err != nil {
			f.Close()
			return nil, err
		}
		rf.count = 0
		rf.eof = uint64(headerSize)
		if err := writeCountEOF(f, magicLen, badCount, rf.eof); err != nil {
			f.Close()
			return nil, err
		}
		return rf, nil
	}

	got, err := readMagic(f, magicLen)
	if err != nil {
		f.Close()
		return nil, err
	}
	if !bytesEqual(got, magic) {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrBadHeader, path)
	}

	count, eof, err := readCountEOF(f, magicLen)
	if err != nil {
		f.Close()
		return nil, err
	}
	rf.count = count
	rf.eof = eof

	return rf, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// headerSize is the number of bytes before the first record: the magic
// plus the count/EOF trailer.
func (rf *RecordFile) headerSize() uint64 {
	return uint64(rf.magicLen + countEOFSize)
}

// SetSyncWrites enables or disables fsync after every Append, trading
// throughput for durability against an OS crash rather than just a
// process crash (which Recover already handles).
func (rf *RecordFile) SetSyncWrites(sync bool) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.syncWrites = sync
}

// NeedsRecovery reports whether the file's durable count is the
// sentinel badCount, meaning the previous session did not Close
// cleanly and Recover must be run before Count/Iterate can be trusted.
func (rf *RecordFile) NeedsRecovery() bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.count == badCount
}

// Count returns the current record count.
func (rf *RecordFile) Count() uint32 {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.count
}

// Append writes payload as a new record at the current end of file and
// returns the offset it was written at. The length prefix and payload
// are written before the in-memory count/EOF bookkeeping advances, so a
// crash mid-append leaves the durable trailer (rewritten only on Close
// or Flush) pointing before the partial write — exactly the "short read
// at the physical tail" case Recover treats as a clean natural end.
func (rf *RecordFile) Append(payload []byte) (uint64, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	offset := rf.eof
	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:lengthPrefixSize], uint32(len(payload)))
	copy(buf[lengthPrefixSize:], payload)

	if _, err := rf.f.WriteAt(buf, int64(offset)); err != nil {
		return 0, err
	}
	if rf.syncWrites {
		if err := rf.f.Sync(); err != nil {
			return 0, err
		}
	}

	rf.count++
	rf.eof += uint64(len(buf))

	return offset, nil
}

// ReadAt reads the record at offset without taking rf.mu: os.File.ReadAt
// is pread(2) under the hood, so concurrent readers (and a concurrent
// writer) never contend on a shared cursor. This is what lets Store's
// Get fan out parallel reads across an offset list without holding the
// store lock (spec §5).
func (rf *RecordFile) ReadAt(offset uint64) ([]byte, error) {
	lenBuf := make([]byte, lengthPrefixSize)
	if _, err := rf.f.ReadAt(lenBuf, int64(offset)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	size := binary.LittleEndian.Uint32(lenBuf)

	payload := make([]byte, size)
	if _, err := rf.f.ReadAt(payload, int64(offset)+lengthPrefixSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return payload, nil
}

// Iterate calls fn with the offset and payload of every record in
// order, bounded strictly by the in-memory record count rather than raw
// file length — IndexFile appends a compressed term-map blob past the
// last record's end, and Iterate must never wander into it.
func (rf *RecordFile) Iterate(fn func(offset uint64, payload []byte) error) error {
	rf.mu.Lock()
	count := rf.count
	rf.mu.Unlock()

	if count == badCount {
		return fmt.Errorf("%w: record count unknown, run Recover first", ErrCorrupt)
	}

	offset := rf.headerSize()
	for i := uint32(0); i < count; i++ {
		lenBuf := make([]byte, lengthPrefixSize)
		if _, err := rf.f.ReadAt(lenBuf, int64(offset)); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		size := binary.LittleEndian.Uint32(lenBuf)

		payload := make([]byte, size)
		if _, err := rf.f.ReadAt(payload, int64(offset)+lengthPrefixSize); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}

		if err := fn(offset, payload); err != nil {
			return err
		}

		offset += uint64(lengthPrefixSize) + uint64(size)
	}

	rf.mu.Lock()
	rf.eof = offset
	rf.mu.Unlock()

	return nil
}

// Recover re-establishes count and end_of_file by scanning records from
// the first one, stopping cleanly at the physical tail. The physical
// tail is distinguished from corruption the same way
// original_source/src/log_file.rs's check() does it implicitly via
// from_slice failing: a short/truncated read exactly at the point where
// no more full length-prefixed records exist is the natural end of a
// file whose trailer was never rewritten; a read that returns a full
// record whose payload then fails validate is genuine corruption and
// returns ErrCorrupt. validate may be nil to skip payload validation
// (used when the caller only needs framing to be intact).
//
// On success the file's durable count/EOF trailer is rewritten
// immediately so a second crash before any further writes still finds a
// valid count.
func (rf *RecordFile) Recover(validate func([]byte) error) (count uint32, eof uint64, err error) {
	offset := rf.headerSize()
	var n uint32

	for {
		lenBuf := make([]byte, lengthPrefixSize)
		read, readErr := rf.f.ReadAt(lenBuf, int64(offset))
		if readErr != nil || read < lengthPrefixSize {
			// Short read for the length prefix itself: natural end.
			break
		}
		size := binary.LittleEndian.Uint32(lenBuf)

		payload := make([]byte, size)
		read, readErr = rf.f.ReadAt(payload, int64(offset)+lengthPrefixSize)
		if readErr != nil || uint32(read) < size {
			// Length prefix was written but the payload wasn't fully
			// flushed before the crash: also a natural end, not corruption.
			break
		}

		if validate != nil {
			if verr := validate(payload); verr != nil {
				return 0, 0, fmt.Errorf("%w: record %d at offset %d: %v", ErrCorrupt, n, offset, verr)
			}
		}

		n++
		offset += uint64(lengthPrefixSize) + uint64(size)
	}

	rf.mu.Lock()
	rf.count = n
	rf.eof = offset
	rf.mu.Unlock()

	if err := writeCountEOF(rf.f, rf.magicLen, n, offset); err != nil {
		return 0, 0, err
	}

	return n, offset, nil
}

// Flush rewrites the durable count/EOF trailer without closing the
// file, so a concurrent crash loses at most writes since the last
// Flush rather than since Open.
func (rf *RecordFile) Flush() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return writeCountEOF(rf.f, rf.magicLen, rf.count, rf.eof)
}

// Close rewrites the durable count/EOF trailer and closes the
// underlying file. A clean Close means the next Open sees a count other
// than badCount and skips recovery.
func (rf *RecordFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if err := writeCountEOF(rf.f, rf.magicLen, rf.count, rf.eof); err != nil {
		rf.f.Close()
		return err
	}
	return rf.f.Close()
}

// Path returns the filesystem path this RecordFile was opened from.
func (rf *RecordFile) Path() string { return rf.path }
