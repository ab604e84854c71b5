// IndexFile is a single secondary index: value -> sorted list of log
// offsets where that value occurs in one field.
//
// Grounded on original_source/src/index_file.rs: new() opens
// "<name>.index", reading any existing term map from the blob stored
// past the backing RecordFile's accounted end_of_file; add() only
// touches the in-memory delta (mem_index); get() merges the sorted
// in-memory and on-disk offset lists; flush() compacts by writing every
// term (merged) into a brand-new temporary RecordFile and atomically
// swapping it in — adapted here via rename-over-destination instead of
// the original's remove-then-rename, which is also the pattern the
// teacher's own repair.go uses when swapping in a repaired data file.
//
// One change from the original: the term map is JSON, Zstd-compressed
// (compress.go) only when the index is opened with compress set, rather
// than MessagePack, for the same self-describing-encoding reason
// Record uses JSON instead of the original's per-record MessagePack.
package logstore

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// termEntry is the per-term record stored in an IndexFile's backing
// RecordFile: a value and the sorted, deduplicated list of offsets in
// the log where a record with that value (for this index's field)
// lives.
type termEntry struct {
	Value   Value    `json:"value"`
	Offsets []uint64 `json:"offsets"`
}

// termMapBlobEntry is the on-disk shape of one termMap entry in the
// blob written past the backing RecordFile's end_of_file. termMap keys
// are Value.Key() — raw canonicalBytes, which are frequently not valid
// UTF-8 (for example any Number whose big-endian float64 bytes contain
// a byte >= 0x80). A JSON object requires string keys to be valid
// UTF-8 and silently replaces invalid bytes with U+FFFD on encode,
// which would corrupt the key for an entire class of values. Hex-encode
// the key and carry it as an ordinary field in a JSON array instead, so
// the blob survives arbitrary key bytes losslessly — the same property
// the original gets from storing HashMap<LogValue,u64> via MessagePack
// (original_source/src/index_file.rs) rather than a JSON object.
type termMapBlobEntry struct {
	Key    string `json:"key"`
	Offset uint64 `json:"offset"`
}

// IndexFile is the secondary index for one field.
type IndexFile struct {
	rf   *RecordFile
	name string
	dir  string
	log  *zap.Logger

	// memIndex holds not-yet-flushed (value, offset) pairs, keyed by
	// Value.Key() since Value itself isn't a valid Go map key.
	memIndex map[string][]uint64
	// memValues recovers the original Value for a memIndex key when
	// flush needs to look a term up by key but write it back by value.
	memValues map[string]Value
	// termMap maps a value's Key() to its termEntry's offset in rf.
	termMap map[string]uint64

	compress bool
}

// OpenIndexFile opens (or creates) "<name>.index" inside dir. An
// existing term-map blob stored past the backing RecordFile's recorded
// end_of_file is read and decompressed (if compress is true) before any
// Add/Get call.
func OpenIndexFile(dir, name string, compress bool, log *zap.Logger) (*IndexFile, error) {
	if log == nil {
		log = zap.NewNop()
	}

	path := filepath.Join(dir, name+".index")
	rf, err := OpenRecordFile(path, IndexFileMagic(1))
	if err != nil {
		return nil, err
	}

	idx := &IndexFile{
		rf:        rf,
		name:      name,
		dir:       dir,
		log:       log,
		memIndex:  make(map[string][]uint64),
		memValues: make(map[string]Value),
		termMap:   make(map[string]uint64),
		compress:  compress,
	}

	if rf.NeedsRecovery() {
		log.Warn("index file not cleanly closed, recovering", zap.String("name", name))
		if _, _, err := rf.Recover(func(payload []byte) error {
			var e termEntry
			return json.Unmarshal(payload, &e)
		}); err != nil {
			return nil, err
		}
	}

	if err := idx.loadTermMapBlob(); err != nil {
		return nil, err
	}

	return idx, nil
}

// loadTermMapBlob reads and decodes the term-map blob stored past the
// RecordFile's accounted end_of_file, if any exists.
func (idx *IndexFile) loadTermMapBlob() error {
	f, err := os.Open(idx.rf.Path())
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	eof := idx.rf.eof
	if uint64(info.Size()) <= eof {
		return nil
	}

	blob := make([]byte, uint64(info.Size())-eof)
	if _, err := f.ReadAt(blob, int64(eof)); err != nil {
		return err
	}

	if idx.compress {
		blob, err = decompressBlob(blob)
		if err != nil {
			return err
		}
	}
	if len(blob) == 0 {
		return nil
	}

	var entries []termMapBlobEntry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return fmt.Errorf("%w: term map for index %q: %v", ErrDecode, idx.name, err)
	}

	flat := make(map[string]uint64, len(entries))
	for _, e := range entries {
		keyBytes, err := hex.DecodeString(e.Key)
		if err != nil {
			return fmt.Errorf("%w: term map for index %q: bad key encoding: %v", ErrDecode, idx.name, err)
		}
		flat[string(keyBytes)] = e.Offset
	}
	idx.termMap = flat
	return nil
}

// Add records that value occurs at offset. The write only touches the
// in-memory delta; it is persisted on the next Flush or Close.
func (idx *IndexFile) Add(value Value, offset uint64) {
	key := value.Key()
	idx.memIndex[key] = append(idx.memIndex[key], offset)
	idx.memValues[key] = value
}

// Get returns every offset recorded for value, merging the in-memory
// delta with whatever has already been compacted to disk. The result is
// sorted and deduplicated.
func (idx *IndexFile) Get(value Value) ([]uint64, error) {
	key := value.Key()

	inMemory := append([]uint64(nil), idx.memIndex[key]...)
	sort.Slice(inMemory, func(i, j int) bool { return inMemory[i] < inMemory[j] })

	var onDisk []uint64
	if loc, ok := idx.termMap[key]; ok {
		payload, err := idx.rf.ReadAt(loc)
		if err != nil {
			return nil, err
		}
		var entry termEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("%w: term entry for index %q: %v", ErrDecode, idx.name, err)
		}
		onDisk = entry.Offsets
	}

	return mergeSortedUnique(inMemory, onDisk), nil
}

// mergeSortedUnique merges two already-sorted uint64 slices, deduping
// values that appear in both (the merge_join_by union in the original).
func mergeSortedUnique(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Flush compacts the in-memory delta into the backing RecordFile: every
// existing term is rewritten merged with any pending in-memory offsets
// for that term, then any wholly-new terms are appended, all into a
// fresh temporary RecordFile which is renamed over the original on
// success. If the in-memory delta is empty, Flush is a no-op, matching
// the original's early return.
func (idx *IndexFile) Flush() error {
	if len(idx.memIndex) == 0 {
		return nil
	}

	tmpPath := filepath.Join(idx.dir, idx.name+".tmp_index")
	os.Remove(tmpPath)

	tmpRF, err := OpenRecordFile(tmpPath, IndexFileMagic(1))
	if err != nil {
		return fmt.Errorf("%w: could not create temporary index file: %v", ErrFlushFailed, err)
	}

	newTermMap := make(map[string]uint64, len(idx.termMap)+len(idx.memIndex))
	pending := make(map[string][]uint64, len(idx.memIndex))
	for k, v := range idx.memIndex {
		pending[k] = append([]uint64(nil), v...)
	}

	writeErr := idx.rf.Iterate(func(_ uint64, payload []byte) error {
		var entry termEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return fmt.Errorf("%w: term entry for index %q: %v", ErrDecode, idx.name, err)
		}

		key := entry.Value.Key()
		if mem, ok := pending[key]; ok {
			entry.Offsets = mergeSortedUnique(sortedCopy(entry.Offsets), sortedCopy(mem))
			delete(pending, key)
		}

		buf, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		loc, err := tmpRF.Append(buf)
		if err != nil {
			return err
		}
		newTermMap[key] = loc
		return nil
	})
	if writeErr != nil {
		tmpRF.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFlushFailed, writeErr)
	}

	for key, offsets := range pending {
		entry := termEntry{Value: idx.memValues[key], Offsets: sortedCopy(offsets)}
		buf, err := json.Marshal(entry)
		if err != nil {
			tmpRF.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		loc, err := tmpRF.Append(buf)
		if err != nil {
			tmpRF.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("%w: %v", ErrFlushFailed, err)
		}
		newTermMap[key] = loc
	}

	if err := tmpRF.Flush(); err != nil {
		tmpRF.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}

	oldPath := idx.rf.Path()
	if err := idx.rf.Close(); err != nil {
		tmpRF.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	if err := tmpRF.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	if err := os.Rename(tmpPath, oldPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}

	reopened, err := OpenRecordFile(oldPath, IndexFileMagic(1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}

	idx.rf = reopened
	idx.termMap = newTermMap
	idx.memIndex = make(map[string][]uint64)
	idx.memValues = make(map[string]Value)

	idx.log.Debug("index flushed", zap.String("name", idx.name), zap.Int("terms", len(newTermMap)))
	return nil
}

func sortedCopy(s []uint64) []uint64 {
	out := append([]uint64(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close flushes any pending in-memory delta, writes the term map blob
// (Zstd-compressed when compress is set) past the backing RecordFile's
// end_of_file, and closes the file.
func (idx *IndexFile) Close() error {
	if err := idx.Flush(); err != nil {
		return err
	}

	entries := make([]termMapBlobEntry, 0, len(idx.termMap))
	for k, v := range idx.termMap {
		entries = append(entries, termMapBlobEntry{Key: hex.EncodeToString([]byte(k)), Offset: v})
	}
	buf, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if idx.compress {
		buf = compressBlob(buf)
	}

	if err := idx.rf.Close(); err != nil {
		return err
	}

	f, err := os.OpenFile(idx.rf.Path(), os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteAt(buf, int64(idx.rf.eof)); err != nil {
		return err
	}
	return nil
}

// Name returns the field name this index covers.
func (idx *IndexFile) Name() string { return idx.name }
