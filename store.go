// Store is a single-node, directory-backed append-only log with one
// secondary index per field ever inserted.
//
// Grounded on original_source/src/data_manager.rs: Open validates the
// target is a directory, opens logs.data as a LogFile, and opens one
// IndexFile per "<field>.index" file already present in the directory.
// Insert appends to the log first, then adds the offset to every
// field's index (creating an IndexFile on first sight of a new field).
// Get resolves an index's offset list and fans the record reads out in
// parallel (fanout.go) rather than data_manager.rs's scoped_threadpool
// + Mutex<Vec> pattern, since Go's os.File.ReadAt needs no such
// serialization. The exclusive directory lock (lock.go, adapted from
// the teacher's own fileLock) replaces what data_manager.rs leaves
// implicit.
package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store is safe for concurrent use. Insert/Get/Flush/Close serialize on
// mu, except that once Get has obtained an index's offset list it
// releases mu before fanning the record reads out (spec §5: parallel
// fan-out reads may proceed lock-free).
type Store struct {
	mu      sync.Mutex
	dir     string
	log     *LogFile
	indices map[string]*IndexFile
	lock    *dirLock
	cfg     Config
	closed  bool
}

// Open opens (or creates) a Store rooted at dir. dir must already exist
// as a directory; Store does not create directories, matching
// data_manager.rs's is_dir() precondition. An exclusive advisory lock
// on dir is held for the Store's lifetime — a second Open on the same
// directory from another process blocks until this Store is Closed.
func Open(dir string, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	lock, err := newDirLock(dir)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(LockExclusive); err != nil {
		lock.Close()
		return nil, err
	}

	logFile, err := OpenLogFile(dir, cfg.Logger)
	if err != nil {
		lock.Unlock()
		lock.Close()
		return nil, err
	}
	logFile.SetSyncWrites(cfg.SyncWrites)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logFile.Close()
		lock.Unlock()
		lock.Close()
		return nil, err
	}

	indices := make(map[string]*IndexFile)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".index") {
			continue
		}
		field := strings.TrimSuffix(name, ".index")

		cfg.Logger.Info("loading index file", zap.String("field", field))

		idx, err := OpenIndexFile(dir, field, cfg.CompressIndexBlob, cfg.Logger)
		if err != nil {
			for _, opened := range indices {
				opened.Close()
			}
			logFile.Close()
			lock.Unlock()
			lock.Close()
			return nil, err
		}
		indices[field] = idx
	}

	return &Store{
		dir:     dir,
		log:     logFile,
		indices: indices,
		lock:    lock,
		cfg:     cfg,
	}, nil
}

// Insert appends rec to the log and adds its offset to the index for
// every field present in rec, creating a new IndexFile on first sight
// of a field. The log append happens strictly before any index add, so
// a crash between the two leaves an under-indexed (not corrupt) record
// that a future rebuild could repair — never an index entry pointing at
// a record that was never durably appended.
func (s *Store) Insert(rec Record) (uint64, error) {
	buf, err := rec.Encode()
	if err != nil {
		return 0, err
	}
	if s.cfg.MaxRecordSize > 0 && uint32(len(buf)) > s.cfg.MaxRecordSize {
		return 0, fmt.Errorf("%w: record of %d bytes exceeds MaxRecordSize %d", ErrEncode, len(buf), s.cfg.MaxRecordSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	offset, err := s.log.AddEncoded(buf)
	if err != nil {
		return 0, err
	}

	for field, value := range rec {
		idx, ok := s.indices[field]
		if !ok {
			idx, err = OpenIndexFile(s.dir, field, s.cfg.CompressIndexBlob, s.cfg.Logger)
			if err != nil {
				return offset, err
			}
			s.indices[field] = idx
		}
		idx.Add(value, offset)
	}

	return offset, nil
}

// Get returns every record where field equals value. An unindexed
// field (one never seen by Insert) returns an empty result without
// creating an IndexFile, matching data_manager.rs's early return.
func (s *Store) Get(field string, value Value) ([]Record, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	idx, ok := s.indices[field]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}

	offsets, err := idx.Get(value)
	logFile := s.log
	workers := fanoutWorkers(s.cfg.Workers)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, nil
	}

	// Fan-out proceeds without s.mu: LogFile.Get goes through
	// RecordFile.ReadAt, a positional read, so it never contends with a
	// concurrent Insert's append or another Get's fan-out.
	return fetchRecords(logFile, offsets, workers)
}

// Flush compacts every index's in-memory delta to disk without closing
// the store.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for field, idx := range s.indices {
		if err := idx.Flush(); err != nil {
			return fmt.Errorf("flush index %q: %w", field, err)
		}
	}
	return nil
}

// Close flushes and closes every index, closes the log file, and
// releases the directory lock. Indexes are closed before the log file
// so that a reader racing Close's teardown never sees an index whose
// backing log has already gone away.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for field, idx := range s.indices {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close index %q: %w", field, err)
		}
	}
	if err := s.log.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.lock.Unlock()
	if err := s.lock.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// Path returns the directory this Store is rooted at.
func (s *Store) Path() string { return filepath.Clean(s.dir) }
