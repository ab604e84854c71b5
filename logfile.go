// LogFile is the single append-only store of every record ever inserted.
//
// Grounded on original_source/src/log_file.rs: new() opens "logs.data"
// inside the data directory, detects an unclean prior shutdown via the
// backing RecordFile's sentinel count, and recovers by re-decoding every
// record up to the physical tail (check() there, Recover here). add/get
// map directly onto RecordFile.Append/ReadAt with Record's JSON codec
// standing in for the original's MessagePack one.
package logstore

import (
	"path/filepath"

	"go.uber.org/zap"
)

const logFileName = "logs.data"

// LogFile is the append-only container of every Record ever inserted,
// independent of which fields are indexed.
type LogFile struct {
	rf  *RecordFile
	log *zap.Logger
}

// OpenLogFile opens (or creates) logs.data inside dir. If the file was
// not cleanly closed last session, it is recovered by re-decoding every
// record up to the first short read at the physical tail.
func OpenLogFile(dir string, log *zap.Logger) (*LogFile, error) {
	if log == nil {
		log = zap.NewNop()
	}

	path := filepath.Join(dir, logFileName)
	rf, err := OpenRecordFile(path, LogFileMagic)
	if err != nil {
		return nil, err
	}

	lf := &LogFile{rf: rf, log: log}

	if rf.NeedsRecovery() {
		log.Warn("log file not cleanly closed, recovering", zap.String("path", path))
		count, eof, err := rf.Recover(func(payload []byte) error {
			_, err := DecodeRecord(payload)
			return err
		})
		if err != nil {
			return nil, err
		}
		log.Info("log file recovered", zap.String("path", path), zap.Uint32("records", count), zap.Uint64("eof", eof))
	}

	return lf, nil
}

// Add encodes rec and appends it to the log, returning the offset it
// was written at. LogFile itself performs no field-name policy (a caller
// that wants the reserved-prefix check runs Record.Validate first), matching
// the original's separation of concerns between json2map/validation and
// LogFile::add.
func (lf *LogFile) Add(rec Record) (uint64, error) {
	buf, err := rec.Encode()
	if err != nil {
		return 0, err
	}
	return lf.AddEncoded(buf)
}

// AddEncoded appends an already-encoded record payload to the log. It
// lets a caller that already had to encode rec for some other reason
// (Store.Insert checks MaxRecordSize against the encoded size) append
// without paying for a second marshal of the same record.
func (lf *LogFile) AddEncoded(buf []byte) (uint64, error) {
	return lf.rf.Append(buf)
}

// SetSyncWrites enables or disables fsync after every Add/AddEncoded.
func (lf *LogFile) SetSyncWrites(sync bool) {
	lf.rf.SetSyncWrites(sync)
}

// Get decodes the record stored at offset.
func (lf *LogFile) Get(offset uint64) (Record, error) {
	payload, err := lf.rf.ReadAt(offset)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(payload)
}

// Iterate calls fn with every record in the log in insertion order,
// along with the offset it lives at, for full-scan use.
func (lf *LogFile) Iterate(fn func(offset uint64, rec Record) error) error {
	return lf.rf.Iterate(func(offset uint64, payload []byte) error {
		rec, err := DecodeRecord(payload)
		if err != nil {
			return err
		}
		return fn(offset, rec)
	})
}

// Count returns the number of records currently in the log.
func (lf *LogFile) Count() uint32 { return lf.rf.Count() }

// Close flushes the durable count/EOF trailer and closes the file.
func (lf *LogFile) Close() error { return lf.rf.Close() }
