// Store configuration.
//
// Grounded on the teacher's own Open-time config-defaulting block
// (jpl-au-folio's db.go zero-value-means-default pattern), generalized
// to the knobs this store needs: hash algorithm choice, index blob
// compression, fan-out worker count, and a structured logger.
package logstore

import "go.uber.org/zap"

// Config tunes a Store's behavior. The zero Config is valid: every
// field defaults to a sensible value in withDefaults.
type Config struct {
	// MaxRecordSize caps the payload size Insert accepts, guarding
	// against a single bad write exhausting memory on decode. Zero
	// means no cap.
	MaxRecordSize uint32

	// SyncWrites calls fsync after every Insert's log append, trading
	// throughput for durability against an OS crash (not just a process
	// crash, which Recover already handles). Off by default, matching
	// the original's unconditional flush-without-fsync behavior.
	SyncWrites bool

	// HashAlgorithm names an algorithm for ContentID. Store only defaults
	// it and does not read it otherwise; ContentID uses whatever alg its
	// caller passes. Value.Hash is unaffected — it always uses AlgXXHash3
	// internally.
	HashAlgorithm int

	// CompressIndexBlob enables Zstd compression of each IndexFile's
	// persisted term map.
	CompressIndexBlob bool

	// Workers bounds the number of goroutines Store.Get fans its
	// offset->record reads out across. Zero means
	// runtime.NumCPU()*2 (see fanoutWorkers).
	Workers int

	// Logger receives structured diagnostics (recovery events, index
	// compaction). A nil Logger defaults to zap.NewNop(), matching
	// every OpenLogFile/OpenIndexFile call's own nil-logger handling.
	Logger *zap.Logger
}

// withDefaults returns a copy of c with zero-valued fields replaced by
// their defaults.
func (c Config) withDefaults() Config {
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = AlgXXHash3
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
