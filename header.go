// RecordFile header layout.
//
// [ magic (header length varies per file kind) ]
// [ count : u32 little-endian ]
// [ end_of_file : u64 little-endian ]
//
// count == badCount means the file was not cleanly closed; the caller
// must recover the true count by scanning records from the first one.
package logstore

import (
	"encoding/binary"
	"os"
)

// badCount is the sentinel record_count value signalling "not cleanly
// closed, run recovery".
const badCount uint32 = 0xFFFFFFFF

// countEOFSize is the byte length of the count+EOF trailer that follows
// the caller-supplied magic.
const countEOFSize = 4 + 8

// LogFileMagic is the 12-byte header for LogFile's backing RecordFile.
var LogFileMagic = []byte("LOGSTORE\x01\x00\x00\x00")

// IndexFileMagicPrefix is the 8-byte prefix for IndexFile's backing
// RecordFile header; the 9th byte is a version, the remaining 3 bytes
// are padding.
var IndexFileMagicPrefix = []byte("LOGINDEX")

// IndexFileMagic builds the 12-byte IndexFile header for the given
// version.
func IndexFileMagic(version byte) []byte {
	m := make([]byte, 12)
	copy(m, IndexFileMagicPrefix)
	m[8] = version
	return m
}

// readCountEOF reads the count/EOF trailer immediately following the
// magic at offset len(magic).
func readCountEOF(f *os.File, magicLen int) (count uint32, eof uint64, err error) {
	buf := make([]byte, countEOFSize)
	if _, err := f.ReadAt(buf, int64(magicLen)); err != nil {
		return 0, 0, err
	}
	count = binary.LittleEndian.Uint32(buf[0:4])
	eof = binary.LittleEndian.Uint64(buf[4:12])
	return count, eof, nil
}

// writeCountEOF rewrites the count/EOF trailer in place.
func writeCountEOF(f *os.File, magicLen int, count uint32, eof uint64) error {
	buf := make([]byte, countEOFSize)
	binary.LittleEndian.PutUint32(buf[0:4], count)
	binary.LittleEndian.PutUint64(buf[4:12], eof)
	_, err := f.WriteAt(buf, int64(magicLen))
	return err
}

// readMagic reads and returns the first magicLen bytes of the file.
func readMagic(f *os.File, magicLen int) ([]byte, error) {
	buf := make([]byte, magicLen)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}
