package logstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndexFileMagicEncodesVersion(t *testing.T) {
	m := IndexFileMagic(1)
	if len(m) != 12 {
		t.Fatalf("IndexFileMagic length = %d, want 12", len(m))
	}
	if string(m[:8]) != "LOGINDEX" {
		t.Errorf("prefix = %q, want LOGINDEX", m[:8])
	}
	if m[8] != 1 {
		t.Errorf("version byte = %d, want 1", m[8])
	}
}

func TestWriteReadCountEOFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdr.data")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	magic := LogFileMagic
	if _, err := f.WriteAt(magic, 0); err != nil {
		t.Fatal(err)
	}
	if err := writeCountEOF(f, len(magic), 42, 12345); err != nil {
		t.Fatal(err)
	}

	count, eof, err := readCountEOF(f, len(magic))
	if err != nil {
		t.Fatal(err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
	if eof != 12345 {
		t.Errorf("eof = %d, want 12345", eof)
	}
}

func TestReadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdr.data")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteAt(LogFileMagic, 0); err != nil {
		t.Fatal(err)
	}

	got, err := readMagic(f, len(LogFileMagic))
	if err != nil {
		t.Fatal(err)
	}
	if !bytesEqual(got, LogFileMagic) {
		t.Errorf("readMagic = %x, want %x", got, LogFileMagic)
	}
}
