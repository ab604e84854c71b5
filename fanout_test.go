package logstore

import "testing"

func TestFetchRecordsOrdersResultsByOffsetList(t *testing.T) {
	dir := t.TempDir()
	lf, err := OpenLogFile(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()

	var offsets []uint64
	for i := 0; i < 20; i++ {
		off, err := lf.Add(Record{"n": NumberValue(float64(i))})
		if err != nil {
			t.Fatal(err)
		}
		offsets = append(offsets, off)
	}

	// Request in reverse order to check result ordering follows the
	// requested offset order, not insertion order.
	reversed := make([]uint64, len(offsets))
	for i, off := range offsets {
		reversed[len(offsets)-1-i] = off
	}

	results, err := fetchRecords(lf, reversed, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(reversed) {
		t.Fatalf("got %d results, want %d", len(results), len(reversed))
	}
	for i, rec := range results {
		want := float64(len(offsets) - 1 - i)
		if rec["n"].Number() != want {
			t.Errorf("result %d = %v, want n=%v", i, rec["n"], want)
		}
	}
}

func TestFetchRecordsEmptyOffsets(t *testing.T) {
	dir := t.TempDir()
	lf, err := OpenLogFile(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()

	results, err := fetchRecords(lf, nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty offsets, got %v", results)
	}
}

func TestFetchRecordsSingleWorker(t *testing.T) {
	dir := t.TempDir()
	lf, err := OpenLogFile(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()

	off, err := lf.Add(Record{"a": StringValue("x")})
	if err != nil {
		t.Fatal(err)
	}

	results, err := fetchRecords(lf, []uint64{off}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0]["a"].String() != "x" {
		t.Fatalf("unexpected result: %v", results)
	}
}
