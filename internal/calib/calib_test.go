package calib

import (
	"path/filepath"
	"testing"
)

func TestUpsertAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calib.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	want := Row{Sensor: "accelerometer", Axis: 0, Bias: 2048, Gain: 131.0}
	if err := store.Upsert(want); err != nil {
		t.Fatal(err)
	}
	// Upsert again with a different gain; Load should reflect the
	// replacement, not a duplicate row.
	want.Gain = 140.0
	if err := store.Upsert(want); err != nil {
		t.Fatal(err)
	}

	rows, err := store.Load("accelerometer")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0] != want {
		t.Errorf("row = %+v, want %+v", rows[0], want)
	}
}

func TestLoadUnknownSensorReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calib.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	rows, err := store.Load("nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
