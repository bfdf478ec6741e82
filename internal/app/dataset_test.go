package app

import (
	"os"
	"path/filepath"
	"testing"

	"rollbook/internal/testutil"
)

func TestLoadDatasetMissingFile(t *testing.T) {
	ds, err := LoadDataset(filepath.Join(t.TempDir(), "dataset.json"))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Students) != 0 || len(ds.Users) != 0 {
		t.Error("missing file should yield an empty dataset")
	}
}

func TestSaveLoadDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	ds := testutil.SampleDataset()

	if err := SaveDataset(path, ds); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	got, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}

	if len(got.Students) != len(ds.Students) {
		t.Errorf("students = %d, want %d", len(got.Students), len(ds.Students))
	}
	if len(got.AttendanceRecords) != len(ds.AttendanceRecords) {
		t.Errorf("attendance records = %d, want %d", len(got.AttendanceRecords), len(ds.AttendanceRecords))
	}
	if got.Users[0].Password != "pw1" {
		t.Errorf("live credential = %q, want pw1 (the dataset file is not redacted)", got.Users[0].Password)
	}
}

func TestLoadDatasetCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadDataset(path); err == nil {
		t.Error("LoadDataset accepted corrupt JSON")
	}
}

func TestSaveDatasetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.json")

	if err := SaveDataset(path, testutil.SampleDataset()); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "dataset.json" {
		t.Errorf("directory contents = %v, want only dataset.json", entries)
	}
}
