package store

import (
	"path/filepath"
	"reflect"
	"testing"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSetGet(t *testing.T) {
	s := newSQLiteStore(t)

	if err := s.Set("backup_2024-01-15", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get("backup_2024-01-15")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get = %q, want one", got)
	}

	if err := s.Set("backup_2024-01-15", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get("backup_2024-01-15")
	if string(got) != "two" {
		t.Errorf("Get after overwrite = %q, want two", got)
	}
}

func TestSQLiteStoreGetAbsent(t *testing.T) {
	s := newSQLiteStore(t)

	got, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get absent = %v, want nil", got)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := newSQLiteStore(t)
	s.Set("k", []byte("v"))

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := s.Get("k")
	if got != nil {
		t.Error("entry survived Delete")
	}

	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete absent: %v", err)
	}
}

func TestSQLiteStoreKeys(t *testing.T) {
	s := newSQLiteStore(t)
	s.Set("backup_2024-01-16", []byte("b"))
	s.Set("backup_2024-01-15", []byte("a"))
	s.Set("other_key", []byte("c"))

	keys, err := s.Keys("backup_")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"backup_2024-01-15", "backup_2024-01-16"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Set("k", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening runs migrations again; an up-to-date schema is fine.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get after reopen = %q, want persisted", got)
	}
}
