package backup_test

import (
	"testing"

	"rollbook/internal/backup"
	"rollbook/internal/model"
	"rollbook/internal/testutil"
)

func TestReconcileAccounts(t *testing.T) {
	restored := []model.UserAccount{
		{ID: "u1", Username: "alice", Password: backup.CredentialSentinel},
		{ID: "u2", Username: "bob", Password: backup.CredentialSentinel},
	}
	live := []model.UserAccount{
		{ID: "u1", Username: "alice", Password: "secret123"},
	}

	out := backup.ReconcileAccounts(restored, live)

	if got := out[0].Password; got != "secret123" {
		t.Errorf("alice password = %q, want the live credential", got)
	}
	if got := out[1].Password; got != backup.DefaultCredential {
		t.Errorf("bob password = %q, want %q", got, backup.DefaultCredential)
	}
}

func TestReconcileAccountsNeverUsesSnapshotCredential(t *testing.T) {
	// Even if a snapshot somehow carries a real-looking password, it must
	// not survive reconciliation.
	restored := []model.UserAccount{
		{ID: "u1", Username: "eve", Password: "leaked"},
	}

	out := backup.ReconcileAccounts(restored, nil)
	if got := out[0].Password; got != backup.DefaultCredential {
		t.Errorf("password = %q, want %q", got, backup.DefaultCredential)
	}
}

func TestApplyRestoreReplacesCollections(t *testing.T) {
	snap := backup.BuildSnapshot(testutil.SampleDataset(), testutil.FixedClock())
	live := []model.UserAccount{
		{ID: "u1", Username: "admin", Password: "pw1"},
	}

	ds := backup.ApplyRestore(snap, live)

	if got, want := len(ds.Students), 3; got != want {
		t.Errorf("students = %d, want %d", got, want)
	}
	if got, want := len(ds.Subjects), 2; got != want {
		t.Errorf("subjects = %d, want %d", got, want)
	}
	if got, want := len(ds.AttendanceRecords), 5; got != want {
		t.Errorf("attendance records = %d, want %d", got, want)
	}
	if got := ds.Users[0].Password; got != "pw1" {
		t.Errorf("admin password = %q, want the live credential", got)
	}
}
