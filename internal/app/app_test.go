package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rollbook/internal/backup"
	"rollbook/internal/config"
	"rollbook/internal/testutil"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.NewConfig(t.TempDir())
	cfg.Store.Type = "memory"
	cfg.Drive.Type = "memory"
	cfg.Encryption.Type = "test"

	a, err := NewApp(cfg, "test")
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	if err := SaveDataset(cfg.DatasetPath, testutil.SampleDataset()); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	return a
}

func TestAppBackupNowAndRestoreLocal(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	snap, err := a.BackupNow(ctx)
	if err != nil {
		t.Fatalf("BackupNow: %v", err)
	}
	if got := snap.Users[0].Password; got != backup.CredentialSentinel {
		t.Errorf("snapshot credential = %q, want the redaction sentinel", got)
	}

	locals, err := a.ListLocal()
	if err != nil {
		t.Fatalf("ListLocal: %v", err)
	}
	if len(locals) != 1 {
		t.Fatalf("local backups = %d, want 1", len(locals))
	}

	// Lose some data, then restore.
	ds, _ := LoadDataset(a.cfg.DatasetPath)
	ds.Students = nil
	if err := SaveDataset(a.cfg.DatasetPath, ds); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	if err := a.RestoreLocal(locals[0].DateKey); err != nil {
		t.Fatalf("RestoreLocal: %v", err)
	}

	restored, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if got, want := len(restored.Students), 3; got != want {
		t.Errorf("students after restore = %d, want %d", got, want)
	}
	if got := restored.Users[0].Password; got != "pw1" {
		t.Errorf("credential after restore = %q, want the live pw1", got)
	}
}

func TestAppExportImportPlain(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "export.json")

	if err := a.Export(out, ""); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if data[0] != '{' {
		t.Error("plain export is not JSON")
	}

	if err := a.Import(out, ""); err != nil {
		t.Fatalf("Import: %v", err)
	}

	ds, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if got, want := len(ds.AttendanceRecords), 5; got != want {
		t.Errorf("attendance records = %d, want %d", got, want)
	}
}

func TestAppExportImportEncrypted(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "export.enc")

	if err := a.Export(out, "hunter2"); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if data[0] == '{' {
		t.Error("encrypted export looks like plain JSON")
	}

	if err := a.Import(out, "wrong"); err == nil {
		t.Error("Import succeeded with the wrong passphrase")
	}
	if err := a.Import(out, "hunter2"); err != nil {
		t.Fatalf("Import: %v", err)
	}
}

func TestAppImportMalformed(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := a.Import(path, ""); err == nil {
		t.Error("Import accepted a malformed snapshot")
	}
}

func TestAppBackupNowReachesRemoteInFreshProcess(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	// No explicit Connect: drive session state is per-process, so the
	// backup and listing paths must resume one themselves.
	if _, err := a.BackupNow(ctx); err != nil {
		t.Fatalf("BackupNow: %v", err)
	}

	remotes := a.ListRemote(ctx)
	if len(remotes) != 1 {
		t.Errorf("remote backups = %d, want 1", len(remotes))
	}
}

func TestAppRunResumesRemoteSession(t *testing.T) {
	a := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for a.RemoteAccount() == nil {
		select {
		case <-deadline:
			cancel()
			t.Fatal("Run did not resume a remote session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestAppRemoteLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if a.RemoteAccount() != nil {
		t.Error("fresh app reports a remote account")
	}

	account, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if account == nil {
		t.Fatal("Connect returned a nil account")
	}

	if _, err := a.BackupNow(ctx); err != nil {
		t.Fatalf("BackupNow: %v", err)
	}

	remotes := a.ListRemote(ctx)
	if len(remotes) != 1 {
		t.Fatalf("remote backups = %d, want 1", len(remotes))
	}

	if err := a.RestoreRemote(ctx, remotes[0].ID); err != nil {
		t.Fatalf("RestoreRemote: %v", err)
	}

	a.Disconnect(ctx)
	if a.RemoteAccount() != nil {
		t.Error("remote account still set after Disconnect")
	}
}
