package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:     "/home/user/.local/share/rollbook",
		LogDir:      "/home/user/.local/share/rollbook/log",
		DatasetPath: "/home/user/.local/share/rollbook/dataset.json",
		Backup: BackupConfig{
			IntervalHours:       6,
			InitialDelaySeconds: 5,
			FolderName:          "Rollbook Backups",
			FilePrefix:          "attendance_backup_",
		},
		Store: StoreConfig{Type: "sqlite", DataDir: "/home/user/.local/share/rollbook/backups"},
		Drive: DriveConfig{
			Type:     "s3",
			S3Bucket: "rollbook-backups",
			S3Prefix: "prod",
			S3Region: "us-east-1",
		},
		Encryption: EncryptionConfig{Type: "age"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.DatasetPath != original.DatasetPath {
		t.Errorf("DatasetPath = %q, want %q", got.DatasetPath, original.DatasetPath)
	}
	if got.Backup.IntervalHours != 6 {
		t.Errorf("Backup.IntervalHours = %d, want 6", got.Backup.IntervalHours)
	}
	if got.Backup.FolderName != "Rollbook Backups" {
		t.Errorf("Backup.FolderName = %q, want %q", got.Backup.FolderName, "Rollbook Backups")
	}
	if got.Store.Type != "sqlite" {
		t.Errorf("Store.Type = %q, want %q", got.Store.Type, "sqlite")
	}
	if got.Drive.Type != "s3" {
		t.Errorf("Drive.Type = %q, want %q", got.Drive.Type, "s3")
	}
	if got.Drive.S3Bucket != "rollbook-backups" {
		t.Errorf("Drive.S3Bucket = %q, want %q", got.Drive.S3Bucket, "rollbook-backups")
	}
	if got.Encryption.Type != "age" {
		t.Errorf("Encryption.Type = %q, want %q", got.Encryption.Type, "age")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/rollbook")

	if cfg.BaseDir != "/data/rollbook" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/rollbook")
	}
	if cfg.LogDir != "/data/rollbook/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/rollbook/log")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DatasetPath != "/data/rollbook/dataset.json" {
		t.Errorf("DatasetPath = %q, want %q", cfg.DatasetPath, "/data/rollbook/dataset.json")
	}
	if cfg.Backup.IntervalHours != 6 {
		t.Errorf("Backup.IntervalHours = %d, want 6", cfg.Backup.IntervalHours)
	}
	if cfg.Backup.InitialDelaySeconds != 5 {
		t.Errorf("Backup.InitialDelaySeconds = %d, want 5", cfg.Backup.InitialDelaySeconds)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "sqlite")
	}
	if cfg.Store.DataDir != "/data/rollbook/backups" {
		t.Errorf("Store.DataDir = %q, want %q", cfg.Store.DataDir, "/data/rollbook/backups")
	}
	if cfg.Drive.Type != "memory" {
		t.Errorf("Drive.Type = %q, want %q", cfg.Drive.Type, "memory")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rollbook.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rollbook.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rollbook.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/rollbook.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
