package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"rollbook/internal/backup"
	"rollbook/internal/config"
	"rollbook/internal/drive"
	"rollbook/internal/encryption"
	"rollbook/internal/model"
	"rollbook/internal/store"
)

// App is the application layer between the CLI and the backup Engine.
// It constructs all dependencies from config, exposes high-level operations
// that work on the dataset file, and manages the store lifecycle on Close.
type App struct {
	cfg       *config.Config
	kv        backup.KVStore
	drv       backup.Drive
	encryptor backup.Encryptor
	engine    *backup.Engine
	logger    backup.Logger
	clock     backup.Clock
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "BackupNow", "Run").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, parseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("op", operation)}

	kv, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	drv, err := drive.NewDriveFromConfig(cfg.Drive, logger)
	if err != nil {
		kv.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating drive: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		kv.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := backup.RealClock{}
	local := backup.NewLocalStore(kv, logger, clock)
	remote := backup.NewRemoteStore(drv, logger, clock, cfg.Backup.FolderName, cfg.Backup.FilePrefix)
	scheduler := backup.NewScheduler(local, remote, drv, logger, clock,
		time.Duration(cfg.Backup.IntervalHours)*time.Hour,
		time.Duration(cfg.Backup.InitialDelaySeconds)*time.Second)
	engine := backup.NewEngine(local, remote, drv, scheduler, logger, clock)

	return &App{
		cfg:       cfg,
		kv:        kv,
		drv:       drv,
		encryptor: enc,
		engine:    engine,
		logger:    logger,
		clock:     clock,
		logFile:   logFile,
	}, nil
}

// BackupNow snapshots the current dataset and saves it to both tiers. The
// remote tier is reached when a session can be resumed; otherwise the backup
// stays local.
func (a *App) BackupNow(ctx context.Context) (*backup.Snapshot, error) {
	ds, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	a.engine.ResumeRemoteSession(ctx)
	return a.engine.CreateManualBackup(ctx, ds)
}

// ListLocal returns the retained local backups, most recent first.
func (a *App) ListLocal() ([]*backup.LocalBackup, error) {
	return a.engine.ListLocalBackups()
}

// ListRemote returns the retained remote backups, most recent first. A
// session is resumed when possible; empty when none can be established.
func (a *App) ListRemote(ctx context.Context) []backup.RemoteBackup {
	a.engine.ResumeRemoteSession(ctx)
	return a.engine.ListRemoteBackups(ctx)
}

// Export snapshots the current dataset and writes it to outPath. A non-empty
// passphrase encrypts the export; an empty one writes plain JSON.
func (a *App) Export(outPath, passphrase string) error {
	ds, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return err
	}

	snap := backup.BuildSnapshot(ds, a.clock)
	data, err := a.engine.ExportSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if passphrase != "" {
		var buf bytes.Buffer
		if err := a.encryptor.Encrypt(passphrase, bytes.NewReader(data), &buf); err != nil {
			return fmt.Errorf("encrypting export: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}

	a.logger.Info("exported snapshot", "path", outPath, "encrypted", passphrase != "")
	return nil
}

// Import reads a snapshot file, decrypting it first when it carries the
// encryption header, and adopts it as the live dataset. Credentials are
// reconciled against the current accounts before anything is replaced.
func (a *App) Import(inPath, passphrase string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	if passphrase != "" {
		var buf bytes.Buffer
		if err := a.encryptor.Decrypt(passphrase, bytes.NewReader(data), &buf); err != nil {
			return fmt.Errorf("decrypting import: %w", err)
		}
		data = buf.Bytes()
	} else if encryption.IsEncrypted(data) {
		return fmt.Errorf("file %s is encrypted, a passphrase is required", inPath)
	}

	snap, err := a.engine.ImportSnapshot(data)
	if err != nil {
		return fmt.Errorf("parsing import: %w", err)
	}

	return a.adoptSnapshot(snap)
}

// RestoreLocal replaces the live dataset from the local backup with the given
// date key.
func (a *App) RestoreLocal(dateKey string) error {
	live, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return err
	}

	ds, err := a.engine.RestoreLocal(dateKey, live.Users)
	if err != nil {
		return err
	}

	if err := SaveDataset(a.cfg.DatasetPath, ds); err != nil {
		return err
	}
	a.logger.Info("restored local backup", "dateKey", dateKey)
	return nil
}

// RestoreRemote replaces the live dataset from a remote backup file.
func (a *App) RestoreRemote(ctx context.Context, fileID string) error {
	live, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return err
	}

	ds, ok := a.engine.RestoreRemote(ctx, fileID, live.Users)
	if !ok {
		return fmt.Errorf("remote backup %s could not be fetched", fileID)
	}

	if err := SaveDataset(a.cfg.DatasetPath, ds); err != nil {
		return err
	}
	a.logger.Info("restored remote backup", "fileID", fileID)
	return nil
}

// adoptSnapshot reconciles an imported snapshot against the live accounts and
// replaces the dataset file.
func (a *App) adoptSnapshot(snap *backup.Snapshot) error {
	live, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return err
	}

	ds := backup.ApplyRestore(snap, live.Users)
	if err := SaveDataset(a.cfg.DatasetPath, ds); err != nil {
		return err
	}

	a.logger.Info("imported snapshot",
		"students", len(ds.Students),
		"subjects", len(ds.Subjects),
		"records", len(ds.AttendanceRecords))
	return nil
}

// Connect initializes the remote drive client and signs in.
func (a *App) Connect(ctx context.Context) (*backup.AccountInfo, error) {
	if !a.engine.ConnectRemote(ctx) {
		return nil, fmt.Errorf("remote sign-in failed")
	}
	return a.engine.RemoteAccount(), nil
}

// Disconnect signs out of the remote drive.
func (a *App) Disconnect(ctx context.Context) {
	a.engine.DisconnectRemote(ctx)
}

// RemoteAccount returns the signed-in remote account, or nil when there is no
// active session.
func (a *App) RemoteAccount() *backup.AccountInfo {
	return a.engine.RemoteAccount()
}

// Run starts the automatic backup cycle and blocks until ctx is cancelled.
// Each tick re-reads the dataset file; a read failure keeps the last good
// dataset so a transient error never backs up an empty register.
func (a *App) Run(ctx context.Context) error {
	last, err := LoadDataset(a.cfg.DatasetPath)
	if err != nil {
		return err
	}

	pull := func() model.Dataset {
		ds, err := LoadDataset(a.cfg.DatasetPath)
		if err != nil {
			a.logger.Error("failed to reload dataset, using previous", "error", err)
			return last
		}
		last = ds
		return ds
	}

	// Scheduled ticks gate remote replication on an active session, and a
	// fresh process never has one; try to resume before the first tick.
	if !a.engine.ResumeRemoteSession(ctx) {
		a.logger.Warn("no remote session, scheduled backups stay local")
	}

	a.engine.StartAutomaticBackup(pull)
	<-ctx.Done()
	a.engine.StopAutomaticBackup()
	return nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.kv.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
