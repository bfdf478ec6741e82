package backup

import (
	"context"
	"fmt"

	"rollbook/internal/model"
)

// Engine is the backup and synchronization facade the application talks to.
// It is explicitly constructed and dependency-injected; all session state
// (timer, cached folder id, auth flag) lives in its collaborators, not in
// package globals.
type Engine struct {
	local     *LocalStore
	remote    *RemoteStore
	drive     Drive
	scheduler *Scheduler
	logger    Logger
	clock     Clock
}

// NewEngine wires an Engine from its collaborators.
func NewEngine(local *LocalStore, remote *RemoteStore, drive Drive, scheduler *Scheduler, logger Logger, clock Clock) *Engine {
	return &Engine{
		local:     local,
		remote:    remote,
		drive:     drive,
		scheduler: scheduler,
		logger:    logger,
		clock:     clock,
	}
}

// StartAutomaticBackup begins the recurring backup cycle, pulling the live
// dataset through the callback on every tick. Restarting is idempotent.
func (e *Engine) StartAutomaticBackup(pull PullFunc) {
	e.scheduler.Start(pull)
}

// StopAutomaticBackup cancels the recurring cycle. Safe when not running.
func (e *Engine) StopAutomaticBackup() {
	e.scheduler.Stop()
}

// CreateManualBackup snapshots the dataset and persists it to both tiers.
// A local write failure is returned to the caller; a remote failure is only
// logged, since the remote tier is best-effort by contract.
func (e *Engine) CreateManualBackup(ctx context.Context, ds model.Dataset) (*Snapshot, error) {
	snap := BuildSnapshot(ds, e.clock)

	if err := e.local.Save(snap); err != nil {
		return nil, fmt.Errorf("saving manual backup: %w", err)
	}

	if e.drive.IsSignedIn() {
		if !e.remote.Save(ctx, snap) {
			e.logger.Warn("manual backup not replicated to remote tier")
		}
	}
	return snap, nil
}

// ExportSnapshot serializes a snapshot to the durable file format.
func (e *Engine) ExportSnapshot(snap *Snapshot) ([]byte, error) {
	return EncodeSnapshot(snap)
}

// ImportSnapshot parses user-supplied snapshot bytes. Malformed input yields
// ErrMalformedSnapshot for the caller to surface.
func (e *Engine) ImportSnapshot(data []byte) (*Snapshot, error) {
	return DecodeSnapshot(data)
}

// ListLocalBackups returns the retained local entries, most recent first.
func (e *Engine) ListLocalBackups() ([]*LocalBackup, error) {
	return e.local.List()
}

// ListRemoteBackups returns the retained remote entries, most recent first.
// Empty without an active session.
func (e *Engine) ListRemoteBackups(ctx context.Context) []RemoteBackup {
	return e.remote.List(ctx)
}

// ResumeRemoteSession attempts to re-establish a drive session. Session state
// never outlives the process, so flows that read or replicate to the remote
// tier call this before the IsSignedIn gates; otherwise a fresh process could
// never satisfy them. Failure is not an error, it just leaves the process in
// local-only mode.
func (e *Engine) ResumeRemoteSession(ctx context.Context) bool {
	if e.drive.IsSignedIn() {
		return true
	}
	if !e.drive.Initialize(ctx) {
		return false
	}
	if !e.drive.SignIn(ctx) {
		return false
	}
	e.logger.Info("remote session resumed")
	return true
}

// ConnectRemote initializes the drive client and signs in.
func (e *Engine) ConnectRemote(ctx context.Context) bool {
	if !e.drive.Initialize(ctx) {
		return false
	}
	return e.drive.SignIn(ctx)
}

// DisconnectRemote signs out and drops per-session remote state.
func (e *Engine) DisconnectRemote(ctx context.Context) {
	e.drive.SignOut(ctx)
	e.remote.ResetSession()
}

// RemoteAccount returns the signed-in remote account, or nil.
func (e *Engine) RemoteAccount() *AccountInfo {
	return e.drive.AccountInfo()
}

// RestoreLocal rebuilds a dataset from the local bucket with the given date
// key, reconciling account credentials against the live accounts. Returns an
// error when the bucket is absent or unreadable.
func (e *Engine) RestoreLocal(dateKey string, liveUsers []model.UserAccount) (model.Dataset, error) {
	snap, err := e.local.Find(dateKey)
	if err != nil {
		return model.Dataset{}, err
	}
	if snap == nil {
		return model.Dataset{}, fmt.Errorf("no local backup for %s", dateKey)
	}
	return ApplyRestore(snap, liveUsers), nil
}

// RestoreRemote rebuilds a dataset from a remote backup file. The second
// return is false when the file could not be fetched or decoded, regardless
// of cause.
func (e *Engine) RestoreRemote(ctx context.Context, fileID string, liveUsers []model.UserAccount) (model.Dataset, bool) {
	snap := e.remote.Restore(ctx, fileID)
	if snap == nil {
		return model.Dataset{}, false
	}
	return ApplyRestore(snap, liveUsers), true
}
