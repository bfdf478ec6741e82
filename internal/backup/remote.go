package backup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// RemoteRetentionLimit is the number of backup files the remote tier keeps.
const RemoteRetentionLimit = 30

// Defaults for the remote folder and filename scheme. The filename embeds the
// save date: <prefix><YYYY-MM-DD>.json.
const (
	DefaultFolderName = "Rollbook Backups"
	DefaultFilePrefix = "attendance_backup_"
)

// RemoteBackup is one listed entry in the remote tier.
type RemoteBackup struct {
	ID          string
	Name        string
	Date        string
	SizeDisplay string
}

// RemoteStore manages snapshot files in a dedicated folder on a Drive,
// keeping the RemoteRetentionLimit most recently created files. Every
// operation tolerates an unauthenticated or unreachable drive by degrading
// to false/nil/empty.
type RemoteStore struct {
	drive      Drive
	logger     Logger
	clock      Clock
	folderName string
	filePrefix string

	mu       sync.Mutex // guards folderID
	folderID string
}

// NewRemoteStore creates a RemoteStore. Empty folderName or filePrefix fall
// back to the package defaults.
func NewRemoteStore(drive Drive, logger Logger, clock Clock, folderName, filePrefix string) *RemoteStore {
	if folderName == "" {
		folderName = DefaultFolderName
	}
	if filePrefix == "" {
		filePrefix = DefaultFilePrefix
	}
	return &RemoteStore{
		drive:      drive,
		logger:     logger,
		clock:      clock,
		folderName: folderName,
		filePrefix: filePrefix,
	}
}

// EnsureFolder resolves the backup folder, creating it if absent, and caches
// its id for the session. Returns "" when the drive is unavailable. Safe to
// call repeatedly; an existing folder is never duplicated.
func (s *RemoteStore) EnsureFolder(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folderID != "" {
		return s.folderID
	}

	id := s.drive.FindFolderByName(ctx, s.folderName)
	if id == "" {
		id = s.drive.CreateFolder(ctx, s.folderName, "")
		if id == "" {
			s.logger.Warn("could not resolve remote backup folder", "folder", s.folderName)
			return ""
		}
		s.logger.Info("remote backup folder created", "folder", s.folderName, "id", id)
	}
	s.folderID = id
	return id
}

// ResetSession drops the cached folder id. Call after sign-out so the next
// session re-resolves the folder.
func (s *RemoteStore) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folderID = ""
}

// Save uploads the snapshot under today's filename, updating in place when a
// file with that exact name already exists (same-day overwrite, mirroring the
// local tier), then evicts. Returns false on any failure; never raises.
func (s *RemoteStore) Save(ctx context.Context, snap *Snapshot) bool {
	if !s.drive.IsSignedIn() && !s.drive.SignIn(ctx) {
		s.logger.Warn("remote backup skipped, no session")
		return false
	}

	folderID := s.EnsureFolder(ctx)
	if folderID == "" {
		return false
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		s.logger.Error("remote backup skipped, snapshot unencodable", "error", err)
		return false
	}

	name := s.fileName(s.clock.Now().UTC().Format(dateKeyLayout))
	if existing := s.drive.FindFileByName(ctx, name, folderID); existing != nil {
		if !s.drive.UpdateFile(ctx, existing.ID, data) {
			s.logger.Warn("remote backup update failed", "name", name)
			return false
		}
		s.logger.Info("remote backup updated", "name", name, "bytes", len(data))
	} else {
		if s.drive.UploadFile(ctx, name, data, folderID) == "" {
			s.logger.Warn("remote backup upload failed", "name", name)
			return false
		}
		s.logger.Info("remote backup uploaded", "name", name, "bytes", len(data))
	}

	s.evict(ctx, folderID)
	return true
}

// evict deletes every backup file beyond the RemoteRetentionLimit most
// recently created ones. Individual delete failures are logged and retried
// implicitly on the next save.
func (s *RemoteStore) evict(ctx context.Context, folderID string) {
	files := s.drive.ListFiles(ctx, folderID, s.filePrefix)
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedTime.After(files[j].CreatedTime)
	})

	for _, f := range files[min(len(files), RemoteRetentionLimit):] {
		if !s.drive.DeleteFile(ctx, f.ID) {
			s.logger.Warn("failed to evict remote backup", "name", f.Name)
			continue
		}
		s.logger.Debug("remote backup evicted", "name", f.Name)
	}
}

// List returns the retained remote backups sorted by their embedded date,
// most recent first, with human-readable sizes. Empty without a session.
func (s *RemoteStore) List(ctx context.Context) []RemoteBackup {
	if !s.drive.IsSignedIn() {
		return nil
	}

	folderID := s.EnsureFolder(ctx)
	if folderID == "" {
		return nil
	}

	files := s.drive.ListFiles(ctx, folderID, s.filePrefix)
	backups := make([]RemoteBackup, 0, len(files))
	for _, f := range files {
		backups = append(backups, RemoteBackup{
			ID:          f.ID,
			Name:        f.Name,
			Date:        s.dateOf(f.Name),
			SizeDisplay: humanize.Bytes(uint64(f.Size)),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Date > backups[j].Date
	})
	return backups
}

// Restore downloads and decodes the given backup file. Returns nil whether
// the download or the decode failed, so callers present a uniform "could not
// restore" outcome.
func (s *RemoteStore) Restore(ctx context.Context, fileID string) *Snapshot {
	data := s.drive.DownloadFile(ctx, fileID)
	if data == nil {
		s.logger.Warn("remote restore failed, download unavailable", "fileId", fileID)
		return nil
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("remote restore failed, snapshot undecodable", "fileId", fileID, "error", err)
		return nil
	}
	return snap
}

func (s *RemoteStore) fileName(date string) string {
	return fmt.Sprintf("%s%s.json", s.filePrefix, date)
}

// dateOf extracts the embedded date from a backup filename.
func (s *RemoteStore) dateOf(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, s.filePrefix), ".json")
}
