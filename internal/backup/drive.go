package backup

import (
	"context"
	"time"
)

// AccountInfo identifies the account behind an active remote session.
type AccountInfo struct {
	ID    string
	Name  string
	Email string
}

// DriveFile describes a file stored on the remote drive.
type DriveFile struct {
	ID           string
	Name         string
	MimeType     string
	CreatedTime  time.Time
	ModifiedTime time.Time
	Size         int64
}

// Drive is a session-oriented client for a remote object store.
// Implementations live in internal/drive.
//
// Every data operation degrades on failure: string results come back empty,
// slices nil, booleans false. Remote unavailability is a skip, not a crash.
// Data operations attempt an implicit sign-in when no session is active; this
// is a convenience, not a guarantee, since the sign-in itself can be refused.
type Drive interface {
	// Initialize primes the client exactly once and reports whether it
	// succeeded. Subsequent calls are no-ops returning the cached result.
	Initialize(ctx context.Context) bool

	// SignIn establishes a session and reports success.
	SignIn(ctx context.Context) bool

	// SignOut tears the session down. Safe to call without a session.
	SignOut(ctx context.Context)

	// IsSignedIn reports whether a session is currently active.
	IsSignedIn() bool

	// AccountInfo returns the signed-in account, or nil without a session.
	AccountInfo() *AccountInfo

	// CreateFolder creates a folder and returns its id, or "" on failure.
	// parentID may be empty for a top-level folder.
	CreateFolder(ctx context.Context, name, parentID string) string

	// FindFolderByName returns the id of the first folder with the exact
	// name, or "" if none exists or the lookup failed.
	FindFolderByName(ctx context.Context, name string) string

	// UploadFile creates a new file and returns its id, or "" on failure.
	UploadFile(ctx context.Context, name string, content []byte, folderID string) string

	// UpdateFile overwrites an existing file's content in place. The old
	// content remains visible if the update fails; no torn writes.
	UpdateFile(ctx context.Context, fileID string, content []byte) bool

	// ListFiles returns files in the folder whose names start with
	// namePrefix, most recently modified first. Empty on failure.
	ListFiles(ctx context.Context, folderID, namePrefix string) []DriveFile

	// DownloadFile returns the file's content, or nil on failure.
	DownloadFile(ctx context.Context, fileID string) []byte

	// DeleteFile removes a file and reports success.
	DeleteFile(ctx context.Context, fileID string) bool

	// FindFileByName returns the file with the exact name within the
	// folder, or nil if none exists or the lookup failed.
	FindFileByName(ctx context.Context, name, folderID string) *DriveFile
}
