package drive

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rollbook/internal/backup"
)

// MemoryDrive is an in-memory implementation of the Drive interface with a
// simulated session. It is the test backend and is safe for concurrent use.
// Sign-in succeeds unless explicitly denied, which models the remote service
// (or the user) refusing the implicit sign-in attempt.
type MemoryDrive struct {
	clock backup.Clock
	ids   backup.IDGenerator

	mu          sync.Mutex
	initialized bool
	signedIn    bool
	denySignIn  bool
	account     backup.AccountInfo
	folders     map[string]string     // folderID -> name
	files       map[string]*fileEntry // fileID -> entry
}

type fileEntry struct {
	id       string
	name     string
	folderID string
	content  []byte
	created  time.Time
	modified time.Time
}

// NewMemoryDrive creates an empty in-memory drive. A nil clock falls back to
// the real clock, a nil id generator to random UUIDs.
func NewMemoryDrive(clock backup.Clock, ids backup.IDGenerator) *MemoryDrive {
	if clock == nil {
		clock = backup.RealClock{}
	}
	if ids == nil {
		ids = backup.UUIDGenerator{}
	}
	return &MemoryDrive{
		clock: clock,
		ids:   ids,
		account: backup.AccountInfo{
			ID:    "memory-account",
			Name:  "Memory Drive",
			Email: "memory@localhost",
		},
		folders: make(map[string]string),
		files:   make(map[string]*fileEntry),
	}
}

// DenySignIn makes subsequent sign-in attempts (explicit and implicit) fail.
func (m *MemoryDrive) DenySignIn(deny bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denySignIn = deny
	if deny {
		m.signedIn = false
	}
}

// FileCount returns the number of stored files.
func (m *MemoryDrive) FileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func (m *MemoryDrive) Initialize(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return true
}

func (m *MemoryDrive) SignIn(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signInLocked()
}

func (m *MemoryDrive) signInLocked() bool {
	if m.denySignIn {
		return false
	}
	m.initialized = true
	m.signedIn = true
	return true
}

func (m *MemoryDrive) SignOut(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signedIn = false
}

func (m *MemoryDrive) IsSignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signedIn
}

func (m *MemoryDrive) AccountInfo() *backup.AccountInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn {
		return nil
	}
	info := m.account
	return &info
}

func (m *MemoryDrive) CreateFolder(_ context.Context, name, _ string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return ""
	}

	id := m.ids.New()
	m.folders[id] = name
	return id
}

func (m *MemoryDrive) FindFolderByName(_ context.Context, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return ""
	}

	for id, n := range m.folders {
		if n == name {
			return id
		}
	}
	return ""
}

func (m *MemoryDrive) UploadFile(_ context.Context, name string, content []byte, folderID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return ""
	}
	if _, ok := m.folders[folderID]; !ok {
		return ""
	}

	now := m.clock.Now()
	entry := &fileEntry{
		id:       m.ids.New(),
		name:     name,
		folderID: folderID,
		content:  append([]byte(nil), content...),
		created:  now,
		modified: now,
	}
	m.files[entry.id] = entry
	return entry.id
}

func (m *MemoryDrive) UpdateFile(_ context.Context, fileID string, content []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return false
	}

	entry, ok := m.files[fileID]
	if !ok {
		return false
	}
	entry.content = append([]byte(nil), content...)
	entry.modified = m.clock.Now()
	return true
}

func (m *MemoryDrive) ListFiles(_ context.Context, folderID, namePrefix string) []backup.DriveFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return nil
	}

	var out []backup.DriveFile
	for _, entry := range m.files {
		if entry.folderID != folderID || !strings.HasPrefix(entry.name, namePrefix) {
			continue
		}
		out = append(out, entry.driveFile())
	}

	// Most recently modified first, name as tiebreaker for determinism.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModifiedTime.Equal(out[j].ModifiedTime) {
			return out[i].ModifiedTime.After(out[j].ModifiedTime)
		}
		return out[i].Name > out[j].Name
	})
	return out
}

func (m *MemoryDrive) DownloadFile(_ context.Context, fileID string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return nil
	}

	entry, ok := m.files[fileID]
	if !ok {
		return nil
	}
	return append([]byte(nil), entry.content...)
}

func (m *MemoryDrive) DeleteFile(_ context.Context, fileID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return false
	}

	if _, ok := m.files[fileID]; !ok {
		return false
	}
	delete(m.files, fileID)
	return true
}

func (m *MemoryDrive) FindFileByName(_ context.Context, name, folderID string) *backup.DriveFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn && !m.signInLocked() {
		return nil
	}

	for _, entry := range m.files {
		if entry.folderID == folderID && entry.name == name {
			f := entry.driveFile()
			return &f
		}
	}
	return nil
}

func (e *fileEntry) driveFile() backup.DriveFile {
	return backup.DriveFile{
		ID:           e.id,
		Name:         e.name,
		MimeType:     "application/json",
		CreatedTime:  e.created,
		ModifiedTime: e.modified,
		Size:         int64(len(e.content)),
	}
}

// Compile-time check that MemoryDrive implements backup.Drive
var _ backup.Drive = (*MemoryDrive)(nil)
