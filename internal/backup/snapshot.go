package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rollbook/internal/model"
)

// CredentialSentinel replaces account passwords in snapshots.
// A snapshot never contains a real credential.
const CredentialSentinel = "***"

// ErrMalformedSnapshot is returned by DecodeSnapshot when the input is not
// parseable or lacks required fields. Check with errors.Is.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Snapshot is an immutable point-in-time copy of the dataset. The three open
// collections are copied verbatim; user accounts carry the redaction sentinel
// in place of their password. The JSON field names are the durable export
// format and must stay stable.
type Snapshot struct {
	Students          []model.Student          `json:"students"`
	Subjects          []model.Subject          `json:"subjects"`
	AttendanceRecords []model.AttendanceRecord `json:"attendanceRecords"`
	Users             []model.UserAccount      `json:"users"`
	CreatedAt         time.Time                `json:"timestamp"`
}

// BuildSnapshot constructs a snapshot from the live dataset. The collections
// are copied so later mutations of the dataset do not leak into the snapshot,
// and every account password is replaced with CredentialSentinel.
func BuildSnapshot(ds model.Dataset, clock Clock) *Snapshot {
	users := make([]model.UserAccount, len(ds.Users))
	for i, u := range ds.Users {
		u.Password = CredentialSentinel
		users[i] = u
	}

	return &Snapshot{
		Students:          append([]model.Student(nil), ds.Students...),
		Subjects:          append([]model.Subject(nil), ds.Subjects...),
		AttendanceRecords: append([]model.AttendanceRecord(nil), ds.AttendanceRecords...),
		Users:             users,
		CreatedAt:         clock.Now().UTC(),
	}
}

// EncodeSnapshot serializes a snapshot to its durable JSON form.
// The output is indented because it doubles as the user-facing export format.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses snapshot bytes produced by EncodeSnapshot.
// Unparseable input or a missing timestamp yields ErrMalformedSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing timestamp", ErrMalformedSnapshot)
	}
	return &snap, nil
}
