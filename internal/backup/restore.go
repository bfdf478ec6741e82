package backup

import "rollbook/internal/model"

// DefaultCredential is assigned to restored accounts that have no live
// counterpart to take a real password from.
const DefaultCredential = "password123"

// ReconcileAccounts merges restored accounts against the live ones.
// Snapshots never carry real credentials, so each restored account takes the
// current password of the live account with the same username; accounts with
// no live match get DefaultCredential. Credentials are never taken from a
// snapshot.
func ReconcileAccounts(restored, live []model.UserAccount) []model.UserAccount {
	passwords := make(map[string]string, len(live))
	for _, u := range live {
		passwords[u.Username] = u.Password
	}

	out := make([]model.UserAccount, len(restored))
	for i, u := range restored {
		if pw, ok := passwords[u.Username]; ok {
			u.Password = pw
		} else {
			u.Password = DefaultCredential
		}
		out[i] = u
	}
	return out
}

// ApplyRestore turns a snapshot back into a live dataset. Students, subjects
// and attendance records are replaced wholesale; accounts go through
// ReconcileAccounts against the current live accounts. The caller adopts the
// returned dataset; nothing is mutated here.
func ApplyRestore(snap *Snapshot, liveUsers []model.UserAccount) model.Dataset {
	return model.Dataset{
		Students:          append([]model.Student(nil), snap.Students...),
		Subjects:          append([]model.Subject(nil), snap.Subjects...),
		AttendanceRecords: append([]model.AttendanceRecord(nil), snap.AttendanceRecords...),
		Users:             ReconcileAccounts(snap.Users, liveUsers),
	}
}
