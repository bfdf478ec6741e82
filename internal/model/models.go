package model

import "time"

// AttendanceStatus marks a student's presence in one class session.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// Student is a registered student in the attendance register.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RollNumber string    `json:"rollNumber"`
	Phone      string    `json:"phone"`
	Program    string    `json:"program"`
	Semester   int       `json:"semester"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Subject is a course that attendance is tracked against.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Credits   int       `json:"credits"`
	Semester  int       `json:"semester"`
	CreatedAt time.Time `json:"createdAt"`
}

// AttendanceRecord is one student's status for one subject on one calendar day.
// Date is a "YYYY-MM-DD" string; that is the granularity attendance is marked at.
type AttendanceRecord struct {
	ID        string           `json:"id"`
	StudentID string           `json:"studentId"`
	SubjectID string           `json:"subjectId"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// UserAccount is a login account. Password holds the real credential in the
// live dataset only; snapshots carry a redaction sentinel instead.
type UserAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	StudentID string    `json:"studentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dataset aggregates the four live collections owned by the application layer.
// The backup engine reads it when snapshotting and returns a new one on
// restore; it never mutates a Dataset in place.
type Dataset struct {
	Students          []Student          `json:"students"`
	Subjects          []Subject          `json:"subjects"`
	AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
	Users             []UserAccount      `json:"users"`
}
