package testutil

import (
	"time"

	"rollbook/internal/model"
)

// SampleDataset returns a small dataset with three students, two subjects,
// five attendance records and one admin account.
func SampleDataset() model.Dataset {
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	return model.Dataset{
		Students: []model.Student{
			{ID: "s1", Name: "Alice Kumar", RollNumber: "CS-001", Phone: "555-0101", Program: "CS", Semester: 3, CreatedAt: created},
			{ID: "s2", Name: "Bob Singh", RollNumber: "CS-002", Phone: "555-0102", Program: "CS", Semester: 3, CreatedAt: created},
			{ID: "s3", Name: "Carol Mehta", RollNumber: "EE-001", Phone: "555-0103", Program: "EE", Semester: 5, CreatedAt: created},
		},
		Subjects: []model.Subject{
			{ID: "sub1", Name: "Data Structures", Code: "CS201", Credits: 4, Semester: 3, CreatedAt: created},
			{ID: "sub2", Name: "Circuits", Code: "EE301", Credits: 3, Semester: 5, CreatedAt: created},
		},
		AttendanceRecords: []model.AttendanceRecord{
			{ID: "a1", StudentID: "s1", SubjectID: "sub1", Date: "2024-01-14", Status: model.StatusPresent, CreatedAt: created},
			{ID: "a2", StudentID: "s2", SubjectID: "sub1", Date: "2024-01-14", Status: model.StatusAbsent, CreatedAt: created},
			{ID: "a3", StudentID: "s3", SubjectID: "sub2", Date: "2024-01-14", Status: model.StatusPresent, CreatedAt: created},
			{ID: "a4", StudentID: "s1", SubjectID: "sub1", Date: "2024-01-15", Status: model.StatusPresent, CreatedAt: created},
			{ID: "a5", StudentID: "s2", SubjectID: "sub1", Date: "2024-01-15", Status: model.StatusPresent, CreatedAt: created},
		},
		Users: []model.UserAccount{
			{ID: "u1", Username: "admin", Password: "pw1", Role: "admin", CreatedAt: created},
		},
	}
}
