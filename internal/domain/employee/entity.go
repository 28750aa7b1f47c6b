package employee

import "time"

// MaxLookupBatch is the most values a single multi-value lookup accepts.
const MaxLookupBatch = 10

type Employee struct {
	ID           string
	UserID       *string
	EmployeeCode string
	FullName     string
	Designation  string
	Department   string
	Shift        string
	Email        string
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
