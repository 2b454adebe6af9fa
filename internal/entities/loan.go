package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Loan records a device being held by a student. The student name and
// grade are snapshots taken at open time; the national id is the logical
// link back to the student. ClosedAt null means the loan is open.
type Loan struct {
	ID           uint64      `json:"id"`
	StudentName  string      `json:"student_name"`
	NationalID   string      `json:"national_id"`
	GradeSection string      `json:"grade_section"`
	DeviceCode   string      `json:"device_code"`
	OpenedAt     time.Time   `json:"opened_at"`
	ClosedAt     null.Time   `json:"closed_at,omitempty"`
	Notes        null.String `json:"notes,omitempty"`
}

// IsOpen reports whether the device is still out.
func (l Loan) IsOpen() bool {
	return !l.ClosedAt.Valid
}
