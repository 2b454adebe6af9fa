package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// ReportFilter narrows the advanced loan report. Status filters on the
// loan lifecycle: "pending" keeps open loans, "returned" closed ones.
type ReportFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Status   string
	Grade    string
}

type ReportItem struct {
	LoanID       uint64      `json:"loan_id"`
	StudentName  string      `json:"student_name"`
	NationalID   string      `json:"national_id"`
	GradeSection string      `json:"grade_section"`
	DeviceCode   string      `json:"device_code"`
	DeviceState  string      `json:"device_state"`
	OpenedAt     time.Time   `json:"opened_at"`
	ClosedAt     null.Time   `json:"closed_at,omitempty"`
	Notes        null.String `json:"notes,omitempty"`
	LoanStatus   string      `json:"loan_status"`
}
