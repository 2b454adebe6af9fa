package dto

import "github.com/aarondl/null/v8"

type OpenLoanDTO struct {
	StudentID  uint64      `json:"student_id" validate:"required,gt=0"`
	DeviceCode string      `json:"device_code" validate:"required"`
	Notes      null.String `json:"notes,omitempty"`
}

type CloseLoanDTO struct {
	LoanID uint64      `json:"loan_id" validate:"required,gt=0"`
	Notes  null.String `json:"notes,omitempty"`
}

// LoanDTO is returned by OpenLoan: the new loan identity plus the
// student snapshot that was written into the ledger.
type LoanDTO struct {
	ID       uint64         `json:"id"`
	Student  LoanStudentDTO `json:"student"`
	Device   ShortDeviceDTO `json:"device"`
	OpenedAt string         `json:"opened_at"`
}

type LoanStudentDTO struct {
	Name         string `json:"name"`
	NationalID   string `json:"national_id"`
	GradeSection string `json:"grade_section"`
}

// LoanReturnDTO is returned by CloseLoan.
type LoanReturnDTO struct {
	ID          uint64 `json:"id"`
	StudentName string `json:"student_name"`
	NationalID  string `json:"national_id"`
	DeviceCode  string `json:"device_code"`
	OpenedAt    string `json:"opened_at"`
	ClosedAt    string `json:"closed_at"`
}

// ActiveLoanDTO joins the open loan with the current student and device
// records for the active-loans listing.
type ActiveLoanDTO struct {
	ID            uint64      `json:"id"`
	StudentName   string      `json:"student_name"`
	NationalID    string      `json:"national_id"`
	GradeSection  string      `json:"grade_section"`
	DeviceCode    string      `json:"device_code"`
	OpenedAt      string      `json:"opened_at"`
	Notes         null.String `json:"notes,omitempty"`
	Phone         null.String `json:"phone,omitempty"`
	StudentStatus null.String `json:"student_status,omitempty"`
	DeviceState   null.String `json:"device_state,omitempty"`
	DaysElapsed   float64     `json:"days_elapsed"`
}

// LoanHistoryItemDTO is one row of a student's full loan history.
type LoanHistoryItemDTO struct {
	ID         uint64      `json:"id"`
	DeviceCode string      `json:"device_code"`
	OpenedAt   string      `json:"opened_at"`
	ClosedAt   null.String `json:"closed_at,omitempty"`
	Notes      null.String `json:"notes,omitempty"`
	Status     string      `json:"status"`
}
