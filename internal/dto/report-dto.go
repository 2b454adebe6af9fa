package dto

// LoanStatsDTO is the quick counters block shown on the loan screen.
type LoanStatsDTO struct {
	Active   int64 `json:"active"`
	Today    int64 `json:"today"`
	LastWeek int64 `json:"last_week"`
	Overdue  int64 `json:"overdue"`
}

// DashboardStatsDTO is the administrator landing-page summary.
type DashboardStatsDTO struct {
	TotalDevices     int64 `json:"total_devices"`
	AvailableDevices int64 `json:"available_devices"`
	TotalStudents    int64 `json:"total_students"`
	ActiveLoans      int64 `json:"active_loans"`
	LoansToday       int64 `json:"loans_today"`
}

type TopDeviceDTO struct {
	DeviceCode string `json:"device_code"`
	TotalLoans int64  `json:"total_loans"`
}

type TopStudentDTO struct {
	StudentName  string `json:"student_name"`
	NationalID   string `json:"national_id"`
	GradeSection string `json:"grade_section"`
	TotalLoans   int64  `json:"total_loans"`
}

type LoansPerDayDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type LoansPerGradeDTO struct {
	GradeSection string `json:"grade_section"`
	TotalLoans   int64  `json:"total_loans"`
}

// RangeMetricsDTO aggregates loan activity inside an optional date range.
type RangeMetricsDTO struct {
	TotalLoans   int64              `json:"total_loans"`
	PendingLoans int64              `json:"pending_loans"`
	TopDevices   []TopDeviceDTO     `json:"top_devices"`
	TopStudents  []TopStudentDTO    `json:"top_students"`
	LoansPerDay  []LoansPerDayDTO   `json:"loans_per_day"`
	LoansByGrade []LoansPerGradeDTO `json:"loans_by_grade"`
}
