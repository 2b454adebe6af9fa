package dto

import "github.com/aarondl/null/v8"

type RegisterStudentDTO struct {
	FirstNames       string      `json:"first_names" validate:"required"`
	LastNamePaternal string      `json:"last_name_paternal" validate:"required"`
	LastNameMaternal string      `json:"last_name_maternal" validate:"required"`
	NationalID       string      `json:"national_id" validate:"required,numeric_ci"`
	Grade            string      `json:"grade" validate:"required"`
	Section          string      `json:"section" validate:"required"`
	Phone            null.String `json:"phone,omitempty"`
}

type UpdateStudentDTO struct {
	FirstNames       *string     `json:"first_names,omitempty" validate:"omitempty,min=1"`
	LastNamePaternal *string     `json:"last_name_paternal,omitempty" validate:"omitempty,min=1"`
	LastNameMaternal *string     `json:"last_name_maternal,omitempty" validate:"omitempty,min=1"`
	NationalID       *string     `json:"national_id,omitempty" validate:"omitempty,numeric_ci"`
	Grade            *string     `json:"grade,omitempty" validate:"omitempty,min=1"`
	Section          *string     `json:"section,omitempty" validate:"omitempty,min=1"`
	Phone            null.String `json:"phone,omitempty"`
}

type StudentDTO struct {
	ID               uint64      `json:"id"`
	FirstNames       string      `json:"first_names"`
	LastNamePaternal string      `json:"last_name_paternal"`
	LastNameMaternal string      `json:"last_name_maternal"`
	NationalID       string      `json:"national_id"`
	Grade            string      `json:"grade"`
	Section          string      `json:"section"`
	Phone            null.String `json:"phone,omitempty"`
	Status           string      `json:"status"`
}

// GradeConfigDTO is one rung of the grade ladder as served to the
// registration form dropdowns.
type GradeConfigDTO struct {
	Grade    string   `json:"grade"`
	Sections []string `json:"sections"`
	Position int      `json:"position"`
}

// PromotionSummaryDTO reports the outcome of a grade-promotion batch run.
type PromotionSummaryDTO struct {
	Promoted    map[string]int64 `json:"promoted"`
	Deactivated int64            `json:"deactivated"`
}

// StudentLoanCountDTO lists a student together with their open-loan count.
type StudentLoanCountDTO struct {
	StudentDTO
	ActiveLoans int64 `json:"active_loans"`
}
