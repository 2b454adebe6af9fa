package entities

import "github.com/aarondl/null/v8"

type Student struct {
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

// DisplayName is the denormalized name snapshot written into a loan row.
func (s Student) DisplayName() string {
	return s.FirstNames + " " + s.LastNamePaternal + " " + s.LastNameMaternal
}

// GradeSection renders the "5° B" style label stored on loans.
func (s Student) GradeSection() string {
	return s.Grade + "° " + s.Section
}
