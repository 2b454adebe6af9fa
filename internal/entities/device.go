package entities

import "time"

// Device is a loanable unit ("quipus") identified by its inventory code.
// State is mutated by the loan engine (available <-> loaned) or by an
// explicit administrative override (maintenance, retired).
type Device struct {
	Code         string    `json:"code"`
	State        string    `json:"state"`
	RegisteredAt time.Time `json:"registered_at"`
}
