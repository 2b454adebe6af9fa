package entities

// GradeConfig is one rung of the configured grade ladder. Position
// orders the rungs; promotion advances a student to the next position
// and deactivates students already on the last one.
type GradeConfig struct {
	Grade    string   `json:"grade"`
	Sections []string `json:"sections"`
	Position int      `json:"position"`
	Active   bool     `json:"active"`
}

func (g GradeConfig) HasSection(section string) bool {
	for _, s := range g.Sections {
		if s == section {
			return true
		}
	}
	return false
}
