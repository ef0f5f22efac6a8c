package config

// Model is the unified, format-agnostic representation of a curriculum
// catalog and the plain records that travel with it.
type Model struct {
	Courses       []*Course
	Prerequisites map[string][]string
	Placements    []*Placement
	Profiles      []*Profile
	Outcomes      []*Outcome
	Exchanges     []*Exchange
}

// NewModel returns an empty model with its maps initialized.
func NewModel() *Model {
	return &Model{Prerequisites: make(map[string][]string)}
}

// Course is the format-agnostic representation of a course record.
type Course struct {
	Code     string
	Name     string
	Credits  int
	Term     int
	Delivery string
	Outcomes []string
}

// Placement puts a course into an elective track for a given term.
type Placement struct {
	Course string
	Track  string
	Term   int
}

// Profile is a graduate profile.
type Profile struct {
	Code        string
	Name        string
	Description string
}

// Outcome is a program learning outcome (CPL).
type Outcome struct {
	Code        string
	Domain      string
	Description string
}

// Exchange is an MBKM credit-conversion activity.
type Exchange struct {
	Activity    string `json:"activity"`
	Credits     int    `json:"credits"`
	MaxCredits  int    `json:"max_credits"`
	Terms       string `json:"terms"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}
