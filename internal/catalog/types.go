package catalog

import (
	"fmt"
	"strings"
)

// DeliveryType tags how a course is taught.
type DeliveryType string

const (
	DeliveryTheory       DeliveryType = "Teori"
	DeliveryLab          DeliveryType = "Praktikum"
	DeliveryTheoryLab    DeliveryType = "Teori+Praktikum"
	DeliveryPractitioner DeliveryType = "Praktisi"
	DeliveryProject      DeliveryType = "Project"
)

// DeliveryTypes lists every known delivery tag in display order.
var DeliveryTypes = []DeliveryType{
	DeliveryTheory,
	DeliveryLab,
	DeliveryTheoryLab,
	DeliveryPractitioner,
	DeliveryProject,
}

// ParseDeliveryType matches s case-insensitively against the known tags. An
// empty string yields the zero value.
func ParseDeliveryType(s string) (DeliveryType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, d := range DeliveryTypes {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown delivery type %q", s)
}

// Course is a single catalog entry. Code is its identity.
type Course struct {
	Code     string
	Name     string
	Credits  int
	Term     int
	Delivery DeliveryType
	Outcomes []string
}

// Validate checks the record's attributes.
func (c Course) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: course code must not be empty", ErrInvalidCourse)
	}
	if c.Credits <= 0 {
		return fmt.Errorf("%w: course %s: credits must be positive, got %d", ErrInvalidCourse, c.Code, c.Credits)
	}
	if c.Term < 1 {
		return fmt.Errorf("%w: course %s: term must be at least 1, got %d", ErrInvalidCourse, c.Code, c.Term)
	}
	return nil
}

// Placement is one row of the elective-track relation: course belongs to
// track and is offered in term.
type Placement struct {
	Course string
	Track  string
	Term   int
}

// PrerequisiteRow is one line of the prerequisite listing.
type PrerequisiteRow struct {
	Course        string   `json:"course"`
	Prerequisites []string `json:"prerequisites"`
	Count         int      `json:"count"`
}
