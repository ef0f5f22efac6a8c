package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCourse is returned when a referenced code is not in the catalog.
	ErrUnknownCourse = errors.New("unknown course")
	// ErrDanglingPrerequisite is returned when a prerequisite edge points at
	// a course that does not exist.
	ErrDanglingPrerequisite = errors.New("dangling prerequisite")
	// ErrInvalidCourse is returned for malformed course records.
	ErrInvalidCourse = errors.New("invalid course")
	// ErrSelfPrerequisite is returned when a course lists itself.
	ErrSelfPrerequisite = errors.New("course cannot be its own prerequisite")
)

// UnknownCourseError lists the codes that could not be resolved.
type UnknownCourseError struct {
	Codes []string
}

func (e *UnknownCourseError) Error() string {
	return fmt.Sprintf("unknown course: %s", strings.Join(e.Codes, ", "))
}

// Is reports whether target is ErrUnknownCourse.
func (e *UnknownCourseError) Is(target error) bool {
	return target == ErrUnknownCourse
}

// Edge is a directed prerequisite relation: From must be completed before To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DanglingError lists prerequisite edges with a missing endpoint.
type DanglingError struct {
	Edges []Edge
}

func (e *DanglingError) Error() string {
	parts := make([]string, 0, len(e.Edges))
	for _, edge := range e.Edges {
		parts = append(parts, edge.From+" -> "+edge.To)
	}
	return fmt.Sprintf("dangling prerequisite: %s", strings.Join(parts, ", "))
}

// Is reports whether target is ErrDanglingPrerequisite.
func (e *DanglingError) Is(target error) bool {
	return target == ErrDanglingPrerequisite
}
