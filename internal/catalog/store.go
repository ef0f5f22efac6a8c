// Package catalog defines the interface for storing and retrieving the
// authoritative course catalog: course records, the sparse mapping from a
// course to its declared prerequisites, and the elective-track relation.
//
// # Why the Catalog Store Exists
//
// The store isolates the catalog data from everything derived from it. The
// prerequisite graph (package dag) holds no state of its own: it is rebuilt
// from a Store each time a question is asked, so a mutation is visible to the
// very next query and nothing has to be invalidated.
//
// # Sparse Prerequisites
//
// A course without prerequisites is simply absent from the mapping.
// PrerequisitesOf hides that detail and always returns an empty slice for such
// a course, so callers never branch on "missing key vs. empty list".
package catalog

import "context"

// Store is the interface for managing a curriculum catalog.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: the HTTP layer serves reads
// while an administrator edits prerequisites.
//
// # Typical Implementation
//
// See internal/inmemorycatalog for the reference in-memory implementation.
type Store interface {
	// UpsertCourse inserts or replaces a course record. Overwriting an
	// existing code is not an error; the last write wins. Prerequisites and
	// track placements of an existing course are kept.
	UpsertCourse(ctx context.Context, c Course) error

	// SetPrerequisites replaces the prerequisite list of code.
	//
	// Every entry must be a known course, as must code itself; otherwise an
	// *UnknownCourseError is returned and the catalog is left untouched.
	// Duplicate entries collapse to their first occurrence. An empty list
	// deletes the entry from the mapping.
	SetPrerequisites(ctx context.Context, code string, prereqs []string) error

	// RemoveCourse deletes a course together with every reference to it:
	// its own prerequisite entry, its appearances in other courses'
	// prerequisite lists and its track placements.
	RemoveCourse(ctx context.Context, code string) error

	// Course returns the record stored under code.
	Course(ctx context.Context, code string) (Course, bool)

	// Courses returns every course ordered by term, then code.
	Courses(ctx context.Context) []Course

	// AllCourseCodes returns every known code, sorted.
	AllCourseCodes(ctx context.Context) []string

	// PrerequisitesOf returns the declared prerequisites of code in their
	// declared order. The result is empty, never nil, when none are declared.
	PrerequisitesOf(ctx context.Context, code string) []string

	// Prerequisites returns a copy of the sparse prerequisite mapping.
	Prerequisites(ctx context.Context) map[string][]string

	// Place records that a known course belongs to an elective track in the
	// given term. Placing the same course in the same track again replaces
	// the term.
	Place(ctx context.Context, p Placement) error

	// RemoveTrack deletes every placement of the named track.
	RemoveTrack(ctx context.Context, track string) error

	// Placements returns the elective-track relation ordered by track, term
	// and course.
	Placements(ctx context.Context) []Placement
}
