package inmemorycatalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/ctxlog"
)

type placementKey struct {
	course string
	track  string
}

// Store implements the catalog.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu         sync.RWMutex
	courses    map[string]catalog.Course
	prereqs    map[string][]string // sparse: absent key means no prerequisites
	placements map[placementKey]int
}

// New creates a new, empty in-memory catalog store.
func New() catalog.Store {
	return &Store{
		courses:    make(map[string]catalog.Course),
		prereqs:    make(map[string][]string),
		placements: make(map[placementKey]int),
	}
}

// UpsertCourse inserts or replaces a course record.
func (s *Store) UpsertCourse(ctx context.Context, c catalog.Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Outcomes = append([]string(nil), c.Outcomes...)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.courses[c.Code]
	s.courses[c.Code] = c
	ctxlog.FromContext(ctx).Debug("Course stored.", "code", c.Code, "replaced", replaced)
	return nil
}

// SetPrerequisites replaces the prerequisite list of a course.
func (s *Store) SetPrerequisites(ctx context.Context, code string, prereqs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unknown []string
	if _, ok := s.courses[code]; !ok {
		unknown = append(unknown, code)
	}

	seen := make(map[string]struct{}, len(prereqs))
	list := make([]string, 0, len(prereqs))
	for _, p := range prereqs {
		if p == code {
			return fmt.Errorf("%w: %s", catalog.ErrSelfPrerequisite, code)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := s.courses[p]; !ok {
			unknown = append(unknown, p)
			continue
		}
		list = append(list, p)
	}
	if len(unknown) > 0 {
		return &catalog.UnknownCourseError{Codes: unknown}
	}

	if len(list) == 0 {
		delete(s.prereqs, code)
	} else {
		s.prereqs[code] = list
	}
	ctxlog.FromContext(ctx).Debug("Prerequisites set.", "code", code, "prerequisites", list)
	return nil
}

// RemoveCourse deletes a course and cascades the removal to every reference.
func (s *Store) RemoveCourse(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[code]; !ok {
		return &catalog.UnknownCourseError{Codes: []string{code}}
	}
	delete(s.courses, code)
	delete(s.prereqs, code)

	var cascaded []string
	for dependent, list := range s.prereqs {
		kept := list[:0:0]
		for _, p := range list {
			if p != code {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(list) {
			continue
		}
		cascaded = append(cascaded, dependent)
		if len(kept) == 0 {
			delete(s.prereqs, dependent)
		} else {
			s.prereqs[dependent] = kept
		}
	}
	for key := range s.placements {
		if key.course == code {
			delete(s.placements, key)
		}
	}

	sort.Strings(cascaded)
	ctxlog.FromContext(ctx).Debug("Course removed.", "code", code, "cascaded_to", cascaded)
	return nil
}

// Course returns the record stored under code.
func (s *Store) Course(ctx context.Context, code string) (catalog.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[code]
	if ok {
		c.Outcomes = append([]string(nil), c.Outcomes...)
	}
	return c, ok
}

// Courses returns every course ordered by term, then code.
func (s *Store) Courses(ctx context.Context) []catalog.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Course, 0, len(s.courses))
	for _, c := range s.courses {
		c.Outcomes = append([]string(nil), c.Outcomes...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Term != out[j].Term {
			return out[i].Term < out[j].Term
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// AllCourseCodes returns every known code, sorted.
func (s *Store) AllCourseCodes(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.courses))
	for code := range s.courses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// PrerequisitesOf returns the declared prerequisites of code.
func (s *Store) PrerequisitesOf(ctx context.Context, code string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.prereqs[code]
	if !ok {
		return []string{}
	}
	return append([]string{}, list...)
}

// Prerequisites returns a copy of the sparse prerequisite mapping.
func (s *Store) Prerequisites(ctx context.Context) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.prereqs))
	for code, list := range s.prereqs {
		out[code] = append([]string{}, list...)
	}
	return out
}

// Place records a course in an elective track.
func (s *Store) Place(ctx context.Context, p catalog.Placement) error {
	if p.Track == "" {
		return fmt.Errorf("%w: track name must not be empty", catalog.ErrInvalidCourse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[p.Course]
	if !ok {
		return &catalog.UnknownCourseError{Codes: []string{p.Course}}
	}
	term := p.Term
	if term == 0 {
		term = c.Term
	}
	s.placements[placementKey{course: p.Course, track: p.Track}] = term
	ctxlog.FromContext(ctx).Debug("Course placed in track.", "code", p.Course, "track", p.Track, "term", term)
	return nil
}

// RemoveTrack deletes every placement of the named track.
func (s *Store) RemoveTrack(ctx context.Context, track string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.placements {
		if key.track == track {
			delete(s.placements, key)
			removed++
		}
	}
	ctxlog.FromContext(ctx).Debug("Track removed.", "track", track, "placements", removed)
	return nil
}

// Placements returns the elective-track relation.
func (s *Store) Placements(ctx context.Context) []catalog.Placement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Placement, 0, len(s.placements))
	for key, term := range s.placements {
		out = append(out, catalog.Placement{Course: key.course, Track: key.track, Term: term})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Track != out[j].Track {
			return out[i].Track < out[j].Track
		}
		if out[i].Term != out[j].Term {
			return out[i].Term < out[j].Term
		}
		return out[i].Course < out[j].Course
	})
	return out
}
