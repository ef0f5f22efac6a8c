package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
)

// Populate loads the catalog part of a document model into s: courses first,
// then track placements, then prerequisites. Prerequisite references to
// courses the model does not define are reported as a *DanglingError and no
// prerequisite is applied.
func Populate(ctx context.Context, s Store, m *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Populating catalog from model.", "courses", len(m.Courses), "prerequisites", len(m.Prerequisites))

	for _, c := range m.Courses {
		course, err := fromModelCourse(c)
		if err != nil {
			return err
		}
		if err := s.UpsertCourse(ctx, course); err != nil {
			return err
		}
	}

	for _, p := range m.Placements {
		err := s.Place(ctx, Placement{Course: p.Course, Track: p.Track, Term: p.Term})
		if err != nil {
			return fmt.Errorf("placing %s in track %q: %w", p.Course, p.Track, err)
		}
	}

	known := make(map[string]struct{})
	for _, code := range s.AllCourseCodes(ctx) {
		known[code] = struct{}{}
	}

	codes := sortedKeys(m.Prerequisites)
	var dangling []Edge
	for _, code := range codes {
		_, ok := known[code]
		for _, p := range m.Prerequisites[code] {
			if _, pok := known[p]; !ok || !pok {
				dangling = append(dangling, Edge{From: p, To: code})
			}
		}
	}
	if len(dangling) > 0 {
		return &DanglingError{Edges: dangling}
	}

	for _, code := range codes {
		if err := s.SetPrerequisites(ctx, code, m.Prerequisites[code]); err != nil {
			return fmt.Errorf("setting prerequisites of %s: %w", code, err)
		}
	}

	logger.Debug("Catalog populated.", "courses", len(known))
	return nil
}

// Snapshot projects the catalog held by s back into a document model. The
// plain records that the store does not own (profiles, outcomes, exchanges)
// are carried over from base, which may be nil.
func Snapshot(ctx context.Context, s Store, base *config.Model) *config.Model {
	m := config.NewModel()
	if base != nil {
		m.Profiles = base.Profiles
		m.Outcomes = base.Outcomes
		m.Exchanges = base.Exchanges
	}
	for _, c := range s.Courses(ctx) {
		m.Courses = append(m.Courses, &config.Course{
			Code:     c.Code,
			Name:     c.Name,
			Credits:  c.Credits,
			Term:     c.Term,
			Delivery: string(c.Delivery),
			Outcomes: append([]string(nil), c.Outcomes...),
		})
	}
	m.Prerequisites = s.Prerequisites(ctx)
	for _, p := range s.Placements(ctx) {
		m.Placements = append(m.Placements, &config.Placement{Course: p.Course, Track: p.Track, Term: p.Term})
	}
	return m
}

// Table returns the prerequisite listing: one row per course that declares
// prerequisites, ordered by course code.
func Table(ctx context.Context, s Store) []PrerequisiteRow {
	prereqs := s.Prerequisites(ctx)
	rows := make([]PrerequisiteRow, 0, len(prereqs))
	for _, code := range sortedKeys(prereqs) {
		rows = append(rows, PrerequisiteRow{
			Course:        code,
			Prerequisites: prereqs[code],
			Count:         len(prereqs[code]),
		})
	}
	return rows
}

// ByTrack projects the placement relation into the nested shape used by
// track views: track name to its courses, ordered by term then code.
func ByTrack(placements []Placement) map[string][]Placement {
	out := make(map[string][]Placement)
	for _, p := range placements {
		out[p.Track] = append(out[p.Track], p)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Term != list[j].Term {
				return list[i].Term < list[j].Term
			}
			return list[i].Course < list[j].Course
		})
	}
	return out
}

// SplitCodes parses a comma-separated list of course codes, dropping blanks.
func SplitCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func fromModelCourse(c *config.Course) (Course, error) {
	delivery, err := ParseDeliveryType(c.Delivery)
	if err != nil {
		return Course{}, fmt.Errorf("%w: course %s: %v", ErrInvalidCourse, c.Code, err)
	}
	return Course{
		Code:     strings.TrimSpace(c.Code),
		Name:     c.Name,
		Credits:  c.Credits,
		Term:     c.Term,
		Delivery: delivery,
		Outcomes: append([]string(nil), c.Outcomes...),
	}, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
