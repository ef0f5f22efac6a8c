// Package registration simulates a student's course registration for one
// term: which courses are on offer, whether each is eligible given the
// student's completed courses, and whether the selected load is within the
// credit limits.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/dag"
)

// ErrInvalidRequest is returned for a request that cannot be simulated.
var ErrInvalidRequest = errors.New("invalid registration request")

// Status summarises the selected credit load.
type Status string

const (
	StatusUnder Status = "under"
	StatusOver  Status = "over"
	StatusOK    Status = "ok"
)

// Limits bounds a registration.
type Limits struct {
	MinCredits       int `json:"min_credits" yaml:"min_credits"`
	MaxCredits       int `json:"max_credits" yaml:"max_credits"`
	ElectiveFromTerm int `json:"elective_from_term" yaml:"elective_from_term"`
	MaxTerm          int `json:"max_term" yaml:"max_term"`
}

// DefaultLimits returns the limits of a standard eight-term programme.
func DefaultLimits() Limits {
	return Limits{
		MinCredits:       18,
		MaxCredits:       24,
		ElectiveFromTerm: 5,
		MaxTerm:          8,
	}
}

// Request describes one simulated registration.
type Request struct {
	Term       int      `json:"term"`
	Track      string   `json:"track"`
	Completed  []string `json:"completed"`
	Selected   []string `json:"selected"`
	Exchange   string   `json:"exchange,omitempty"`
	Transitive bool     `json:"transitive"`
}

// Offer is a course available in the simulated term.
type Offer struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Credits  int      `json:"credits"`
	Track    string   `json:"track,omitempty"`
	Eligible bool     `json:"eligible"`
	Missing  []string `json:"missing"`
}

// Selection is the verdict on one selected course.
type Selection struct {
	Code     string   `json:"code"`
	Credits  int      `json:"credits"`
	Eligible bool     `json:"eligible"`
	Missing  []string `json:"missing"`
	Problem  string   `json:"problem,omitempty"`
}

// Result is the outcome of a simulation.
type Result struct {
	Term         int         `json:"term"`
	Track        string      `json:"track,omitempty"`
	Offered      []Offer     `json:"offered"`
	Selected     []Selection `json:"selected"`
	Exchange     string      `json:"exchange,omitempty"`
	TotalCredits int         `json:"total_credits"`
	Status       Status      `json:"status"`
	Valid        bool        `json:"valid"`
	Limits       Limits      `json:"limits"`
}

// Simulator runs registrations against a catalog store.
type Simulator struct {
	store     catalog.Store
	exchanges []*config.Exchange
	limits    Limits
}

// New creates a simulator. exchanges lists the activities a student may
// convert into credits.
func New(store catalog.Store, exchanges []*config.Exchange, limits Limits) *Simulator {
	return &Simulator{store: store, exchanges: exchanges, limits: limits}
}

// Simulate evaluates req. The prerequisite graph is built from the current
// state of the store on every call.
func (s *Simulator) Simulate(ctx context.Context, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if req.Term < 1 || (s.limits.MaxTerm > 0 && req.Term > s.limits.MaxTerm) {
		return nil, fmt.Errorf("%w: term %d out of range", ErrInvalidRequest, req.Term)
	}

	g, err := dag.Build(ctx, s.store)
	if err != nil {
		return nil, err
	}
	completed := dag.NewCompleted(req.Completed...)

	electives := req.Term >= s.limits.ElectiveFromTerm
	offered, err := s.offers(ctx, g, req, completed, electives)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Term:     req.Term,
		Track:    req.Track,
		Offered:  offered,
		Selected: []Selection{},
		Limits:   s.limits,
	}

	onOffer := make(map[string]struct{}, len(offered))
	for _, o := range offered {
		onOffer[o.Code] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, code := range req.Selected {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		sel := Selection{Code: code, Missing: []string{}}
		course, ok := s.store.Course(ctx, code)
		if !ok {
			sel.Problem = (&catalog.UnknownCourseError{Codes: []string{code}}).Error()
			res.Selected = append(res.Selected, sel)
			continue
		}
		if _, ok := onOffer[code]; !ok {
			sel.Problem = fmt.Sprintf("not offered in term %d", req.Term)
			res.Selected = append(res.Selected, sel)
			continue
		}
		sel.Credits = course.Credits
		verdict, err := g.Check(code, completed, req.Transitive)
		if err != nil {
			return nil, err
		}
		sel.Eligible = verdict.Eligible
		sel.Missing = verdict.Missing
		if !sel.Eligible {
			sel.Problem = "missing prerequisites"
		}
		res.TotalCredits += course.Credits
		res.Selected = append(res.Selected, sel)
	}

	if req.Exchange != "" {
		ex := s.exchange(req.Exchange)
		if ex == nil {
			return nil, fmt.Errorf("%w: unknown exchange activity %q", ErrInvalidRequest, req.Exchange)
		}
		if !electives {
			return nil, fmt.Errorf("%w: exchange activities start in term %d", ErrInvalidRequest, s.limits.ElectiveFromTerm)
		}
		res.Exchange = ex.Activity
		res.TotalCredits += ex.Credits
	}

	switch {
	case res.TotalCredits < s.limits.MinCredits:
		res.Status = StatusUnder
	case res.TotalCredits > s.limits.MaxCredits:
		res.Status = StatusOver
	default:
		res.Status = StatusOK
	}

	res.Valid = res.Status == StatusOK
	for _, sel := range res.Selected {
		if sel.Problem != "" {
			res.Valid = false
		}
	}

	logger.Debug("Registration simulated.",
		"term", req.Term,
		"track", req.Track,
		"offered", len(res.Offered),
		"total_credits", res.TotalCredits,
		"status", res.Status,
	)
	return res, nil
}

// offers lists the compulsory courses of the term, followed by the chosen
// track's courses once electives are open.
func (s *Simulator) offers(ctx context.Context, g *dag.Graph, req Request, completed dag.Completed, electives bool) ([]Offer, error) {
	placements := s.store.Placements(ctx)
	placed := make(map[string]struct{}, len(placements))
	for _, p := range placements {
		placed[p.Course] = struct{}{}
	}

	offered := []Offer{}
	add := func(c catalog.Course, track string) error {
		verdict, err := g.Check(c.Code, completed, req.Transitive)
		if err != nil {
			return err
		}
		offered = append(offered, Offer{
			Code:     c.Code,
			Name:     c.Name,
			Credits:  c.Credits,
			Track:    track,
			Eligible: verdict.Eligible,
			Missing:  verdict.Missing,
		})
		return nil
	}

	for _, c := range s.store.Courses(ctx) {
		if _, ok := placed[c.Code]; ok || c.Term != req.Term {
			continue
		}
		if err := add(c, ""); err != nil {
			return nil, err
		}
	}

	if !electives || req.Track == "" {
		return offered, nil
	}
	tracks := catalog.ByTrack(placements)
	list, ok := tracks[req.Track]
	if !ok {
		return nil, fmt.Errorf("%w: unknown track %q", ErrInvalidRequest, req.Track)
	}
	for _, p := range list {
		if p.Term != req.Term {
			continue
		}
		c, ok := s.store.Course(ctx, p.Course)
		if !ok {
			continue
		}
		if err := add(c, p.Track); err != nil {
			return nil, err
		}
	}
	return offered, nil
}

func (s *Simulator) exchange(activity string) *config.Exchange {
	for _, e := range s.exchanges {
		if e.Activity == activity {
			return e
		}
	}
	return nil
}
