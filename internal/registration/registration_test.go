package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/inmemorycatalog"
)

func newSimulator(t *testing.T) *Simulator {
	t.Helper()
	m := config.NewModel()
	m.Courses = []*config.Course{
		{Code: "A", Name: "Alpha", Credits: 3, Term: 1},
		{Code: "B", Name: "Beta", Credits: 3, Term: 1},
		{Code: "C", Name: "Gamma", Credits: 3, Term: 2},
		{Code: "D", Name: "Delta", Credits: 4, Term: 2},
		{Code: "E", Name: "Epsilon", Credits: 3, Term: 5},
		{Code: "X", Name: "Data Mining", Credits: 3, Term: 5},
		{Code: "Y", Name: "Cloud", Credits: 3, Term: 5},
	}
	m.Prerequisites = map[string][]string{
		"C": {"A"},
		"D": {"A", "B"},
		"X": {"C"},
	}
	m.Placements = []*config.Placement{
		{Course: "X", Track: "Data Science", Term: 5},
		{Course: "Y", Track: "Cloud Computing", Term: 5},
	}
	exchanges := []*config.Exchange{{Activity: "Magang", Credits: 20, MaxCredits: 20}}

	store := inmemorycatalog.New()
	require.NoError(t, catalog.Populate(context.Background(), store, m))
	return New(store, exchanges, DefaultLimits())
}

func offeredCodes(res *Result) []string {
	var codes []string
	for _, o := range res.Offered {
		codes = append(codes, o.Code)
	}
	return codes
}

func TestSimulate_OffersCompulsoryCoursesOfTerm(t *testing.T) {
	s := newSimulator(t)
	res, err := s.Simulate(context.Background(), Request{Term: 2, Track: "Data Science", Completed: []string{"A"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "D"}, offeredCodes(res))
	assert.True(t, res.Offered[0].Eligible)
	assert.False(t, res.Offered[1].Eligible)
	assert.Equal(t, []string{"B"}, res.Offered[1].Missing)
	assert.Equal(t, StatusUnder, res.Status)
	assert.Equal(t, 0, res.TotalCredits)
	assert.NotNil(t, res.Selected)
}

func TestSimulate_ElectivesOpenAtThreshold(t *testing.T) {
	s := newSimulator(t)
	res, err := s.Simulate(context.Background(), Request{Term: 5, Track: "Data Science", Completed: []string{"A", "C"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"E", "X"}, offeredCodes(res))
	assert.Equal(t, "Data Science", res.Offered[1].Track)
	assert.True(t, res.Offered[1].Eligible)
}

func TestSimulate_TransitiveCheck(t *testing.T) {
	s := newSimulator(t)
	ctx := context.Background()

	direct, err := s.Simulate(ctx, Request{Term: 5, Track: "Data Science", Completed: []string{"C"}})
	require.NoError(t, err)
	assert.True(t, direct.Offered[1].Eligible)

	transitive, err := s.Simulate(ctx, Request{Term: 5, Track: "Data Science", Completed: []string{"C"}, Transitive: true})
	require.NoError(t, err)
	assert.False(t, transitive.Offered[1].Eligible)
	assert.Equal(t, []string{"A"}, transitive.Offered[1].Missing)
}

func TestSimulate_CreditStatus(t *testing.T) {
	s := newSimulator(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		req      Request
		total    int
		status   Status
		valid    bool
		problems int
	}{
		{
			name:   "under the minimum",
			req:    Request{Term: 2, Completed: []string{"A", "B"}, Selected: []string{"C", "D"}},
			total:  7,
			status: StatusUnder,
		},
		{
			name:   "exchange brings the load into range",
			req:    Request{Term: 5, Completed: []string{"A", "B", "C", "D"}, Selected: []string{"E"}, Exchange: "Magang"},
			total:  23,
			status: StatusOK,
			valid:  true,
		},
		{
			name:   "over the maximum",
			req:    Request{Term: 5, Track: "Data Science", Completed: []string{"A", "C"}, Selected: []string{"E", "X"}, Exchange: "Magang"},
			total:  26,
			status: StatusOver,
		},
		{
			name:     "ineligible and unknown selections are reported",
			req:      Request{Term: 5, Track: "Data Science", Selected: []string{"E", "X", "ZZZ"}, Exchange: "Magang"},
			total:    26,
			status:   StatusOver,
			problems: 2,
		},
		{
			name:   "duplicate selections count once",
			req:    Request{Term: 5, Selected: []string{"E", "E"}, Exchange: "Magang"},
			total:  23,
			status: StatusOK,
			valid:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.Simulate(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.total, res.TotalCredits)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.valid, res.Valid)

			problems := 0
			for _, sel := range res.Selected {
				if sel.Problem != "" {
					problems++
				}
			}
			assert.Equal(t, tc.problems, problems)
		})
	}
}

func TestSimulate_SelectionOutsideOffer(t *testing.T) {
	s := newSimulator(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		req     Request
		code    string
		problem string
		total   int
	}{
		{
			name:    "compulsory course of a later term",
			req:     Request{Term: 1, Selected: []string{"A", "B", "E"}},
			code:    "E",
			problem: "not offered in term 1",
			total:   6,
		},
		{
			name:    "track course without choosing the track",
			req:     Request{Term: 5, Completed: []string{"A", "C"}, Selected: []string{"E", "X"}},
			code:    "X",
			problem: "not offered in term 5",
			total:   3,
		},
		{
			name:    "course of another track",
			req:     Request{Term: 5, Track: "Data Science", Selected: []string{"E", "Y"}},
			code:    "Y",
			problem: "not offered in term 5",
			total:   3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.Simulate(ctx, tc.req)
			require.NoError(t, err)
			assert.False(t, res.Valid)

			var found *Selection
			for i := range res.Selected {
				if res.Selected[i].Code == tc.code {
					found = &res.Selected[i]
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tc.problem, found.Problem)
			assert.Zero(t, found.Credits)
			assert.Equal(t, tc.total, res.TotalCredits, "courses outside the offer add no credits")
		})
	}
}

func TestSimulate_InvalidRequests(t *testing.T) {
	s := newSimulator(t)
	ctx := context.Background()

	for name, req := range map[string]Request{
		"term zero":              {Term: 0},
		"term past the last":     {Term: 9},
		"unknown track":          {Term: 5, Track: "Robotics"},
		"unknown exchange":       {Term: 5, Exchange: "Volunteering"},
		"exchange before term 5": {Term: 3, Exchange: "Magang"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Simulate(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
