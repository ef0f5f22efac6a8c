package catalog

import (
	"context"

	"github.com/vk/curriculum/internal/config"
)

// Summary holds the headline figures of a catalog.
type Summary struct {
	Courses    int `json:"courses"`
	Compulsory int `json:"compulsory"`
	Electives  int `json:"electives"`
	Profiles   int `json:"profiles"`
	Outcomes   int `json:"outcomes"`
	Tracks     int `json:"tracks"`
	Exchanges  int `json:"exchanges"`

	// CompulsoryCredits and CreditsByTerm cover compulsory courses only;
	// elective load depends on the track a student picks.
	CompulsoryCredits int         `json:"compulsory_credits"`
	CreditsByTerm     map[int]int `json:"credits_by_term"`

	// CreditsByDelivery covers every course that declares a delivery type.
	CreditsByDelivery map[string]int `json:"credits_by_delivery"`
	OutcomeDomains    map[string]int `json:"outcome_domains"`
}

// Summarize computes the summary of s. base supplies the records the store
// does not own and may be nil.
func Summarize(ctx context.Context, s Store, base *config.Model) Summary {
	sum := Summary{
		CreditsByTerm:     map[int]int{},
		CreditsByDelivery: map[string]int{},
		OutcomeDomains:    map[string]int{},
	}

	placed := make(map[string]struct{})
	tracks := make(map[string]struct{})
	for _, p := range s.Placements(ctx) {
		placed[p.Course] = struct{}{}
		tracks[p.Track] = struct{}{}
	}
	sum.Tracks = len(tracks)

	for _, c := range s.Courses(ctx) {
		sum.Courses++
		if c.Delivery != "" {
			sum.CreditsByDelivery[string(c.Delivery)] += c.Credits
		}
		if _, ok := placed[c.Code]; ok {
			sum.Electives++
			continue
		}
		sum.Compulsory++
		sum.CompulsoryCredits += c.Credits
		sum.CreditsByTerm[c.Term] += c.Credits
	}

	if base != nil {
		sum.Profiles = len(base.Profiles)
		sum.Outcomes = len(base.Outcomes)
		sum.Exchanges = len(base.Exchanges)
		for _, o := range base.Outcomes {
			sum.OutcomeDomains[o.Domain]++
		}
	}
	return sum
}
