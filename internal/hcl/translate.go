// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// EvalContext returns the evaluation context catalog files are decoded with.
// It exposes the `delivery` object so files can write `delivery = delivery.lab`
// instead of repeating the tag text.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"delivery": cty.ObjectVal(map[string]cty.Value{
				"theory":       cty.StringVal(string(catalog.DeliveryTheory)),
				"lab":          cty.StringVal(string(catalog.DeliveryLab)),
				"theory_lab":   cty.StringVal(string(catalog.DeliveryTheoryLab)),
				"practitioner": cty.StringVal(string(catalog.DeliveryPractitioner)),
				"project":      cty.StringVal(string(catalog.DeliveryProject)),
			}),
		},
	}
}

// translateCourse converts a course block into the agnostic model. The
// delivery tag is normalised to its canonical spelling.
func translateCourse(s *schema.Course) (*config.Course, error) {
	code := strings.TrimSpace(s.Code)
	if code == "" {
		return nil, fmt.Errorf("course block must have a non-empty code")
	}
	delivery, err := catalog.ParseDeliveryType(s.Delivery)
	if err != nil {
		return nil, fmt.Errorf("course %q: %w", code, err)
	}
	return &config.Course{
		Code:     code,
		Name:     s.Name,
		Credits:  s.Credits,
		Term:     s.Term,
		Delivery: string(delivery),
		Outcomes: append([]string(nil), s.Outcomes...),
	}, nil
}

func translateProfile(s *schema.Profile) *config.Profile {
	return &config.Profile{Code: s.Code, Name: s.Name, Description: s.Description}
}

func translateOutcome(s *schema.Outcome) *config.Outcome {
	return &config.Outcome{Code: s.Code, Domain: s.Domain, Description: s.Description}
}

// translateExchange converts an exchange block; a missing cap defaults to
// the activity's own credits.
func translateExchange(s *schema.Exchange) *config.Exchange {
	maxCredits := s.MaxCredits
	if maxCredits == 0 {
		maxCredits = s.Credits
	}
	return &config.Exchange{
		Activity:    s.Activity,
		Credits:     s.Credits,
		MaxCredits:  maxCredits,
		Terms:       s.Terms,
		Description: s.Description,
		Kind:        s.Kind,
	}
}
