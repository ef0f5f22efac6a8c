package dag

import (
	"sort"

	"github.com/vk/curriculum/internal/catalog"
)

// Verdict is the answer to a registration check.
type Verdict struct {
	Eligible bool     `json:"eligible"`
	Missing  []string `json:"missing"`
}

// IsEligible reports whether every direct prerequisite of target is in
// completed. Prerequisites of prerequisites are not consulted.
func (g *Graph) IsEligible(target string, completed Completed) (bool, error) {
	missing, err := g.MissingPrerequisites(target, completed)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// MissingPrerequisites returns the direct prerequisites of target that are
// not in completed, in declared order. The result is empty, never nil.
func (g *Graph) MissingPrerequisites(target string, completed Completed) ([]string, error) {
	deps, err := g.Dependencies(target)
	if err != nil {
		return nil, err
	}
	missing := []string{}
	for _, dep := range deps {
		if !completed.Has(dep) {
			missing = append(missing, dep)
		}
	}
	return missing, nil
}

// TransitivePrerequisites returns every course that must be completed,
// directly or through other prerequisites, before target. The result is
// sorted and never contains target itself.
func (g *Graph) TransitivePrerequisites(target string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[target]
	if !ok {
		return nil, &catalog.UnknownCourseError{Codes: []string{target}}
	}

	seen := map[string]struct{}{target: {}}
	closure := []string{}
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, dep := range n.deps {
			if _, ok := seen[dep.id]; ok {
				continue
			}
			seen[dep.id] = struct{}{}
			closure = append(closure, dep.id)
			queue = append(queue, dep)
		}
	}
	sort.Strings(closure)
	return closure, nil
}

// IsTransitivelyEligible reports whether every transitive prerequisite of
// target is in completed.
func (g *Graph) IsTransitivelyEligible(target string, completed Completed) (bool, error) {
	missing, err := g.MissingTransitive(target, completed)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// MissingTransitive returns the transitive prerequisites of target that are
// not in completed, sorted.
func (g *Graph) MissingTransitive(target string, completed Completed) ([]string, error) {
	closure, err := g.TransitivePrerequisites(target)
	if err != nil {
		return nil, err
	}
	missing := []string{}
	for _, code := range closure {
		if !completed.Has(code) {
			missing = append(missing, code)
		}
	}
	return missing, nil
}

// Check produces the verdict for target, using the direct check or the
// transitive one.
func (g *Graph) Check(target string, completed Completed, transitive bool) (Verdict, error) {
	var (
		missing []string
		err     error
	)
	if transitive {
		missing, err = g.MissingTransitive(target, completed)
	} else {
		missing, err = g.MissingPrerequisites(target, completed)
	}
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Eligible: len(missing) == 0, Missing: missing}, nil
}
