package dag

import "sort"

// TopologicalOrder returns every course such that each prerequisite comes
// before the courses that depend on it. Among courses that are ready at the
// same time the lexically smallest code goes first, so the order is stable.
// A cyclic graph yields a *CycleError.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indegree := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, dep := range sortedDependents(g.nodes[id]) {
			indegree[dep]--
			if indegree[dep] == 0 {
				i := sort.SearchStrings(ready, dep)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = dep
			}
		}
	}
	return order, nil
}

// Levels groups the topological order into waves: level 0 holds courses
// without prerequisites, level n holds courses whose deepest prerequisite
// chain has length n. It is the basis for term-sequencing suggestions.
func (g *Graph) Levels() ([][]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return [][]string{}, nil
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, id := range order {
		d := 0
		for _, dep := range g.nodes[id].deps {
			if depth[dep.id]+1 > d {
				d = depth[dep.id] + 1
			}
		}
		depth[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, 0, maxDepth+1)
	for range maxDepth + 1 {
		levels = append(levels, []string{})
	}
	for _, id := range order {
		levels[depth[id]] = append(levels[depth[id]], id)
	}
	for _, level := range levels {
		sort.Strings(level)
	}
	return levels, nil
}
