package dag

import (
	"fmt"
	"sort"

	"github.com/vk/curriculum/internal/catalog"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given course code to the graph. If a node
// with the same code already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `fromID` is a prerequisite of `toID`. Edges keep the
// order in which they were added; adding the same edge twice does nothing.
// An error is returned if either node does not exist or if the edge would
// create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: %s", catalog.ErrSelfPrerequisite, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node: %w", &catalog.UnknownCourseError{Codes: []string{fromID}})
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node: %w", &catalog.UnknownCourseError{Codes: []string{toID}})
	}

	if _, exists := fromNode.dependents[toID]; exists {
		return nil
	}
	toNode.deps = append(toNode.deps, fromNode)
	fromNode.dependents[toID] = toNode

	return nil
}

// Nodes returns every course code in the graph, sorted.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.sortedIDs()
}

// Edges returns every prerequisite edge, ordered by dependent code and then
// by declared prerequisite order.
func (g *Graph) Edges() []catalog.Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []catalog.Edge
	for _, id := range g.sortedIDs() {
		for _, dep := range g.nodes[id].deps {
			edges = append(edges, catalog.Edge{From: dep.id, To: id})
		}
	}
	return edges
}

// Dependencies returns the prerequisites of the given course in declared order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, &catalog.UnknownCourseError{Codes: []string{id}}
	}
	return depIDs(n), nil
}

// Dependents returns the courses that directly require the given course, sorted.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, &catalog.UnknownCourseError{Codes: []string{id}}
	}

	dependents := make([]string, 0, len(n.dependents))
	for depID := range n.dependents {
		dependents = append(dependents, depID)
	}
	sort.Strings(dependents)
	return dependents, nil
}

// DetectCycle returns the first cycle found, in edge direction, or nil if the
// graph is acyclic. Nodes and their dependents are visited in code order so
// the reported cycle is stable across calls.
func (g *Graph) DetectCycle() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three colours:
	// done: fully explored, not part of any cycle reachable from here.
	// active: on the current recursion stack.
	// unvisited: everything else.
	const (
		unvisited = iota
		active
		done
	)
	colour := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(n *node) []string
	visit = func(n *node) []string {
		colour[n.id] = active
		stack = append(stack, n.id)

		for _, id := range sortedDependents(n) {
			switch colour[id] {
			case active:
				// Back-edge: the cycle is the stack from id to the top.
				for i, s := range stack {
					if s == id {
						return append([]string{}, stack[i:]...)
					}
				}
			case unvisited:
				if cycle := visit(n.dependents[id]); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		colour[n.id] = done
		return nil
	}

	for _, id := range g.sortedIDs() {
		if colour[id] == unvisited {
			if cycle := visit(g.nodes[id]); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// DetectCycles checks the graph for cycles and returns a *CycleError
// describing the first one found.
func (g *Graph) DetectCycles() error {
	if cycle := g.DetectCycle(); cycle != nil {
		return &CycleError{Cycle: cycle}
	}
	return nil
}

// sortedIDs must be called with the mutex held.
func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func depIDs(n *node) []string {
	ids := make([]string, 0, len(n.deps))
	for _, dep := range n.deps {
		ids = append(ids, dep.id)
	}
	return ids
}

func sortedDependents(n *node) []string {
	ids := make([]string, 0, len(n.dependents))
	for id := range n.dependents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
