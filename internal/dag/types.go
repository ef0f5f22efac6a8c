package dag

import "sync"

// Graph is a collection of courses and their prerequisite relations.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by course code.
	nodes map[string]*node
}

// node represents a single course in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using course codes),
// not by direct struct manipulation.
type node struct {
	// id is the course code.
	id string
	// deps holds the prerequisites of this course in declared order.
	deps []*node
	// dependents holds the courses that list this course as a prerequisite.
	dependents map[string]*node
}

// Completed is the set of courses a student has passed.
type Completed map[string]struct{}

// NewCompleted builds a completed set from a list of codes.
func NewCompleted(codes ...string) Completed {
	c := make(Completed, len(codes))
	for _, code := range codes {
		c[code] = struct{}{}
	}
	return c
}

// Has reports whether code is in the set.
func (c Completed) Has(code string) bool {
	_, ok := c[code]
	return ok
}
