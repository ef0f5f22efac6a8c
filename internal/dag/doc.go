// Package dag is the prerequisite graph engine. It treats the catalog's
// prerequisite mapping as a directed graph, with an edge from a prerequisite
// to the course that depends on it, and answers structural and eligibility
// questions about it.
//
// A Graph is derived data. Build creates a fresh one from a catalog.Store on
// every call and nothing here caches across catalog mutations. Every query is
// a pure computation over the graph passed in; failures come back as typed
// errors (unknown course, cyclic graph) rather than partial results.
//
// Callers that need an ordering must check for cycles first: TopologicalOrder
// refuses to answer for a cyclic graph and reports the cycle it found.
package dag
