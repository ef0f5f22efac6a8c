package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicGraph is returned by operations that are undefined on a graph
// containing a cycle.
var ErrCyclicGraph = errors.New("prerequisite graph contains a cycle")

// CycleError carries the cycle that was found, in edge direction: each code
// is a prerequisite of the next, and the last is a prerequisite of the first.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCyclicGraph.Error()
	}
	path := append(append([]string{}, e.Cycle...), e.Cycle[0])
	return fmt.Sprintf("%s: %s", ErrCyclicGraph, strings.Join(path, " -> "))
}

// Is reports whether target is ErrCyclicGraph.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicGraph
}
