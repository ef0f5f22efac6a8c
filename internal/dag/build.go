package dag

import (
	"context"
	"errors"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/ctxlog"
)

// Build constructs a new graph from the current contents of s: one node per
// known course, including courses without prerequisites, and one edge per
// declared prerequisite. A prerequisite that points at a course the store does
// not know is reported as a *catalog.DanglingError listing every such edge.
func Build(ctx context.Context, s catalog.Store) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	g := New()
	codes := s.AllCourseCodes(ctx)
	for _, code := range codes {
		g.AddNode(code)
	}

	var dangling []catalog.Edge
	edges := 0
	for _, code := range codes {
		for _, p := range s.PrerequisitesOf(ctx, code) {
			if err := g.AddEdge(p, code); err != nil {
				if errors.Is(err, catalog.ErrUnknownCourse) {
					dangling = append(dangling, catalog.Edge{From: p, To: code})
					continue
				}
				return nil, err
			}
			edges++
		}
	}
	if len(dangling) > 0 {
		return nil, &catalog.DanglingError{Edges: dangling}
	}

	logger.Debug("Prerequisite graph built.", "nodes", len(codes), "edges", edges)
	return g, nil
}
