package dag

import (
	"math"
	"math/rand"
)

const (
	// LayoutSeed seeds the initial node positions so that the same graph
	// always renders the same way.
	LayoutSeed = 42
	// layoutIterations is the number of spring-relaxation steps.
	layoutIterations = 50
	// minDistance keeps coincident nodes from producing infinite forces.
	minDistance = 0.01
)

// Position is a node's place in the rendered graph.
type Position struct {
	X float64
	Y float64
}

// Layout computes a position for every node with a Fruchterman-Reingold
// force-directed spring model. Edges attract their endpoints regardless of
// direction and all node pairs repel. Initial positions come from a random
// source seeded with LayoutSeed and nodes are processed in code order, so
// repeated calls on the same graph return identical coordinates. The result
// is centred on the origin and scaled so the largest coordinate is 1.
func (g *Graph) Layout() map[string]Position {
	ids := g.Nodes()
	edges := g.Edges()

	n := len(ids)
	out := make(map[string]Position, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[ids[0]] = Position{}
		return out
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	rng := rand.New(rand.NewSource(LayoutSeed))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range ids {
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}

	k := math.Sqrt(1.0 / float64(n))
	temperature := 0.1
	cooling := temperature / float64(layoutIterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)
	for range layoutIterations {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx, ddy := xs[i]-xs[j], ys[i]-ys[j]
				dist := math.Max(math.Hypot(ddx, ddy), minDistance)
				force := k * k / dist
				fx, fy := ddx/dist*force, ddy/dist*force
				dx[i] += fx
				dy[i] += fy
				dx[j] -= fx
				dy[j] -= fy
			}
		}

		for _, e := range edges {
			u, v := index[e.From], index[e.To]
			ddx, ddy := xs[u]-xs[v], ys[u]-ys[v]
			dist := math.Max(math.Hypot(ddx, ddy), minDistance)
			force := dist * dist / k
			fx, fy := ddx/dist*force, ddy/dist*force
			dx[u] -= fx
			dy[u] -= fy
			dx[v] += fx
			dy[v] += fy
		}

		for i := range ids {
			length := math.Max(math.Hypot(dx[i], dy[i]), minDistance)
			xs[i] += dx[i] / length * temperature
			ys[i] += dy[i] / length * temperature
		}
		temperature -= cooling
	}

	rescale(xs, ys)
	for i, id := range ids {
		out[id] = Position{X: xs[i], Y: ys[i]}
	}
	return out
}

// rescale centres the coordinates on the origin and scales them into [-1, 1].
func rescale(xs, ys []float64) {
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(len(xs))
	my /= float64(len(ys))

	limit := 0.0
	for i := range xs {
		xs[i] -= mx
		ys[i] -= my
		limit = math.Max(limit, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
	}
	if limit == 0 {
		return
	}
	for i := range xs {
		xs[i] /= limit
		ys[i] /= limit
	}
}
