package dag

import "github.com/vk/curriculum/internal/catalog"

// NodeView is a positioned node for the graph renderer.
type NodeView struct {
	Code string  `json:"code"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// View is everything a renderer needs to draw the prerequisite graph.
type View struct {
	Nodes []NodeView     `json:"nodes"`
	Edges []catalog.Edge `json:"edges"`
	// Cycle is the first cycle found, empty when the graph is acyclic.
	Cycle []string `json:"cycle"`
}

// Render lays the graph out and packages nodes and edges for drawing.
func (g *Graph) Render() View {
	positions := g.Layout()
	v := View{
		Nodes: make([]NodeView, 0, len(positions)),
		Edges: g.Edges(),
		Cycle: g.DetectCycle(),
	}
	for _, code := range g.Nodes() {
		p := positions[code]
		v.Nodes = append(v.Nodes, NodeView{Code: code, X: p.X, Y: p.Y})
	}
	if v.Edges == nil {
		v.Edges = []catalog.Edge{}
	}
	if v.Cycle == nil {
		v.Cycle = []string{}
	}
	return v
}
