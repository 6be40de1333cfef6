package syncgraph

import (
	"fmt"

	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Binding is one side of a sync edge: a shape on the renderer of a node.
type Binding struct {
	Renderer scene.NodeID
	Shape    string
}

// Prop is the weight property of the binding.
func (b Binding) Prop() model.TargetProp {
	return model.ShapeProp(b.Renderer, b.Shape)
}

func (b Binding) String() string {
	return fmt.Sprintf("%s.%s", b.Renderer, b.Shape)
}

// Edge is a sync edge and the component that declared it.
type Edge struct {
	From, To Binding
	Source   *scene.Component
}

type vertex struct {
	binding Binding
	out     []*Edge
}

// Graph is the sync graph. Edges keep declaration order so that traversal,
// and therefore the order of propagated rules, is deterministic.
type Graph struct {
	vertices map[Binding]*vertex
	edges    int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{vertices: make(map[Binding]*vertex)}
}

// AddNode adds a binding. Adding an existing binding does nothing.
func (g *Graph) AddNode(b Binding) {
	if _, ok := g.vertices[b]; ok {
		return
	}
	g.vertices[b] = &vertex{binding: b}
}

// AddEdge adds a directed edge, creating both bindings as needed. A binding
// synced onto itself is rejected.
func (g *Graph) AddEdge(e *Edge) error {
	if e.From == e.To {
		return fmt.Errorf("self-referential sync binding not allowed: %s -> %s", e.From, e.To)
	}
	g.AddNode(e.From)
	g.AddNode(e.To)
	v := g.vertices[e.From]
	for _, existing := range v.out {
		if existing.To == e.To {
			return nil
		}
	}
	v.out = append(v.out, e)
	g.edges++
	return nil
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	return g.edges
}

// Dependents returns the bindings directly synced from b.
func (g *Graph) Dependents(b Binding) []Binding {
	v, ok := g.vertices[b]
	if !ok {
		return nil
	}
	out := make([]Binding, len(v.out))
	for i, e := range v.out {
		out[i] = e.To
	}
	return out
}

// Reachable returns, for every binding reachable from b other than b itself,
// the edge it was first reached through, in depth-first order. Cycles are
// tolerated through the visited set.
func (g *Graph) Reachable(b Binding) []*Edge {
	start, ok := g.vertices[b]
	if !ok {
		return nil
	}
	visited := map[Binding]bool{b: true}
	var out []*Edge

	var visit func(v *vertex)
	visit = func(v *vertex) {
		for _, e := range v.out {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			out = append(out, e)
			visit(g.vertices[e.To])
		}
	}
	visit(start)
	return out
}

// Build collects the edges declared by enabled sync components.
func Build(w scene.Walker) (*Graph, error) {
	g := New()
	for _, n := range w.Nodes() {
		for _, comp := range n.Components {
			sync, ok := comp.Payload.(*scene.BlendshapeSync)
			if !ok || !comp.Enabled {
				continue
			}
			for _, binding := range sync.Bindings {
				e := &Edge{
					From:   Binding{Renderer: binding.Source.ID, Shape: binding.Shape},
					To:     Binding{Renderer: n.ID, Shape: binding.Local},
					Source: comp,
				}
				if err := g.AddEdge(e); err != nil {
					return nil, fmt.Errorf("component %s: %w", comp.ID, err)
				}
			}
		}
	}
	return g, nil
}
