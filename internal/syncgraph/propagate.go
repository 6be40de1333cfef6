package syncgraph

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

type cloneKey struct {
	rule *model.Rule
	dest model.TargetProp
}

// Propagator clones rules along the graph. It belongs to one compilation run
// and remembers what it has already propagated, so running it again after
// folding only handles rules it has not seen.
type Propagator struct {
	graph  *Graph
	scene  scene.Walker
	meshes scene.MeshStore

	done   map[cloneKey]struct{}
	clones map[*model.Rule]struct{}
	warned map[Binding]struct{}
}

// NewPropagator returns a propagator over g.
func NewPropagator(g *Graph, w scene.Walker, meshes scene.MeshStore) *Propagator {
	return &Propagator{
		graph:  g,
		scene:  w,
		meshes: meshes,
		done:   make(map[cloneKey]struct{}),
		clones: make(map[*model.Rule]struct{}),
		warned: make(map[Binding]struct{}),
	}
}

// Propagate clones every authored non-delete rule on a source binding onto
// the bindings reachable from it. It returns the number of rules added to
// destination buckets; merged clones do not count.
func (p *Propagator) Propagate(ctx context.Context, buckets *model.Buckets) (int, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	if p.graph.Len() == 0 {
		return 0, nil
	}

	var (
		diags    hcl.Diagnostics
		appended int
		merged   int
	)
	for _, b := range buckets.All() {
		shape, ok := b.Target.Shape()
		if !ok {
			continue
		}
		reach := p.graph.Reachable(Binding{Renderer: b.Target.Object, Shape: shape})
		if len(reach) == 0 {
			continue
		}

		for _, r := range b.Rules {
			if r.Delete {
				continue
			}
			if _, isClone := p.clones[r]; isClone {
				continue
			}
			for _, e := range reach {
				dest := e.To.Prop()
				key := cloneKey{rule: r, dest: dest}
				if _, ok := p.done[key]; ok {
					continue
				}
				p.done[key] = struct{}{}

				baseline, ok, d := p.baseline(e)
				if d != nil {
					diags = append(diags, d)
				}
				if !ok {
					continue
				}

				clone := r.Clone()
				clone.Target = dest
				p.clones[clone] = struct{}{}
				if buckets.Ensure(dest, baseline).Add(clone) {
					appended++
				} else {
					merged++
				}
			}
		}
	}

	logger.Debug("Blendshape sync propagation finished.", "edges", p.graph.Len(), "rules", appended, "merged", merged)
	return appended, diags
}

// baseline returns the destination's current weight as bucket baseline. When
// the destination shape is not on its mesh it reports false and, the first
// time, a warning.
func (p *Propagator) baseline(e *Edge) (func() model.Value, bool, *hcl.Diagnostic) {
	n, ok := p.scene.Lookup(e.To.Renderer)
	if !ok || n.Renderer == nil {
		return nil, false, p.warnOnce(e, fmt.Sprintf("%s has no renderer; binding ignored", e.To.Renderer))
	}
	mesh, ok := p.meshes.Mesh(n.Renderer.Mesh)
	if !ok || mesh.ShapeIndex(e.To.Shape) < 0 {
		return nil, false, p.warnOnce(e, fmt.Sprintf("shape %q is not present on mesh %q of %s; binding ignored", e.To.Shape, n.Renderer.Mesh, n))
	}
	r := n.Renderer
	return func() model.Value { return model.Scalar(r.Weight(e.To.Shape)) }, true, nil
}

func (p *Propagator) warnOnce(e *Edge, detail string) *hcl.Diagnostic {
	if _, ok := p.warned[e.To]; ok {
		return nil
	}
	p.warned[e.To] = struct{}{}
	return model.Warn(e.Source, "Unknown sync destination", detail)
}
