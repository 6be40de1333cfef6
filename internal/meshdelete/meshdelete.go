// Package meshdelete physically removes blendshape channels that are deleted
// unconditionally and that nothing else reads.
package meshdelete

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/jinzhu/copier"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/specialistvlad/reactbake/internal/syncgraph"
	"golang.org/x/sync/singleflight"
)

// Animated reports whether a pre-existing animation drives a property.
type Animated interface {
	Animates(id scene.NodeID, property string) bool
}

// Removal records the channels removed from one renderer's mesh.
type Removal struct {
	Renderer scene.NodeID
	Source   scene.AssetRef
	Mesh     scene.AssetRef
	Shapes   []string
}

// DefaultWorkers is the number of renderers processed concurrently when New
// is given a non-positive count.
const DefaultWorkers = 4

// Executor clones meshes and removes channels. Clones are keyed by the pair
// (source mesh, removal set), not by the source mesh alone: renderers sharing
// a mesh and a removal set share one clone, while renderers sharing a mesh but
// deleting different channels each get their own. Concurrent workers never
// clone the same pair twice.
type Executor struct {
	meshes  scene.MeshStore
	walker  scene.Walker
	workers int

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]*scene.Mesh
}

// New returns an executor writing clones into meshes with the given number
// of workers.
func New(w scene.Walker, meshes scene.MeshStore, workers int) *Executor {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Executor{
		meshes:  meshes,
		walker:  w,
		workers: workers,
		memo:    make(map[string]*scene.Mesh),
	}
}

// candidate is one eligible shape and the rule that deletes it.
type candidate struct {
	shape string
	rule  *model.Rule
}

// Execute finds every eligible shape, removes it from a clone of its mesh,
// reassigns the renderer and purges the value and marker buckets.
//
// A shape is eligible when the last rule of its weight bucket is an
// unconditional delete, it does not feed a sync binding whose destination is
// still animated, and no existing clip drives its weight.
func (x *Executor) Execute(ctx context.Context, buckets *model.Buckets, graph *syncgraph.Graph, animated Animated) ([]Removal, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	var (
		order   []scene.NodeID
		byOwner = make(map[scene.NodeID][]candidate)
	)
	for _, b := range buckets.All() {
		shape, ok := b.Target.Shape()
		if !ok {
			continue
		}
		last := b.Last()
		if last == nil || !last.Delete || !last.Unconditional() {
			continue
		}
		if x.consumed(b.Target, shape, buckets, graph, animated) {
			logger.Debug("Keeping deleted shape that is still consumed.", "target", b.Target)
			continue
		}
		owner := b.Target.Object
		if _, seen := byOwner[owner]; !seen {
			order = append(order, owner)
		}
		byOwner[owner] = append(byOwner[owner], candidate{shape: shape, rule: last})
	}

	results := x.run(ctx, order, byOwner)

	// Buckets and renderer weights are updated sequentially, in discovery
	// order, once every worker is done.
	var (
		removals []Removal
		diags    hcl.Diagnostics
	)
	for i, owner := range order {
		res := results[i]
		diags = append(diags, res.diags...)
		removal := res.removal
		if removal == nil {
			continue
		}
		n, _ := x.walker.Lookup(owner)
		for _, shape := range removal.Shapes {
			buckets.Delete(model.ShapeProp(owner, shape))
			buckets.Delete(model.DeletedShapeProp(owner, shape))
			delete(n.Renderer.Shapes, shape)
		}
		removals = append(removals, *removal)
	}

	logger.Debug("Mesh deletion finished.", "renderers", len(removals), "warnings", len(diags))
	return removals, diags
}

// result is the outcome of one renderer.
type result struct {
	removal *Removal
	diags   hcl.Diagnostics
}

// job is one renderer handed to a worker; idx is its slot in the results.
type job struct {
	idx   int
	owner scene.NodeID
}

// run processes the renderers of order on the worker pool. Each worker
// writes only its own result slots.
func (x *Executor) run(ctx context.Context, order []scene.NodeID, byOwner map[scene.NodeID][]candidate) []result {
	results := make([]result, len(order))
	if len(order) == 0 {
		return results
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	workers := min(x.workers, len(order))
	for workerID := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			x.worker(ctx, jobs, results, byOwner, workerID)
		}()
	}
	for i, owner := range order {
		jobs <- job{idx: i, owner: owner}
	}
	close(jobs)
	wg.Wait()
	return results
}

// worker is the processing loop of a single concurrent worker.
func (x *Executor) worker(ctx context.Context, jobs <-chan job, results []result, byOwner map[scene.NodeID][]candidate, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range jobs {
		n, ok := x.walker.Lookup(j.owner)
		if !ok || n.Renderer == nil {
			continue
		}
		removal, diags := x.remove(ctx, n, byOwner[j.owner])
		results[j.idx] = result{removal: removal, diags: diags}
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (x *Executor) consumed(t model.TargetProp, shape string, buckets *model.Buckets, graph *syncgraph.Graph, animated Animated) bool {
	if animated != nil && animated.Animates(t.Object, t.Property) {
		return true
	}
	if graph == nil {
		return false
	}
	for _, dest := range graph.Dependents(syncgraph.Binding{Renderer: t.Object, Shape: shape}) {
		if buckets.Has(dest.Prop()) {
			return true
		}
	}
	return false
}

// remove resolves the channel indices on the renderer's current mesh, then
// obtains the memoized clone and points the renderer at it.
func (x *Executor) remove(ctx context.Context, n *scene.Node, cands []candidate) (*Removal, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	var diags hcl.Diagnostics

	src, ok := x.meshes.Mesh(n.Renderer.Mesh)
	if !ok {
		return nil, hcl.Diagnostics{model.WarnNode(n, "Unknown mesh",
			fmt.Sprintf("renderer on %s references mesh %q, which is not loaded", n, n.Renderer.Mesh))}
	}

	var (
		indices []int
		shapes  []string
	)
	for _, c := range cands {
		idx := src.ShapeIndex(c.shape)
		if idx < 0 {
			diags = append(diags, model.Warn(c.rule.Source, "Unknown blendshape",
				fmt.Sprintf("shape %q is no longer present on mesh %q of %s; it cannot be removed", c.shape, src.ID, n)))
			continue
		}
		indices = append(indices, idx)
		shapes = append(shapes, c.shape)
	}
	if len(indices) == 0 {
		return nil, diags
	}

	clone, err := x.clone(src, indices)
	if err != nil {
		return nil, append(diags, model.WarnNode(n, "Mesh clone failed", err.Error()))
	}

	logger.Debug("Removed blendshape channels.", "renderer", n.ID, "source", src.ID, "mesh", clone.ID, "shapes", shapes)
	n.Renderer.Mesh = clone.ID
	return &Removal{Renderer: n.ID, Source: src.ID, Mesh: clone.ID, Shapes: shapes}, diags
}

// clone returns the memoized clone of src without the given channels.
func (x *Executor) clone(src *scene.Mesh, indices []int) (*scene.Mesh, error) {
	indices = slices.Clone(indices)
	slices.Sort(indices)
	indices = slices.Compact(indices)

	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = src.BlendShapes[idx].Name
	}
	key := string(src.ID) + "-[" + strings.Join(names, ",") + "]"

	v, err, _ := x.group.Do(key, func() (any, error) {
		x.mu.Lock()
		cached, ok := x.memo[key]
		x.mu.Unlock()
		if ok {
			return cached, nil
		}

		var m scene.Mesh
		if err := copier.CopyWithOption(&m, src, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("copying mesh %q: %w", src.ID, err)
		}
		for _, idx := range slices.Backward(indices) {
			m.BlendShapes = slices.Delete(m.BlendShapes, idx, idx+1)
		}
		m.ID = scene.AssetRef(key)
		m.Source = src.ID
		if src.Source != "" {
			m.Source = src.Source
		}
		x.meshes.PutMesh(&m)

		x.mu.Lock()
		x.memo[key] = &m
		x.mu.Unlock()
		return &m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scene.Mesh), nil
}

// Clones returns how many distinct clones the executor has made.
func (x *Executor) Clones() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.memo)
}
