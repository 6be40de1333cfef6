// Package collect scans the declared mutation components of a scene and
// builds one ordered rule list per target property.
package collect

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/condition"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Source is the part of the scene the collector reads.
type Source interface {
	scene.Walker
	scene.ReferenceIndex
	scene.MeshStore
	// Descendants returns root and every node below it in discovery order.
	Descendants(root *scene.Node) []*scene.Node
}

// collector carries the state of one pass.
type collector struct {
	src      Source
	resolver *condition.Resolver
	buckets  *model.Buckets
	diags    hcl.Diagnostics

	appended, merged int
}

// Collect walks the hierarchy once, in discovery order, and returns the
// property buckets. Problems with individual entries (missing shapes,
// out-of-range slots) are returned as warnings and the entry is skipped.
func Collect(ctx context.Context, src Source, resolver *condition.Resolver) (*model.Buckets, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	c := &collector{
		src:      src,
		resolver: resolver,
		buckets:  model.NewBuckets(),
	}

	for _, n := range src.Nodes() {
		for _, comp := range n.Components {
			if !comp.Enabled {
				logger.Debug("Skipping disabled component.", "component", comp.ID)
				continue
			}
			c.component(comp)
		}
	}

	logger.Debug("Rule collection finished.",
		"buckets", c.buckets.Len(),
		"rules", c.appended,
		"merged", c.merged,
		"warnings", len(c.diags),
	)
	return c.buckets, c.diags
}

// component dispatches on the payload variant. Menu items and sync bindings
// are not mutations and are handled by other stages.
func (c *collector) component(comp *scene.Component) {
	switch p := comp.Payload.(type) {
	case *scene.ObjectToggle:
		c.toggle(comp, p)
	case *scene.ShapeChanger:
		c.shapes(comp, p)
	case *scene.MaterialSetter:
		c.materialSetter(comp, p)
	case *scene.MaterialSwap:
		c.materialSwap(comp, p)
	case *scene.MenuItem, *scene.BlendshapeSync:
	}
}

func (c *collector) toggle(comp *scene.Component, p *scene.ObjectToggle) {
	for _, obj := range p.Objects {
		target := obj.Target
		c.add(comp, p.Inverted, model.ActiveProp(target.ID), model.Bool(obj.Active), false,
			func() model.Value { return model.Bool(target.Active) })
	}
}

func (c *collector) shapes(comp *scene.Component, p *scene.ShapeChanger) {
	for _, sh := range p.Shapes {
		r := sh.Renderer.Renderer
		mesh, ok := c.src.Mesh(r.Mesh)
		if !ok || mesh.ShapeIndex(sh.Name) < 0 {
			c.diags = append(c.diags, model.Warn(comp, "Unknown blendshape",
				fmt.Sprintf("shape %q is not present on mesh %q of %s; entry ignored", sh.Name, r.Mesh, sh.Renderer)))
			continue
		}

		id := sh.Renderer.ID
		weight := func() model.Value { return model.Scalar(r.Weight(sh.Name)) }
		switch sh.Mode {
		case scene.ShapeSet:
			c.add(comp, p.Inverted, model.ShapeProp(id, sh.Name), model.Scalar(sh.Value), false, weight)
		case scene.ShapeDelete:
			c.add(comp, p.Inverted, model.ShapeProp(id, sh.Name), model.Scalar(0), true, weight)
			c.add(comp, p.Inverted, model.DeletedShapeProp(id, sh.Name), model.Scalar(1), true,
				func() model.Value { return model.Scalar(0) })
		}
	}
}

func (c *collector) materialSetter(comp *scene.Component, p *scene.MaterialSetter) {
	for _, slot := range p.Slots {
		r := slot.Renderer.Renderer
		if slot.Slot < 0 || slot.Slot >= len(r.Materials) {
			c.diags = append(c.diags, model.Warn(comp, "Material slot out of range",
				fmt.Sprintf("slot %d does not exist on %s, which has %d slot(s); entry ignored", slot.Slot, slot.Renderer, len(r.Materials))))
			continue
		}
		idx := slot.Slot
		c.add(comp, p.Inverted, model.MaterialProp(slot.Renderer.ID, idx), model.Asset(slot.Material), false,
			func() model.Value { return model.Asset(r.Materials[idx]) })
	}
}

// materialSwap matches slots against the original material references, not
// the current ones, so that an earlier override cannot hide a swap target.
// When several pairs share a From, the last one wins.
func (c *collector) materialSwap(comp *scene.Component, p *scene.MaterialSwap) {
	for _, n := range c.src.Descendants(p.Root) {
		if n.Renderer == nil {
			continue
		}
		for slot, orig := range c.src.References(n) {
			to, ok := swapFor(p.Swaps, orig)
			if !ok {
				continue
			}
			r, idx := n.Renderer, slot
			c.add(comp, p.Inverted, model.MaterialProp(n.ID, slot), model.Asset(to), false,
				func() model.Value { return model.Asset(r.Materials[idx]) })
		}
	}
}

func swapFor(pairs []scene.SwapPair, orig scene.AssetRef) (scene.AssetRef, bool) {
	var (
		to    scene.AssetRef
		found bool
	)
	for _, pair := range pairs {
		if pair.From == orig {
			to, found = pair.To, true
		}
	}
	return to, found
}

// add builds the rule for one entry and appends it to its bucket, folding
// it into the preceding rule when merge compatible.
func (c *collector) add(comp *scene.Component, inverted bool, target model.TargetProp, value model.Value, del bool, baseline func() model.Value) {
	rule := &model.Rule{
		Target:     target,
		Value:      value,
		Conditions: c.resolver.Conditions(comp.Node),
		Inverted:   inverted,
		Delete:     del,
		Source:     comp,
	}
	if c.buckets.Ensure(target, baseline).Add(rule) {
		c.appended++
	} else {
		c.merged++
	}
}
