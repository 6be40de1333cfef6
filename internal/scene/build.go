package scene

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/scenepath"
)

// Build creates the runtime scene from a loaded model. It runs in two passes:
// the first creates every node and assigns IDs, the second resolves the
// hierarchy references held by components and renderers.
func Build(ctx context.Context, model *config.Model) (*Scene, error) {
	logger := ctxlog.FromContext(ctx)
	if model == nil || model.Avatar == nil {
		return nil, errors.New("scene model has no avatar")
	}

	s := &Scene{
		Name:   model.Avatar.Name,
		nodes:  make(map[NodeID]*Node),
		meshes: make(map[AssetRef]*Mesh),
	}

	for _, id := range slices.Sorted(maps.Keys(model.Meshes)) {
		m := model.Meshes[id]
		mesh := &Mesh{ID: AssetRef(m.ID)}
		for _, name := range m.BlendShapes {
			mesh.BlendShapes = append(mesh.BlendShapes, BlendShape{Name: name})
		}
		s.meshes[mesh.ID] = mesh
	}

	s.root = &Node{
		Name:      model.Avatar.Name,
		Path:      &scenepath.Path{},
		Active:    true,
		DeclRange: model.Avatar.DeclRange,
	}
	s.nodes[""] = s.root

	// Pass 1: nodes and IDs.
	pending := make(map[*Node]*config.Node)
	var addChildren func(parent *Node, children []*config.Node)
	addChildren = func(parent *Node, children []*config.Node) {
		counts := make(map[string]int)
		for _, c := range children {
			counts[c.Name]++
		}
		seen := make(map[string]int)
		for _, c := range children {
			seg := scenepath.NewSegment(c.Name)
			if counts[c.Name] > 1 {
				seg = scenepath.NewSegmentWithIndex(c.Name, seen[c.Name])
				seen[c.Name]++
			}
			path := parent.Path.Child(seg)
			n := &Node{
				ID:        NodeID(path.String()),
				Name:      c.Name,
				Path:      path,
				Parent:    parent,
				Active:    c.Active,
				DeclRange: c.DeclRange,
			}
			parent.Children = append(parent.Children, n)
			s.nodes[n.ID] = n
			s.order = append(s.order, n)
			pending[n] = c
			addChildren(n, c.Children)
		}
	}
	addChildren(s.root, model.Avatar.Nodes)

	// Pass 2: renderers and components.
	for _, n := range s.order {
		src := pending[n]
		if src.Renderer != nil {
			if err := s.attachRenderer(n, src.Renderer); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range s.order {
		ordinals := make(map[config.ComponentKind]int)
		for _, src := range pending[n].Components {
			c, err := s.buildComponent(n, src, ordinals[src.Kind])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", src.DeclRange, err)
			}
			ordinals[src.Kind]++
			n.Components = append(n.Components, c)
		}
	}

	logger.Debug("Scene built.", "avatar", s.Name, "nodes", len(s.order), "meshes", len(s.meshes))
	return s, nil
}

func (s *Scene) attachRenderer(n *Node, src *config.Renderer) error {
	ref := AssetRef(src.Mesh)
	if _, ok := s.meshes[ref]; !ok {
		return fmt.Errorf("%s: node %q renderer references unknown mesh %q", n.DeclRange, n.ID, src.Mesh)
	}
	r := &Renderer{
		Owner:  n,
		Mesh:   ref,
		Shapes: make(map[string]float32, len(src.Shapes)),
	}
	for _, m := range src.Materials {
		r.Materials = append(r.Materials, AssetRef(m))
	}
	r.OriginalMaterials = slices.Clone(r.Materials)
	maps.Copy(r.Shapes, src.Shapes)
	n.Renderer = r
	return nil
}

// resolve looks a hierarchy path up relative to the avatar root.
func (s *Scene) resolve(raw string) (*Node, error) {
	p, err := scenepath.Parse(raw)
	if err != nil {
		return nil, err
	}
	n, ok := s.nodes[NodeID(p.String())]
	if !ok {
		return nil, fmt.Errorf("reference to unknown node %q", raw)
	}
	return n, nil
}

// resolveRenderer is resolve for references that must carry a renderer.
func (s *Scene) resolveRenderer(raw string) (*Node, error) {
	n, err := s.resolve(raw)
	if err != nil {
		return nil, err
	}
	if n.Renderer == nil {
		return nil, fmt.Errorf("node %q has no renderer", raw)
	}
	return n, nil
}

func (s *Scene) buildComponent(n *Node, src *config.Component, ordinal int) (*Component, error) {
	c := &Component{
		ID:        fmt.Sprintf("%s#%s[%d]", n.ID, src.Kind, ordinal),
		Node:      n,
		Enabled:   src.Enabled,
		DeclRange: src.DeclRange,
	}

	switch src.Kind {
	case config.KindMenuItem:
		c.Payload = &MenuItem{
			Parameter: src.MenuItem.Parameter,
			Value:     src.MenuItem.Value,
			Default:   src.MenuItem.Default,
			Reachable: src.MenuItem.Reachable,
		}

	case config.KindObjectToggle:
		p := &ObjectToggle{Inverted: src.Inverted}
		for _, o := range src.Objects {
			target, err := s.resolve(o.Target)
			if err != nil {
				return nil, err
			}
			if target.IsRoot() {
				return nil, errors.New("the avatar root cannot be toggled")
			}
			p.Objects = append(p.Objects, ToggledObject{Target: target, Active: o.Active})
		}
		c.Payload = p

	case config.KindShapeChanger:
		p := &ShapeChanger{Inverted: src.Inverted}
		for _, sh := range src.Shapes {
			r, err := s.resolveRenderer(sh.Renderer)
			if err != nil {
				return nil, err
			}
			mode := ShapeSet
			if sh.Mode == "delete" {
				mode = ShapeDelete
			}
			p.Shapes = append(p.Shapes, ChangedShape{Renderer: r, Name: sh.Name, Mode: mode, Value: sh.Value})
		}
		c.Payload = p

	case config.KindMaterialSetter:
		p := &MaterialSetter{Inverted: src.Inverted}
		for _, m := range src.Materials {
			r, err := s.resolveRenderer(m.Renderer)
			if err != nil {
				return nil, err
			}
			p.Slots = append(p.Slots, MaterialSlot{Renderer: r, Slot: m.Slot, Material: AssetRef(m.Asset)})
		}
		c.Payload = p

	case config.KindMaterialSwap:
		p := &MaterialSwap{Inverted: src.Inverted, Root: n}
		if src.SwapRoot != "" {
			root, err := s.resolve(src.SwapRoot)
			if err != nil {
				return nil, err
			}
			p.Root = root
		}
		for _, sw := range src.Swaps {
			p.Swaps = append(p.Swaps, SwapPair{From: AssetRef(sw.From), To: AssetRef(sw.To)})
		}
		c.Payload = p

	case config.KindBlendshapeSync:
		if n.Renderer == nil {
			return nil, fmt.Errorf("blendshape_sync on node %q requires a renderer on the same node", n.ID)
		}
		p := &BlendshapeSync{}
		for _, b := range src.Bindings {
			source, err := s.resolveRenderer(b.Source)
			if err != nil {
				return nil, err
			}
			p.Bindings = append(p.Bindings, SyncBinding{Source: source, Shape: b.Shape, Local: b.Local})
		}
		c.Payload = p

	default:
		return nil, fmt.Errorf("unsupported component kind %q", src.Kind)
	}
	return c, nil
}
