package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/schema"
)

// translateNode decodes a node body. PartialContent keeps blocks in source
// order, which is the discovery order the compiler's priorities depend on.
func (l *Loader) translateNode(ctx context.Context, name string, body hcl.Body, declRange hcl.Range) (*config.Node, error) {
	content, _, diags := body.PartialContent(schema.NodeBody)
	if diags.HasErrors() {
		return nil, diags
	}

	node := &config.Node{
		Name:      name,
		Active:    true,
		DeclRange: declRange,
	}

	if attr, ok := content.Attributes["active"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &node.Active); diags.HasErrors() {
			return nil, diags
		}
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "node":
			child, err := l.translateNode(ctx, block.Labels[0], block.Body, block.DefRange)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case "renderer":
			if node.Renderer != nil {
				return nil, fmt.Errorf("%s: node %q declares more than one renderer", block.DefRange, name)
			}
			r, err := l.translateRenderer(block)
			if err != nil {
				return nil, err
			}
			node.Renderer = r
		default:
			c, err := l.translateComponent(ctx, block)
			if err != nil {
				return nil, err
			}
			node.Components = append(node.Components, c)
		}
	}
	return node, nil
}

func (l *Loader) translateRenderer(block *hcl.Block) (*config.Renderer, error) {
	var s schema.Renderer
	if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
		return nil, diags
	}
	shapes, err := decodeShapeWeights(s.Shapes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", block.DefRange, err)
	}
	return &config.Renderer{
		Mesh:      s.Mesh,
		Materials: s.Materials,
		Shapes:    shapes,
	}, nil
}

// translateComponent decodes one component block into the agnostic model.
func (l *Loader) translateComponent(ctx context.Context, block *hcl.Block) (*config.Component, error) {
	logger := ctxlog.FromContext(ctx)
	c := &config.Component{
		Kind:      config.ComponentKind(block.Type),
		Enabled:   true,
		DeclRange: block.DefRange,
	}

	var diags hcl.Diagnostics
	switch c.Kind {
	case config.KindMenuItem:
		var s schema.MenuItem
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		item := &config.MenuItem{
			Parameter: s.Parameter,
			Value:     1,
			Default:   s.Default,
			Reachable: true,
		}
		if s.Value != nil {
			item.Value = float32(*s.Value)
		}
		if s.Reachable != nil {
			item.Reachable = *s.Reachable
		}
		c.MenuItem = item

	case config.KindObjectToggle:
		var s schema.ObjectToggle
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		c.Enabled, c.Inverted = enabled(s.Enabled), s.Inverted
		for _, o := range s.Objects {
			c.Objects = append(c.Objects, config.ToggledObject{Target: o.Target, Active: o.Active})
		}

	case config.KindShapeChanger:
		var s schema.ShapeChanger
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		c.Enabled, c.Inverted = enabled(s.Enabled), s.Inverted
		for _, sh := range s.Shapes {
			mode := sh.Mode
			if mode == "" {
				mode = "set"
			}
			if mode != "set" && mode != "delete" {
				return nil, fmt.Errorf("%s: shape %q has invalid mode %q: must be 'set' or 'delete'", block.DefRange, sh.Name, sh.Mode)
			}
			c.Shapes = append(c.Shapes, config.ChangedShape{
				Renderer: sh.Renderer,
				Name:     sh.Name,
				Mode:     mode,
				Value:    float32(sh.Value),
			})
		}

	case config.KindMaterialSetter:
		var s schema.MaterialSetter
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		c.Enabled, c.Inverted = enabled(s.Enabled), s.Inverted
		for _, m := range s.Materials {
			c.Materials = append(c.Materials, config.MaterialSlot{Renderer: m.Renderer, Slot: m.Slot, Asset: m.Asset})
		}

	case config.KindMaterialSwap:
		var s schema.MaterialSwap
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		c.Enabled, c.Inverted = enabled(s.Enabled), s.Inverted
		c.SwapRoot = s.Root
		for _, p := range s.Swaps {
			c.Swaps = append(c.Swaps, config.SwapPair{From: p.From, To: p.To})
		}

	case config.KindBlendshapeSync:
		var s schema.BlendshapeSync
		if diags = gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			break
		}
		c.Enabled = enabled(s.Enabled)
		for _, b := range s.Bindings {
			local := b.Local
			if local == "" {
				local = b.Shape
			}
			c.Bindings = append(c.Bindings, config.SyncBinding{Source: b.Source, Shape: b.Shape, Local: local})
		}

	default:
		// Unreachable: PartialContent only returns block types from the schema.
		return nil, fmt.Errorf("%s: unsupported block type %q", block.DefRange, block.Type)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	logger.Debug("Decoded component block.", "kind", c.Kind, "range", c.DeclRange.String())
	return c, nil
}

// enabled treats an absent `enabled` attribute as true.
func enabled(v *bool) bool {
	return v == nil || *v
}
