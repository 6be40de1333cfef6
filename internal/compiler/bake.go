package compiler

import (
	"context"
	"slices"

	"github.com/specialistvlad/reactbake/internal/condition"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/solver"
)

// bake writes every bucket that no longer depends on a runtime condition
// into the scene and removes it from the set. Delete markers have no scene
// property and are dropped.
func (r *run) bake(ctx context.Context, buckets *model.Buckets) []Assignment {
	logger := ctxlog.FromContext(ctx)
	var baked []Assignment

	for _, b := range buckets.All() {
		last := b.Last()
		if last == nil || b.Dynamic() {
			continue
		}
		buckets.Delete(b.Target)
		if _, marker := b.Target.DeletedShape(); marker {
			continue
		}
		if !r.apply(b.Target, last.Value) {
			logger.Warn("Cannot bake property; target no longer exists.", "target", b.Target)
			continue
		}
		baked = append(baked, Assignment{Target: b.Target, Value: last.Value})
	}

	logger.Debug("Constant properties baked.", "baked", len(baked))
	return baked
}

// apply writes v into the scene property t.
func (r *run) apply(t model.TargetProp, v model.Value) bool {
	n, ok := r.scene.Lookup(t.Object)
	if !ok {
		return false
	}
	if t.IsActive() {
		n.Active = v.Truthy()
		return true
	}
	if n.Renderer == nil {
		return false
	}
	if shape, ok := t.Shape(); ok {
		n.Renderer.Shapes[shape] = v.Scalar
		return true
	}
	if slot, ok := t.MaterialSlot(); ok && slot < len(n.Renderer.Materials) {
		n.Renderer.Materials[slot] = v.Asset
		return true
	}
	return false
}

// parameters lists the parameters read by the surviving rules: menu
// parameters first, then active proxies, each kind in first-use order. Active
// proxies default to their settled state.
func (r *run) parameters(buckets *model.Buckets, table solver.Table) []Parameter {
	proxies := make(map[string]condition.Proxy)
	for _, p := range r.resolver.Proxies() {
		proxies[p.Parameter] = p
	}

	var out []Parameter
	seen := make(map[string]bool)
	for _, b := range buckets.All() {
		for _, rule := range b.Rules {
			for _, c := range rule.Conditions {
				if seen[c.Parameter] {
					continue
				}
				seen[c.Parameter] = true
				p := Parameter{Name: c.Parameter, Kind: c.Kind, Default: c.Initial}
				if proxy, ok := proxies[c.Parameter]; ok {
					p.Node = proxy.Node
					p.Default = model.Bool(proxy.Default).Scalar
					if active, settled := table[proxy.Node]; settled {
						p.Default = model.Bool(active).Scalar
					}
				}
				out = append(out, p)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Parameter) int { return parameterRank(a.Kind) - parameterRank(b.Kind) })
	return out
}

func parameterRank(k model.ConditionKind) int {
	if k == model.ConditionMenu {
		return 0
	}
	return 1
	return out
}
