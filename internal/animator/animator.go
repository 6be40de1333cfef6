// Package animator turns each surviving property bucket into a layered state
// machine whose behavior matches last-match-wins evaluation of the bucket.
//
// For a bucket with rules r1..rn the layer has a default state holding the
// baseline (or r1's value when r1 is unconditional) and one state per
// conditional rule, in priority order. Every state has an entry into each
// later state guarded by that rule's condition, tried highest priority first,
// and an exit back to the default state once its own guard stops holding.
// From the default state the highest-priority rule that holds is entered
// directly, so the last rule whose condition holds always wins.
package animator

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
)

// CheckContainer returns the sink's output container, or an error wrapping
// ErrOutputContainer when it is missing or not a scratch asset.
func CheckContainer(sink Sink) (*Container, error) {
	container, ok := sink.OutputContainer()
	if !ok || container == nil {
		return nil, fmt.Errorf("%w: no output container declared", ErrOutputContainer)
	}
	if !container.Scratch {
		return nil, fmt.Errorf("%w: container %q is shared", ErrOutputContainer, container.Name)
	}
	return container, nil
}

// Synthesize builds one layer per bucket, registers the new states with the
// remapper and merges the layers into the sink's output container.
func Synthesize(ctx context.Context, buckets *model.Buckets, sink Sink, remapper Remapper) ([]*Layer, error) {
	logger := ctxlog.FromContext(ctx)

	container, err := CheckContainer(sink)
	if err != nil {
		return nil, err
	}

	layers := make([]*Layer, 0, buckets.Len())
	states := 0
	for _, b := range buckets.All() {
		layer := Build(b)
		for _, s := range layer.States {
			if remapper != nil {
				remapper.RegisterState(b.Target.Object, layer.Name, s.Name)
			}
		}
		states += len(layer.States)
		layers = append(layers, layer)
	}

	if err := sink.Merge(container, layers); err != nil {
		return nil, fmt.Errorf("merging layers into %q: %w", container.Name, err)
	}

	logger.Debug("State machines synthesized.", "layers", len(layers), "states", states, "container", container.Name)
	return layers, nil
}

// Build returns the layer of a single bucket.
func Build(b *model.PropertyBucket) *Layer {
	layer := &Layer{
		Name:   b.Target.String(),
		Target: b.Target,
	}

	rules := b.Rules
	def := State{Name: "Default", Value: b.Baseline}
	if len(rules) > 0 && rules[0].Unconditional() {
		def.Value = rules[0].Value
		def.Rule = rules[0]
		rules = rules[1:]
	}
	layer.States = append(layer.States, def)

	for i, r := range rules {
		layer.States = append(layer.States, State{
			Name:  fmt.Sprintf("Rule %d", i+1),
			Value: r.Value,
			Rule:  r,
		})
	}

	for j := range layer.States {
		// Entries into later states, highest priority first.
		for i := len(layer.States) - 1; i > j; i-- {
			for _, guard := range enter(layer.States[i].Rule) {
				layer.States[j].Transitions = append(layer.States[j].Transitions, Transition{To: i, Conditions: guard})
			}
		}
		if j == 0 {
			continue
		}
		for _, guard := range leave(layer.States[j].Rule) {
			layer.States[j].Transitions = append(layer.States[j].Transitions, Transition{To: 0, Conditions: guard})
		}
	}
	return layer
}

// enter returns the guards under which r applies, one per transition.
func enter(r *model.Rule) [][]TransitionCondition {
	if r.Inverted {
		return complement(r.Conditions)
	}
	return [][]TransitionCondition{conjunction(r.Conditions)}
}

// leave returns the guards under which r stops applying.
func leave(r *model.Rule) [][]TransitionCondition {
	if r.Inverted {
		if len(r.Conditions) == 0 {
			return [][]TransitionCondition{{}}
		}
		return [][]TransitionCondition{conjunction(r.Conditions)}
	}
	return complement(r.Conditions)
}

// conjunction is a single guard holding when every window holds.
func conjunction(conds []model.ControlCondition) []TransitionCondition {
	out := make([]TransitionCondition, 0, 2*len(conds))
	for _, c := range conds {
		if !math32.IsInf(c.Lo, -1) {
			out = append(out, TransitionCondition{Parameter: c.Parameter, Mode: AtLeast, Threshold: c.Lo})
		}
		if !math32.IsInf(c.Hi, 1) {
			out = append(out, TransitionCondition{Parameter: c.Parameter, Mode: Below, Threshold: c.Hi})
		}
	}
	return out
}

// complement is one guard per negated bound: the conjunction fails as soon as
// any single bound fails.
func complement(conds []model.ControlCondition) [][]TransitionCondition {
	var out [][]TransitionCondition
	for _, c := range conds {
		if !math32.IsInf(c.Lo, -1) {
			out = append(out, []TransitionCondition{{Parameter: c.Parameter, Mode: Below, Threshold: c.Lo}})
		}
		if !math32.IsInf(c.Hi, 1) {
			out = append(out, []TransitionCondition{{Parameter: c.Parameter, Mode: AtLeast, Threshold: c.Hi}})
		}
	}
	return out
}
