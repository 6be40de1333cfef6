// Package fold removes conditions whose truth value can never change at
// runtime, drops rules that can never apply, and truncates every bucket
// before its last unconditional rule.
package fold

import (
	"context"
	"slices"

	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Animated reports whether a pre-existing animation already drives a
// property of a node. The animation-clip ledger implements it.
type Animated interface {
	Animates(id scene.NodeID, property string) bool
}

// Stats summarizes what a Fold call did.
type Stats struct {
	Passes            int
	ConditionsRemoved int
	RulesDropped      int
	RulesTruncated    int
	RulesMerged       int
	BucketsRemoved    int
}

// Changed reports whether the fold modified anything.
func (s Stats) Changed() bool {
	return s.ConditionsRemoved+s.RulesDropped+s.RulesTruncated+s.RulesMerged+s.BucketsRemoved > 0
}

// Fold folds the bucket set in place until it stops changing. Removing a
// toggle bucket, or reducing it to unconditional rules, makes conditions
// observing that node constant, so a single pass is not enough. Each toggle
// bucket changes that way at most once, which bounds the loop.
//
// Fold is idempotent: folding an already folded set changes nothing.
func Fold(ctx context.Context, buckets *model.Buckets, animated Animated) Stats {
	logger := ctxlog.FromContext(ctx)
	var total Stats

	limit := buckets.Len() + 2
	for total.Passes < limit {
		total.Passes++
		s := pass(buckets, animated)
		total.ConditionsRemoved += s.ConditionsRemoved
		total.RulesDropped += s.RulesDropped
		total.RulesTruncated += s.RulesTruncated
		total.RulesMerged += s.RulesMerged
		total.BucketsRemoved += s.BucketsRemoved
		if !s.Changed() {
			break
		}
	}

	logger.Debug("Constant folding finished.",
		"passes", total.Passes,
		"conditions_removed", total.ConditionsRemoved,
		"rules_dropped", total.RulesDropped,
		"rules_truncated", total.RulesTruncated,
		"rules_merged", total.RulesMerged,
		"buckets_removed", total.BucketsRemoved,
		"buckets_left", buckets.Len(),
	)
	return total
}

// constancy decides whether conditions can change at runtime. It is built
// from the bucket set at the start of a pass.
type constancy struct {
	animated Animated
	// toggles maps every toggled node to its fixed value, or nil when the
	// toggle still depends on a runtime condition.
	toggles map[scene.NodeID]*model.Value
}

func newConstancy(buckets *model.Buckets, animated Animated) *constancy {
	k := &constancy{animated: animated, toggles: make(map[scene.NodeID]*model.Value)}
	for _, b := range buckets.All() {
		if !b.Target.IsActive() {
			continue
		}
		var fixed *model.Value
		if last := b.Last(); last != nil && !b.Dynamic() {
			v := last.Value
			fixed = &v
		}
		k.toggles[b.Target.Object] = fixed
	}
	return k
}

// check reports whether c is constant and, if so, whether it holds.
//
// An active condition is constant when no existing clip drives the observed
// node and either nothing toggles it or every toggle of it is unconditional.
// In the latter case the toggled value decides, not the scene literal. A menu
// condition carries its own flag.
func (k *constancy) check(c model.ControlCondition) (constant, holds bool) {
	if c.Kind != model.ConditionActive {
		return c.Constant, c.InitiallySatisfied()
	}
	if k.animated != nil && k.animated.Animates(c.Observed, model.PropActive) {
		return false, false
	}
	fixed, toggled := k.toggles[c.Observed]
	switch {
	case !toggled:
		return true, c.InitiallySatisfied()
	case fixed != nil:
		return true, c.Satisfied(fixed.Scalar)
	default:
		return false, false
	}
}

func pass(buckets *model.Buckets, animated Animated) Stats {
	var s Stats
	// Constancy is judged against the toggles present at the start of the
	// pass; changes made below are picked up by the next pass.
	k := newConstancy(buckets, animated)

	for _, b := range buckets.All() {
		kept := b.Rules[:0]
		for _, r := range b.Rules {
			removed, keep := foldRule(r, k.check)
			s.ConditionsRemoved += removed
			if !keep {
				s.RulesDropped++
				continue
			}
			kept = append(kept, r)
		}
		b.Rules = kept

		if n := truncate(b); n > 0 {
			s.RulesTruncated += n
		}
		s.RulesMerged += remerge(b)

		if len(b.Rules) == 0 {
			buckets.Delete(b.Target)
			s.BucketsRemoved++
		}
	}
	return s
}

// foldRule removes constant conditions from r in place. It returns how many
// conditions were removed and whether the rule survives.
//
// For a plain rule a constant-unsatisfied condition means the rule never
// applies. An inverted rule applies on the complement of its conjunction, so
// a constant-unsatisfied condition makes it always apply, and a conjunction
// that folds away entirely makes it never apply.
func foldRule(r *model.Rule, check func(model.ControlCondition) (bool, bool)) (int, bool) {
	before := len(r.Conditions)
	kept := make([]model.ControlCondition, 0, before)
	for _, c := range r.Conditions {
		constant, holds := check(c)
		if !constant {
			kept = append(kept, c)
			continue
		}
		if holds {
			continue
		}
		if !r.Inverted {
			return before - len(kept), false
		}
		r.Conditions = nil
		r.Inverted = false
		return before, true
	}

	if len(kept) == before {
		return 0, true
	}
	r.Conditions = kept
	if r.Inverted && len(kept) == 0 {
		return before, false
	}
	return before - len(kept), true
}

// truncate drops every rule before the last unconditional one; those rules
// are always overridden.
func truncate(b *model.PropertyBucket) int {
	for i := len(b.Rules) - 1; i > 0; i-- {
		if b.Rules[i].Unconditional() {
			b.Rules = slices.Clone(b.Rules[i:])
			return i
		}
	}
	return 0
}

// remerge collapses adjacent merge-compatible rules that folding made
// identical.
func remerge(b *model.PropertyBucket) int {
	if len(b.Rules) < 2 {
		return 0
	}
	before := len(b.Rules)
	out := b.Rules[:1]
	for _, r := range b.Rules[1:] {
		if out[len(out)-1].MergeCompatible(r) {
			continue
		}
		out = append(out, r)
	}
	b.Rules = out
	return before - len(out)
}
