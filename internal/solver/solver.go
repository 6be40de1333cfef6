// Package solver settles the initial active state of toggled nodes.
//
// Toggle rules may be gated by the active state of other toggled nodes, so
// the initial state of the whole graph is a fixed point. The solver finds it
// by bounded relaxation over an explicit table:
//
//  1. Seed the table with the literal active flag of every toggled node.
//  2. Replay each toggle bucket against the table (last match wins) to build
//     the next table.
//  3. Stop when the table no longer changes or the iteration bound is hit.
//
// Chains longer than the bound may not settle. That is accepted: the last
// table is used and a warning is reported.
package solver

import (
	"context"
	"fmt"
	"maps"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// DefaultMaxIterations bounds the relaxation loop.
const DefaultMaxIterations = 8

// Table maps a toggled node to its settled initial active state.
type Table map[scene.NodeID]bool

// Solution is the outcome of one solve.
type Solution struct {
	Table      Table
	Defaults   map[model.TargetProp]model.Value
	Iterations int
	Converged  bool
}

// Solver runs the relaxation.
type Solver struct {
	maxIterations int
}

// New returns a solver with the given iteration bound. A bound below one
// falls back to DefaultMaxIterations.
func New(maxIterations int) *Solver {
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	return &Solver{maxIterations: maxIterations}
}

// Solve relaxes the toggle buckets, writes the settled values back into the
// Initial field of every active condition and computes the initial value of
// every bucket. root is the subject of the non-convergence warning.
func (s *Solver) Solve(ctx context.Context, buckets *model.Buckets, root *scene.Node) (Solution, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	toggles := make([]*model.PropertyBucket, 0)
	table := make(Table)
	for _, b := range buckets.All() {
		if !b.Target.IsActive() {
			continue
		}
		toggles = append(toggles, b)
		table[b.Target.Object] = b.Baseline.Truthy()
	}

	sol := Solution{Table: table}
	for sol.Iterations < s.maxIterations {
		sol.Iterations++
		next := make(Table, len(table))
		for _, b := range toggles {
			next[b.Target.Object] = b.Evaluate(table.eval).Truthy()
		}
		if maps.Equal(next, table) {
			sol.Converged = true
			break
		}
		table = next
	}
	sol.Table = table

	var diags hcl.Diagnostics
	if !sol.Converged {
		logger.Warn("Initial state relaxation did not settle.", "iterations", sol.Iterations, "toggles", len(toggles))
		d := model.WarnNode(root, "Initial state did not settle",
			fmt.Sprintf("the active state of %d toggled object(s) still changed after %d iterations; the last computed state is used", len(toggles), sol.Iterations))
		diags = append(diags, d)
	}

	writeBack(buckets, table)

	sol.Defaults = make(map[model.TargetProp]model.Value, buckets.Len())
	for _, b := range buckets.All() {
		sol.Defaults[b.Target] = b.Evaluate(model.ControlCondition.InitiallySatisfied)
	}

	logger.Debug("Initial state solved.",
		"toggles", len(toggles),
		"iterations", sol.Iterations,
		"converged", sol.Converged,
	)
	return sol, diags
}

// eval evaluates a condition against the table. Menu conditions and active
// conditions on untoggled nodes use their static initial value.
func (t Table) eval(c model.ControlCondition) bool {
	if c.Kind == model.ConditionActive {
		if active, ok := t[c.Observed]; ok {
			return c.Satisfied(model.Bool(active).Scalar)
		}
	}
	return c.InitiallySatisfied()
}

func writeBack(buckets *model.Buckets, table Table) {
	for _, b := range buckets.All() {
		for _, r := range b.Rules {
			for i := range r.Conditions {
				c := &r.Conditions[i]
				if c.Kind != model.ConditionActive {
					continue
				}
				if active, ok := table[c.Observed]; ok {
					c.Initial = model.Bool(active).Scalar
				}
			}
		}
	}
}
