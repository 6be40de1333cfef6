package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/reactbake/internal/scene"
)

// Rule is one candidate mutation of a property: Value applies while all
// Conditions hold, or, if Inverted, while they do not all hold.
type Rule struct {
	Target     TargetProp
	Value      Value
	Conditions []ControlCondition
	Inverted   bool
	// Delete marks the rules produced by a shape deletion.
	Delete bool
	// Source is the declaring component.
	Source *scene.Component
}

// Clone returns a copy of r that shares no condition storage with it.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Conditions = slices.Clone(r.Conditions)
	return &c
}

// Unconditional reports whether r always applies.
func (r *Rule) Unconditional() bool {
	return len(r.Conditions) == 0 && !r.Inverted
}

// MergeCompatible reports whether o can be folded into r: same value within
// epsilon or same asset, same delete and inversion flags, and an identical
// condition list.
func (r *Rule) MergeCompatible(o *Rule) bool {
	return r.Target == o.Target &&
		r.Value.Near(o.Value) &&
		r.Delete == o.Delete &&
		r.Inverted == o.Inverted &&
		ConditionsEqual(r.Conditions, o.Conditions)
}

// Applies evaluates the rule under eval, which reports whether a single
// condition currently holds.
func (r *Rule) Applies(eval func(ControlCondition) bool) bool {
	all := true
	for _, c := range r.Conditions {
		if !eval(c) {
			all = false
			break
		}
	}
	return all != r.Inverted
}

// Equal reports field-wise equality. Sources compare by identity.
func (r *Rule) Equal(o *Rule) bool {
	return r.Target == o.Target &&
		r.Value == o.Value &&
		r.Inverted == o.Inverted &&
		r.Delete == o.Delete &&
		r.Source == o.Source &&
		ConditionsEqual(r.Conditions, o.Conditions)
}

func (r *Rule) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = %s", r.Target, r.Value)
	if r.Delete {
		sb.WriteString(" (delete)")
	}
	if len(r.Conditions) > 0 {
		parts := make([]string, len(r.Conditions))
		for i, c := range r.Conditions {
			parts[i] = c.String()
		}
		if r.Inverted {
			sb.WriteString(" unless ")
		} else {
			sb.WriteString(" when ")
		}
		sb.WriteString(strings.Join(parts, " && "))
	} else if r.Inverted {
		sb.WriteString(" never")
	}
	return sb.String()
}
