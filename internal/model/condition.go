package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// ConditionKind discriminates what a condition observes.
type ConditionKind uint8

const (
	// ConditionActive observes the active state of an ancestor through its
	// active proxy parameter.
	ConditionActive ConditionKind = iota
	// ConditionMenu observes a menu selection.
	ConditionMenu
)

func (k ConditionKind) String() string {
	if k == ConditionMenu {
		return "menu"
	}
	return "active"
}

// ControlCondition is one gating test: Parameter must lie in [Lo, Hi).
// Initial is the parameter's statically known value and Constant records
// that it can never change at runtime. Observed is the node the condition was
// derived from.
type ControlCondition struct {
	Kind      ConditionKind
	Parameter string
	Lo, Hi    float32
	Initial   float32
	Constant  bool
	Observed  scene.NodeID
}

// NewCondition validates the window and returns the condition.
func NewCondition(kind ConditionKind, param string, lo, hi, initial float32, observed scene.NodeID) (ControlCondition, error) {
	if !(lo < hi) {
		return ControlCondition{}, fmt.Errorf("condition on %q has empty window [%g, %g)", param, lo, hi)
	}
	return ControlCondition{
		Kind:      kind,
		Parameter: param,
		Lo:        lo,
		Hi:        hi,
		Initial:   initial,
		Observed:  observed,
	}, nil
}

// ActiveCondition is the condition "node id is active", window [0.5, +Inf).
func ActiveCondition(id scene.NodeID, active bool) ControlCondition {
	c, _ := NewCondition(ConditionActive, ActiveProxyParameter(id), 0.5, math32.Inf(1), Bool(active).Scalar, id)
	return c
}

// Satisfied reports whether v lies in the condition's window.
func (c ControlCondition) Satisfied(v float32) bool {
	return v >= c.Lo && v < c.Hi
}

// InitiallySatisfied reports whether the condition holds at its initial value.
func (c ControlCondition) InitiallySatisfied() bool {
	return c.Satisfied(c.Initial)
}

// Unbounded reports whether the window has no upper bound.
func (c ControlCondition) Unbounded() bool {
	return math32.IsInf(c.Hi, 1)
}

func (c ControlCondition) String() string {
	return fmt.Sprintf("%s in [%g, %g)", c.Parameter, c.Lo, c.Hi)
}

// ConditionsEqual reports field-wise equality of two condition lists.
func ConditionsEqual(a, b []ControlCondition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
