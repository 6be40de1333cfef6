package animator

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// ErrOutputContainer is returned when the layer container the synthesized
// layers are merged into is missing or is not a private scratch asset. It
// points at a pipeline ordering bug and aborts the build.
var ErrOutputContainer = errors.New("output layer container is missing or not a scratch asset")

// Mode is the comparison a transition condition applies to its parameter.
type Mode uint8

const (
	// AtLeast holds when the parameter is >= Threshold.
	AtLeast Mode = iota
	// Below holds when the parameter is < Threshold.
	Below
)

func (m Mode) String() string {
	if m == Below {
		return "<"
	}
	return ">="
}

// TransitionCondition is one comparison of a transition guard.
type TransitionCondition struct {
	Parameter string
	Mode      Mode
	Threshold float32
}

func (c TransitionCondition) String() string {
	return fmt.Sprintf("%s %s %g", c.Parameter, c.Mode, c.Threshold)
}

// Holds reports whether the condition holds for v.
func (c TransitionCondition) Holds(v float32) bool {
	if c.Mode == Below {
		return v < c.Threshold
	}
	return v >= c.Threshold
}

// Transition moves to state To when all of its conditions hold. Transitions
// are instantaneous: Duration is zero and HasExitTime is false.
type Transition struct {
	To          int
	Conditions  []TransitionCondition
	Duration    float32
	HasExitTime bool
}

// State holds one value of the property. Rule is nil for a default state
// holding the baseline.
type State struct {
	Name        string
	Value       model.Value
	Rule        *model.Rule
	Transitions []Transition
}

// Layer is the state machine of one property. State 0 is the default state.
type Layer struct {
	Name   string
	Target model.TargetProp
	States []State
}

// Container is the layer container synthesized layers are merged into.
type Container struct {
	Name    string
	Scratch bool
}

// Sink receives the synthesized layers. The animation-clip ledger
// implements it.
type Sink interface {
	OutputContainer() (*Container, bool)
	Merge(c *Container, layers []*Layer) error
}

// Remapper is told about every state the synthesizer creates, so that later
// passes can retarget it when the hierarchy changes.
type Remapper interface {
	RegisterState(path scene.NodeID, layer, state string)
}
