package compiler

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/animator"
	"github.com/specialistvlad/reactbake/internal/meshdelete"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Assignment is a property and a value.
type Assignment struct {
	Target model.TargetProp
	Value  model.Value
}

// Parameter is a runtime parameter the synthesized layers read.
type Parameter struct {
	Name    string
	Kind    model.ConditionKind
	Default float32
	// Node is the node an active proxy mirrors; empty for menu parameters.
	Node scene.NodeID
}

// Result is the outcome of one compilation run.
type Result struct {
	Generation uint64
	// Layers holds one state machine per animated property.
	Layers []*animator.Layer
	// Defaults is the initial value of every animated property.
	Defaults []Assignment
	// Baked lists the properties whose value never changes and was written
	// into the scene instead of being animated.
	Baked []Assignment
	// Parameters lists the parameters the layers read.
	Parameters []Parameter
	// Meshes lists the renderers whose mesh was replaced by a clone with
	// channels removed.
	Meshes []meshdelete.Removal
	// Rounds is the number of fold rounds the run needed.
	Rounds int
	// Diagnostics holds the non-fatal warnings of the run.
	Diagnostics hcl.Diagnostics
}
