package config

import "github.com/hashicorp/hcl/v2"

// Model is the unified, format-agnostic representation of a scene document:
// one avatar hierarchy plus the assets and pre-existing animation it refers to.
type Model struct {
	Avatar     *Avatar
	Meshes     map[string]*Mesh
	Animations []*Animation
	Outputs    []*Output
}

// Avatar is the root of the authored hierarchy. Nodes are the root's direct
// children in declaration order.
type Avatar struct {
	Name      string
	Nodes     []*Node
	DeclRange hcl.Range
}

// Node is one element of the hierarchy.
type Node struct {
	Name       string
	Active     bool
	Renderer   *Renderer
	Components []*Component
	Children   []*Node
	DeclRange  hcl.Range
}

// Renderer describes a skinned mesh renderer attached to a node.
type Renderer struct {
	Mesh      string
	Materials []string
	Shapes    map[string]float32
}

// ComponentKind names the kind of a declared component. Values match the
// block type names used in scene files.
type ComponentKind string

const (
	KindMenuItem       ComponentKind = "menu_item"
	KindObjectToggle   ComponentKind = "object_toggle"
	KindShapeChanger   ComponentKind = "shape_changer"
	KindMaterialSetter ComponentKind = "material_setter"
	KindMaterialSwap   ComponentKind = "material_swap"
	KindBlendshapeSync ComponentKind = "blendshape_sync"
)

// Component is the format-agnostic representation of a component block.
// Exactly the payload fields matching Kind are populated.
type Component struct {
	Kind      ComponentKind
	Enabled   bool
	Inverted  bool
	DeclRange hcl.Range

	MenuItem  *MenuItem
	Objects   []ToggledObject
	Shapes    []ChangedShape
	Materials []MaterialSlot
	SwapRoot  string
	Swaps     []SwapPair
	Bindings  []SyncBinding
}

// MenuItem binds a node to a menu-driven parameter.
type MenuItem struct {
	Parameter string
	Value     float32
	Default   bool
	Reachable bool
}

// ToggledObject is one entry of an object_toggle component.
type ToggledObject struct {
	Target string
	Active bool
}

// ChangedShape is one entry of a shape_changer component. Mode is "set" or
// "delete".
type ChangedShape struct {
	Renderer string
	Name     string
	Mode     string
	Value    float32
}

// MaterialSlot is one entry of a material_setter component.
type MaterialSlot struct {
	Renderer string
	Slot     int
	Asset    string
}

// SwapPair is one entry of a material_swap component.
type SwapPair struct {
	From string
	To   string
}

// SyncBinding is one entry of a blendshape_sync component. Local defaults to
// Shape when empty.
type SyncBinding struct {
	Source string
	Shape  string
	Local  string
}

// Mesh is a mesh asset with its ordered blendshape channels.
type Mesh struct {
	ID          string
	BlendShapes []string
	DeclRange   hcl.Range
}

// Animation declares a pre-existing clip binding that already drives a
// property on a hierarchy path.
type Animation struct {
	Name     string
	Path     string
	Property string
}

// Output declares a layer container the synthesized layers are merged into.
type Output struct {
	Name    string
	Scratch bool
}
