package scene

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Kind is the kind of a declared component.
type Kind uint8

const (
	KindMenuItem Kind = iota
	KindObjectToggle
	KindShapeChanger
	KindMaterialSetter
	KindMaterialSwap
	KindBlendshapeSync
)

func (k Kind) String() string {
	switch k {
	case KindMenuItem:
		return "menu_item"
	case KindObjectToggle:
		return "object_toggle"
	case KindShapeChanger:
		return "shape_changer"
	case KindMaterialSetter:
		return "material_setter"
	case KindMaterialSwap:
		return "material_swap"
	case KindBlendshapeSync:
		return "blendshape_sync"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Component is a component declared on a node. Payload holds the
// kind-specific data; consumers switch on its concrete type.
type Component struct {
	// ID is stable within a scene: "<node path>#<kind>[<ordinal>]".
	ID        string
	Node      *Node
	Enabled   bool
	DeclRange hcl.Range
	Payload   Payload
}

// Kind returns the kind of the component's payload.
func (c *Component) Kind() Kind {
	return c.Payload.Kind()
}

func (c *Component) String() string {
	return c.ID
}

// Payload is the tagged variant of component data.
type Payload interface {
	Kind() Kind
}

// MenuItem binds its node to a menu-driven parameter.
type MenuItem struct {
	Parameter string
	Value     float32
	Default   bool
	Reachable bool
}

// ObjectToggle sets the active flag of other nodes.
type ObjectToggle struct {
	Inverted bool
	Objects  []ToggledObject
}

// ToggledObject is one target of an ObjectToggle.
type ToggledObject struct {
	Target *Node
	Active bool
}

// ShapeMode selects what a ChangedShape does.
type ShapeMode uint8

const (
	ShapeSet ShapeMode = iota
	ShapeDelete
)

// ShapeChanger sets or deletes blendshapes.
type ShapeChanger struct {
	Inverted bool
	Shapes   []ChangedShape
}

// ChangedShape is one entry of a ShapeChanger. Renderer is the node owning
// the renderer.
type ChangedShape struct {
	Renderer *Node
	Name     string
	Mode     ShapeMode
	Value    float32
}

// MaterialSetter overrides individual material slots.
type MaterialSetter struct {
	Inverted bool
	Slots    []MaterialSlot
}

// MaterialSlot is one entry of a MaterialSetter.
type MaterialSlot struct {
	Renderer *Node
	Slot     int
	Material AssetRef
}

// MaterialSwap replaces a material wherever it is used under Root.
type MaterialSwap struct {
	Inverted bool
	Root     *Node
	Swaps    []SwapPair
}

// SwapPair replaces From with To.
type SwapPair struct {
	From AssetRef
	To   AssetRef
}

// BlendshapeSync mirrors blendshapes of other renderers onto the renderer of
// the node it is declared on.
type BlendshapeSync struct {
	Bindings []SyncBinding
}

// SyncBinding mirrors Source's Shape onto the declaring node's Local shape.
type SyncBinding struct {
	Source *Node
	Shape  string
	Local  string
}

func (*MenuItem) Kind() Kind       { return KindMenuItem }
func (*ObjectToggle) Kind() Kind   { return KindObjectToggle }
func (*ShapeChanger) Kind() Kind   { return KindShapeChanger }
func (*MaterialSetter) Kind() Kind { return KindMaterialSetter }
func (*MaterialSwap) Kind() Kind   { return KindMaterialSwap }
func (*BlendshapeSync) Kind() Kind { return KindBlendshapeSync }
