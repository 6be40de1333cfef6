// Package schema holds the gohcl decoding targets for scene files. Node
// bodies are decoded block by block by the loader so that declaration order
// survives across block types; everything else decodes through these structs.
package schema

import "github.com/hashicorp/hcl/v2"

// File is the top-level structure of any scene file.
type File struct {
	Avatars    []*Avatar    `hcl:"avatar,block"`
	Meshes     []*Mesh      `hcl:"mesh,block"`
	Animations []*Animation `hcl:"animation,block"`
	Outputs    []*Output    `hcl:"output,block"`
	Remain     hcl.Body     `hcl:",remain"`
}

// Avatar is the root block. Its body holds `node` blocks.
type Avatar struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Renderer describes the skinned mesh renderer on a node. Shapes is kept as
// an expression and converted with cty so that any numeric map literal works.
type Renderer struct {
	Mesh      string         `hcl:"mesh"`
	Materials []string       `hcl:"materials,optional"`
	Shapes    hcl.Expression `hcl:"shapes,optional"`
}

// MenuItem binds a node to a menu parameter.
type MenuItem struct {
	Parameter string   `hcl:"parameter,optional"`
	Value     *float64 `hcl:"value,optional"`
	Default   bool     `hcl:"default,optional"`
	Reachable *bool    `hcl:"reachable,optional"`
}

// ObjectToggle sets the active state of other nodes.
type ObjectToggle struct {
	Enabled  *bool            `hcl:"enabled,optional"`
	Inverted bool             `hcl:"inverted,optional"`
	Objects  []*ToggledObject `hcl:"object,block"`
}

// ToggledObject is one `object` entry.
type ToggledObject struct {
	Target string `hcl:"target"`
	Active bool   `hcl:"active"`
}

// ShapeChanger sets or deletes blendshapes.
type ShapeChanger struct {
	Enabled  *bool           `hcl:"enabled,optional"`
	Inverted bool            `hcl:"inverted,optional"`
	Shapes   []*ChangedShape `hcl:"shape,block"`
}

// ChangedShape is one `shape` entry.
type ChangedShape struct {
	Renderer string  `hcl:"renderer"`
	Name     string  `hcl:"name"`
	Mode     string  `hcl:"mode,optional"`
	Value    float64 `hcl:"value,optional"`
}

// MaterialSetter overrides material slots.
type MaterialSetter struct {
	Enabled   *bool           `hcl:"enabled,optional"`
	Inverted  bool            `hcl:"inverted,optional"`
	Materials []*MaterialSlot `hcl:"material,block"`
}

// MaterialSlot is one `material` entry.
type MaterialSlot struct {
	Renderer string `hcl:"renderer"`
	Slot     int    `hcl:"slot"`
	Asset    string `hcl:"asset"`
}

// MaterialSwap replaces materials on every renderer under a root.
type MaterialSwap struct {
	Enabled  *bool       `hcl:"enabled,optional"`
	Inverted bool        `hcl:"inverted,optional"`
	Root     string      `hcl:"root,optional"`
	Swaps    []*SwapPair `hcl:"swap,block"`
}

// SwapPair is one `swap` entry.
type SwapPair struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// BlendshapeSync mirrors shapes of another renderer onto this node's renderer.
type BlendshapeSync struct {
	Enabled  *bool          `hcl:"enabled,optional"`
	Bindings []*SyncBinding `hcl:"binding,block"`
}

// SyncBinding is one `binding` entry.
type SyncBinding struct {
	Source string `hcl:"source"`
	Shape  string `hcl:"shape"`
	Local  string `hcl:"local,optional"`
}

// Mesh declares a mesh asset and its blendshape channels.
type Mesh struct {
	ID          string   `hcl:"id,label"`
	BlendShapes []string `hcl:"blendshapes,optional"`
}

// Animation declares a pre-existing clip binding.
type Animation struct {
	Name     string `hcl:"name,label"`
	Path     string `hcl:"path"`
	Property string `hcl:"property"`
}

// Output declares the layer container synthesized layers are merged into.
type Output struct {
	Name    string `hcl:"name,label"`
	Scratch bool   `hcl:"scratch,optional"`
}

// NodeBody is the schema for the body of an avatar or node block. The loader
// uses it with PartialContent so that blocks come back in source order.
var NodeBody = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "active"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node", LabelNames: []string{"name"}},
		{Type: "renderer"},
		{Type: "menu_item"},
		{Type: "object_toggle"},
		{Type: "shape_changer"},
		{Type: "material_setter"},
		{Type: "material_swap"},
		{Type: "blendshape_sync"},
	},
}
