package scene

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/scenepath"
)

// NodeID is a node's canonical hierarchy path relative to the avatar root.
// It is computed once when the scene is built and is the identity used by
// every compiler structure. The root's ID is the empty string.
type NodeID string

// AssetRef identifies a mesh or material asset.
type AssetRef string

// Node is one element of the hierarchy.
type Node struct {
	ID         NodeID
	Name       string
	Path       *scenepath.Path
	Parent     *Node
	Children   []*Node
	Active     bool
	Renderer   *Renderer
	Components []*Component
	DeclRange  hcl.Range
}

// IsRoot reports whether n is the avatar root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// String returns the node's path, or "<root>" for the avatar root.
func (n *Node) String() string {
	if n.IsRoot() {
		return "<root>"
	}
	return string(n.ID)
}

// Renderer is a skinned mesh renderer. Materials may be rewritten by baking;
// OriginalMaterials is the snapshot taken when the scene was built and is what
// the reference index reports.
type Renderer struct {
	Owner             *Node
	Mesh              AssetRef
	Materials         []AssetRef
	OriginalMaterials []AssetRef
	Shapes            map[string]float32
}

// Weight returns the current weight of a blendshape, zero when unset.
func (r *Renderer) Weight(shape string) float32 {
	return r.Shapes[shape]
}

// Mesh is a mesh asset. BlendShapes are ordered channels; their index is the
// channel index. Source is set on clones and names the asset they came from.
type Mesh struct {
	ID          AssetRef
	Source      AssetRef
	BlendShapes []BlendShape
}

// BlendShape is one channel of a mesh.
type BlendShape struct {
	Name   string
	Deltas []float32
}

// ShapeIndex returns the channel index of the named blendshape, or -1.
func (m *Mesh) ShapeIndex(name string) int {
	for i, bs := range m.BlendShapes {
		if bs.Name == name {
			return i
		}
	}
	return -1
}
