package scene

// Walker exposes the hierarchy to the compiler.
type Walker interface {
	// Root returns the avatar root.
	Root() *Node
	// Nodes returns every non-root node in depth-first discovery order. This
	// order defines rule priority and must be stable across calls.
	Nodes() []*Node
	// Lookup returns the node with the given ID.
	Lookup(id NodeID) (*Node, bool)
}

// MenuBinding is what the menu collaborator knows about a menu item: the
// parameter driving it and the window of values that mean "selected".
type MenuBinding struct {
	Node      *Node
	Parameter string
	Lo, Hi    float32
	Initial   float32
	Constant  bool
}

// Menu resolves menu items to their driving parameters.
type Menu interface {
	// MenuItem returns the binding of the enabled menu item declared
	// directly on n, if any.
	MenuItem(n *Node) (MenuBinding, bool)
}

// ReferenceIndex resolves an object to the asset references it holds.
type ReferenceIndex interface {
	// References returns the original (pre-override) material references of
	// the renderer on n, in slot order. Nodes without a renderer return nil.
	References(n *Node) []AssetRef
}

// MeshStore holds mesh assets.
type MeshStore interface {
	Mesh(ref AssetRef) (*Mesh, bool)
	PutMesh(m *Mesh)
}
