package scene

import "sync"

// menuParameterPrefix prefixes parameters generated for menu items that do
// not name one.
const menuParameterPrefix = "__reactbake/menu/"

// Scene is the runtime hierarchy of one avatar. It is safe for concurrent
// reads; mesh assets are additionally guarded for concurrent writes.
type Scene struct {
	Name  string
	root  *Node
	order []*Node
	nodes map[NodeID]*Node

	meshMu sync.RWMutex
	meshes map[AssetRef]*Mesh
}

var (
	_ Walker         = (*Scene)(nil)
	_ Menu           = (*Scene)(nil)
	_ ReferenceIndex = (*Scene)(nil)
	_ MeshStore      = (*Scene)(nil)
)

// Root returns the avatar root.
func (s *Scene) Root() *Node {
	return s.root
}

// Nodes returns every non-root node in depth-first discovery order.
func (s *Scene) Nodes() []*Node {
	return s.order
}

// Lookup returns the node with the given ID.
func (s *Scene) Lookup(id NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// MenuItem implements Menu. The selected window of a menu item with value v is
// [v-0.5, v+0.5), which covers both bool and int parameters. An item that is
// not reachable from an installed menu can never change, so its binding is
// constant at its initial value.
func (s *Scene) MenuItem(n *Node) (MenuBinding, bool) {
	for _, c := range n.Components {
		item, ok := c.Payload.(*MenuItem)
		if !ok || !c.Enabled {
			continue
		}
		param := item.Parameter
		if param == "" {
			param = menuParameterPrefix + string(n.ID)
		}
		var initial float32
		if item.Default {
			initial = item.Value
		}
		return MenuBinding{
			Node:      n,
			Parameter: param,
			Lo:        item.Value - 0.5,
			Hi:        item.Value + 0.5,
			Initial:   initial,
			Constant:  !item.Reachable,
		}, true
	}
	return MenuBinding{}, false
}

// References implements ReferenceIndex.
func (s *Scene) References(n *Node) []AssetRef {
	if n == nil || n.Renderer == nil {
		return nil
	}
	return n.Renderer.OriginalMaterials
}

// Mesh implements MeshStore.
func (s *Scene) Mesh(ref AssetRef) (*Mesh, bool) {
	s.meshMu.RLock()
	defer s.meshMu.RUnlock()
	m, ok := s.meshes[ref]
	return m, ok
}

// PutMesh implements MeshStore. An existing mesh with the same ID is replaced.
func (s *Scene) PutMesh(m *Mesh) {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	s.meshes[m.ID] = m
}

// Descendants returns root and every node below it in discovery order.
func (s *Scene) Descendants(root *Node) []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)
	return out
}
