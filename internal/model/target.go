package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/reactbake/internal/scene"
)

// Property names understood by the compiler.
const (
	PropActive         = "m_IsActive"
	blendShapePrefix   = "blendShape."
	deletedShapePrefix = "deletedShape."
	materialSlotPrefix = "m_Materials.Array.data["
)

// activeProxyPrefix prefixes the proxy parameter mirroring a node's active
// state.
const activeProxyPrefix = "__reactbake/active/"

// TargetProp identifies one animatable property. It is comparable and used as
// a map key.
type TargetProp struct {
	Object   scene.NodeID
	Property string
}

// ActiveProp is the active flag of a node.
func ActiveProp(id scene.NodeID) TargetProp {
	return TargetProp{Object: id, Property: PropActive}
}

// ShapeProp is the weight of a blendshape on the renderer of a node.
func ShapeProp(id scene.NodeID, shape string) TargetProp {
	return TargetProp{Object: id, Property: blendShapePrefix + shape}
}

// DeletedShapeProp is the marker recording that a blendshape is deleted.
func DeletedShapeProp(id scene.NodeID, shape string) TargetProp {
	return TargetProp{Object: id, Property: deletedShapePrefix + shape}
}

// MaterialProp is one material slot of the renderer on a node.
func MaterialProp(id scene.NodeID, slot int) TargetProp {
	return TargetProp{Object: id, Property: materialSlotPrefix + strconv.Itoa(slot) + "]"}
}

// IsActive reports whether t is a node's active flag.
func (t TargetProp) IsActive() bool {
	return t.Property == PropActive
}

// Shape returns the blendshape name if t is a blendshape weight.
func (t TargetProp) Shape() (string, bool) {
	return strings.CutPrefix(t.Property, blendShapePrefix)
}

// DeletedShape returns the blendshape name if t is a delete marker.
func (t TargetProp) DeletedShape() (string, bool) {
	return strings.CutPrefix(t.Property, deletedShapePrefix)
}

// MaterialSlot returns the slot index if t is a material slot.
func (t TargetProp) MaterialSlot() (int, bool) {
	rest, ok := strings.CutPrefix(t.Property, materialSlotPrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
	if err != nil {
		return 0, false
	}
	return idx, true
}

func (t TargetProp) String() string {
	return fmt.Sprintf("%s:%s", t.Object, t.Property)
}

// ActiveProxyParameter names the parameter that mirrors a node's active
// state at runtime.
func ActiveProxyParameter(id scene.NodeID) string {
	return activeProxyPrefix + string(id)
}
