package model

import (
	"strconv"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// ScalarEpsilon is the tolerance under which two scalar values are the same
// value for merging purposes.
const ScalarEpsilon float32 = 1e-4

// ValueKind discriminates Value.
type ValueKind uint8

const (
	ValueScalar ValueKind = iota
	ValueAsset
)

// Value is a property value: either a scalar or an asset reference.
type Value struct {
	Kind   ValueKind
	Scalar float32
	Asset  scene.AssetRef
}

// Scalar returns a scalar value.
func Scalar(f float32) Value {
	return Value{Kind: ValueScalar, Scalar: f}
}

// Bool returns the scalar encoding of a boolean (1 or 0).
func Bool(b bool) Value {
	if b {
		return Scalar(1)
	}
	return Scalar(0)
}

// Asset returns an asset reference value.
func Asset(ref scene.AssetRef) Value {
	return Value{Kind: ValueAsset, Asset: ref}
}

// Truthy interprets a scalar as a boolean, the way active flags are encoded.
func (v Value) Truthy() bool {
	return v.Kind == ValueScalar && v.Scalar > 0.5
}

// Near reports whether v and o are the same value: equal asset references, or
// scalars within ScalarEpsilon.
func (v Value) Near(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == ValueAsset {
		return v.Asset == o.Asset
	}
	return math32.Abs(v.Scalar-o.Scalar) < ScalarEpsilon
}

func (v Value) String() string {
	if v.Kind == ValueAsset {
		return "asset:" + string(v.Asset)
	}
	return strconv.FormatFloat(float64(v.Scalar), 'g', -1, 32)
}
