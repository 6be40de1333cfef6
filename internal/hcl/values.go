package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeShapeWeights evaluates a `shapes` expression into blendshape weights.
// Any object or map literal with numeric values is accepted; a missing
// attribute yields an empty map.
func decodeShapeWeights(expr hcl.Expression) (map[string]float32, error) {
	weights := make(map[string]float32)
	if expr == nil {
		return weights, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return weights, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("shapes must be statically known")
	}

	converted, err := convert.Convert(val, cty.Map(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("cannot convert shapes of type %s to map(number): %w", val.Type().FriendlyName(), err)
	}

	for it := converted.ElementIterator(); it.Next(); {
		k, v := it.Element()
		var w float32
		if err := gocty.FromCtyValue(v, &w); err != nil {
			return nil, fmt.Errorf("shape %q: %w", k.AsString(), err)
		}
		weights[k.AsString()] = w
	}
	return weights, nil
}
