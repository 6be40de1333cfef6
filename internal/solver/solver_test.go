package solver

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/specialistvlad/reactbake/internal/scene/scenetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuCond(t *testing.T, param string, value, initial float32) model.ControlCondition {
	t.Helper()
	c, err := model.NewCondition(model.ConditionMenu, param, value-0.5, value+0.5, initial, "Menu")
	require.NoError(t, err)
	return c
}

func toggle(bs *model.Buckets, id scene.NodeID, baseline, value bool, conds ...model.ControlCondition) {
	b := bs.Ensure(model.ActiveProp(id), func() model.Value { return model.Bool(baseline) })
	b.Rules = append(b.Rules, &model.Rule{Target: b.Target, Value: model.Bool(value), Conditions: conds})
}

func TestSolve_MenuTogglesSettleActive(t *testing.T) {
	bs := model.NewBuckets()
	toggle(bs, "G", false, true, menuCond(t, "Hat", 1, 1))
	toggle(bs, "G", false, false, menuCond(t, "Sad", 1, 0))

	sol, diags := New(0).Solve(scenetest.Context(), bs, nil)

	assert.Empty(t, diags)
	assert.True(t, sol.Converged)
	assert.True(t, sol.Table["G"])
	assert.Equal(t, model.Bool(true), sol.Defaults[model.ActiveProp("G")])

	b, _ := bs.Get(model.ActiveProp("G"))
	assert.Len(t, b.Rules, 2, "solving must not remove rules")
}

func TestSolve_ChainSettlesAndWritesBack(t *testing.T) {
	bs := model.NewBuckets()
	// A turns on from the menu; B follows A; C follows B.
	toggle(bs, "A", false, true, menuCond(t, "On", 1, 1))
	toggle(bs, "B", false, true, model.ActiveCondition("A", false))
	toggle(bs, "C", false, true, model.ActiveCondition("B", false))
	shape := model.ShapeProp("Body", "Smile")
	sb := bs.Ensure(shape, func() model.Value { return model.Scalar(0) })
	sb.Rules = append(sb.Rules, &model.Rule{Target: shape, Value: model.Scalar(0.8), Conditions: []model.ControlCondition{model.ActiveCondition("C", false)}})

	sol, diags := New(0).Solve(scenetest.Context(), bs, nil)

	require.Empty(t, diags)
	assert.Equal(t, Table{"A": true, "B": true, "C": true}, sol.Table)
	assert.Equal(t, model.Scalar(0.8), sol.Defaults[shape])

	assert.Equal(t, float32(1), sb.Rules[0].Conditions[0].Initial)
	b, _ := bs.Get(model.ActiveProp("C"))
	assert.Equal(t, float32(1), b.Rules[0].Conditions[0].Initial)
}

func TestSolve_NonConvergence(t *testing.T) {
	bs := model.NewBuckets()
	// A follows B and B follows not-A: the table oscillates forever.
	toggle(bs, "A", false, true, model.ActiveCondition("B", true))
	toggle(bs, "B", true, false, model.ActiveCondition("A", false))

	root := &scene.Node{ID: "", Name: "Avatar", DeclRange: hcl.Range{Filename: "scene.hcl"}}
	sol, diags := New(4).Solve(scenetest.Context(), bs, root)

	assert.False(t, sol.Converged)
	assert.Equal(t, 4, sol.Iterations)
	require.Len(t, diags, 1)
	assert.Equal(t, hcl.DiagWarning, diags[0].Severity)
	require.NotNil(t, diags[0].Subject)
	assert.Equal(t, "scene.hcl", diags[0].Subject.Filename)
	assert.Len(t, sol.Table, 2, "the last computed table is kept")
}

func TestNew_DefaultBound(t *testing.T) {
	assert.Equal(t, DefaultMaxIterations, New(0).maxIterations)
	assert.Equal(t, DefaultMaxIterations, New(-3).maxIterations)
	assert.Equal(t, 2, New(2).maxIterations)
}
