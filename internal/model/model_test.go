package model

import (
	"testing"

	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuCond(t *testing.T, param string, initial float32) ControlCondition {
	t.Helper()
	c, err := NewCondition(ConditionMenu, param, 0.5, 1.5, initial, scene.NodeID("Menu/"+param))
	require.NoError(t, err)
	return c
}

func TestNewCondition_RejectsEmptyWindow(t *testing.T) {
	_, err := NewCondition(ConditionMenu, "Hat", 1, 1, 0, "Menu/Hat")
	assert.ErrorContains(t, err, "empty window")

	_, err = NewCondition(ConditionMenu, "Hat", 2, 1, 0, "Menu/Hat")
	assert.Error(t, err)
}

func TestActiveCondition(t *testing.T) {
	c := ActiveCondition("Body/Hat", true)

	assert.Equal(t, ConditionActive, c.Kind)
	assert.Equal(t, "__reactbake/active/Body/Hat", c.Parameter)
	assert.True(t, c.Unbounded())
	assert.True(t, c.InitiallySatisfied())
	assert.True(t, c.Satisfied(1))
	assert.False(t, c.Satisfied(0))
	assert.True(t, c.Satisfied(1e30))

	assert.False(t, ActiveCondition("Body/Hat", false).InitiallySatisfied())
}

func TestTargetProp_Accessors(t *testing.T) {
	shape, ok := ShapeProp("Body", "Smile").Shape()
	require.True(t, ok)
	assert.Equal(t, "Smile", shape)

	_, ok = DeletedShapeProp("Body", "Smile").Shape()
	assert.False(t, ok)
	marker, ok := DeletedShapeProp("Body", "Smile").DeletedShape()
	require.True(t, ok)
	assert.Equal(t, "Smile", marker)

	slot, ok := MaterialProp("Body", 3).MaterialSlot()
	require.True(t, ok)
	assert.Equal(t, 3, slot)
	assert.Equal(t, "Body:m_Materials.Array.data[3]", MaterialProp("Body", 3).String())

	assert.True(t, ActiveProp("Hat").IsActive())
	assert.Equal(t, ActiveProp("Hat"), TargetProp{Object: "Hat", Property: PropActive})
}

func TestValue_Near(t *testing.T) {
	assert.True(t, Scalar(80).Near(Scalar(80.00001)))
	assert.False(t, Scalar(80).Near(Scalar(80.1)))
	assert.True(t, Asset("mat.red").Near(Asset("mat.red")))
	assert.False(t, Asset("mat.red").Near(Asset("mat.blue")))
	assert.False(t, Scalar(0).Near(Asset("")))
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Bool(false).Truthy())
}

func TestBucket_MergeCollapse(t *testing.T) {
	target := ShapeProp("Body", "Smile")
	conds := []ControlCondition{menuCond(t, "Talk", 0)}
	b := &PropertyBucket{Target: target, Baseline: Scalar(0)}

	first := &Rule{Target: target, Value: Scalar(80), Conditions: conds}
	second := &Rule{Target: target, Value: Scalar(80.00002), Conditions: []ControlCondition{menuCond(t, "Talk", 0)}}

	assert.True(t, b.Add(first))
	assert.False(t, b.Add(second), "structurally identical adjacent rule must fold")
	require.Len(t, b.Rules, 1)
	assert.Same(t, first, b.Rules[0])

	t.Run("different inversion does not merge", func(t *testing.T) {
		assert.True(t, b.Add(&Rule{Target: target, Value: Scalar(80), Conditions: conds, Inverted: true}))
		assert.Len(t, b.Rules, 2)
	})

	t.Run("delete and set never merge", func(t *testing.T) {
		b := &PropertyBucket{Target: target}
		assert.True(t, b.Add(&Rule{Target: target, Value: Scalar(0)}))
		assert.True(t, b.Add(&Rule{Target: target, Value: Scalar(0), Delete: true}))
		assert.Len(t, b.Rules, 2)
	})

	t.Run("only the immediately preceding rule is considered", func(t *testing.T) {
		b := &PropertyBucket{Target: target}
		a := &Rule{Target: target, Value: Scalar(1), Conditions: conds}
		assert.True(t, b.Add(a))
		assert.True(t, b.Add(&Rule{Target: target, Value: Scalar(2), Conditions: conds}))
		assert.True(t, b.Add(a.Clone()))
		assert.Len(t, b.Rules, 3)
	})
}

func TestBucket_EvaluateLastMatchWins(t *testing.T) {
	target := ActiveProp("G")
	hat := menuCond(t, "Hat", 1)
	sad := menuCond(t, "Sad", 0)
	b := &PropertyBucket{
		Target:   target,
		Baseline: Bool(false),
		Rules: []*Rule{
			{Target: target, Value: Bool(true), Conditions: []ControlCondition{hat}},
			{Target: target, Value: Bool(false), Conditions: []ControlCondition{sad}},
		},
	}

	initial := func(c ControlCondition) bool { return c.InitiallySatisfied() }
	assert.Equal(t, Bool(true), b.Evaluate(initial))

	allTrue := func(ControlCondition) bool { return true }
	assert.Equal(t, Bool(false), b.Evaluate(allTrue), "the later rule wins when both hold")

	allFalse := func(ControlCondition) bool { return false }
	assert.Equal(t, Bool(false), b.Evaluate(allFalse), "baseline stands when nothing holds")
}

func TestRule_AppliesInverted(t *testing.T) {
	r := &Rule{Value: Scalar(1), Conditions: []ControlCondition{menuCond(t, "Hat", 0)}, Inverted: true}
	assert.True(t, r.Applies(func(ControlCondition) bool { return false }))
	assert.False(t, r.Applies(func(ControlCondition) bool { return true }))

	never := &Rule{Value: Scalar(1), Inverted: true}
	assert.False(t, never.Unconditional())
	assert.False(t, never.Applies(func(ControlCondition) bool { return true }))
}

func TestRule_CloneIsIndependent(t *testing.T) {
	r := &Rule{Value: Scalar(1), Conditions: []ControlCondition{menuCond(t, "Hat", 0)}}
	c := r.Clone()
	c.Conditions[0].Initial = 1
	assert.Equal(t, float32(0), r.Conditions[0].Initial)
	assert.False(t, r.Equal(c))
}

func TestBuckets_DiscoveryOrder(t *testing.T) {
	bs := NewBuckets()
	zero := func() Value { return Scalar(0) }

	bs.Ensure(ActiveProp("c"), zero)
	bs.Ensure(ActiveProp("a"), zero)
	bs.Ensure(ActiveProp("b"), zero)
	again := bs.Ensure(ActiveProp("c"), func() Value { return Scalar(9) })

	assert.Equal(t, Scalar(0), again.Baseline, "baseline is only seeded on first sighting")
	assert.Equal(t, []TargetProp{ActiveProp("c"), ActiveProp("a"), ActiveProp("b")}, bs.Targets())

	assert.True(t, bs.Delete(ActiveProp("a")))
	assert.False(t, bs.Delete(ActiveProp("a")))
	assert.Equal(t, []TargetProp{ActiveProp("c"), ActiveProp("b")}, bs.Targets())

	clone := bs.Clone()
	b, _ := clone.Get(ActiveProp("c"))
	b.Baseline = Scalar(5)
	orig, _ := bs.Get(ActiveProp("c"))
	assert.Equal(t, Scalar(0), orig.Baseline)
}
