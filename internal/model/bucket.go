package model

import (
	"cogentcore.org/core/base/ordmap"
)

// PropertyBucket holds the baseline and the rules of one property, in
// hierarchy discovery order. Later rules take priority over earlier ones.
type PropertyBucket struct {
	Target   TargetProp
	Baseline Value
	Rules    []*Rule
}

// Add appends r, or folds it into the last rule when the two are merge
// compatible. It reports whether r was appended.
func (b *PropertyBucket) Add(r *Rule) bool {
	if n := len(b.Rules); n > 0 && b.Rules[n-1].MergeCompatible(r) {
		return false
	}
	b.Rules = append(b.Rules, r)
	return true
}

// Evaluate replays the rules over the baseline: the last rule that applies
// under eval wins.
func (b *PropertyBucket) Evaluate(eval func(ControlCondition) bool) Value {
	v := b.Baseline
	for _, r := range b.Rules {
		if r.Applies(eval) {
			v = r.Value
		}
	}
	return v
}

// Last returns the highest-priority rule, or nil for an empty bucket.
func (b *PropertyBucket) Last() *Rule {
	if len(b.Rules) == 0 {
		return nil
	}
	return b.Rules[len(b.Rules)-1]
}

// Dynamic reports whether any rule still depends on a runtime condition.
func (b *PropertyBucket) Dynamic() bool {
	for _, r := range b.Rules {
		if !r.Unconditional() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the bucket.
func (b *PropertyBucket) Clone() *PropertyBucket {
	c := &PropertyBucket{Target: b.Target, Baseline: b.Baseline, Rules: make([]*Rule, len(b.Rules))}
	for i, r := range b.Rules {
		c.Rules[i] = r.Clone()
	}
	return c
}

// Buckets is the set of property buckets of one compilation run, iterated
// in the order properties were first discovered.
type Buckets struct {
	m *ordmap.Map[TargetProp, *PropertyBucket]
}

// NewBuckets returns an empty bucket set.
func NewBuckets() *Buckets {
	return &Buckets{m: ordmap.New[TargetProp, *PropertyBucket]()}
}

// Get returns the bucket for t.
func (bs *Buckets) Get(t TargetProp) (*PropertyBucket, bool) {
	return bs.m.ValueByKeyTry(t)
}

// Has reports whether a bucket for t exists.
func (bs *Buckets) Has(t TargetProp) bool {
	_, ok := bs.m.IndexByKeyTry(t)
	return ok
}

// Ensure returns the bucket for t, creating it with the given baseline on
// first sighting.
func (bs *Buckets) Ensure(t TargetProp, baseline func() Value) *PropertyBucket {
	if b, ok := bs.m.ValueByKeyTry(t); ok {
		return b
	}
	b := &PropertyBucket{Target: t, Baseline: baseline()}
	bs.m.Add(t, b)
	return b
}

// Delete removes the bucket for t and reports whether it existed.
func (bs *Buckets) Delete(t TargetProp) bool {
	return bs.m.DeleteKey(t)
}

// Len returns the number of buckets.
func (bs *Buckets) Len() int {
	return bs.m.Len()
}

// All returns the buckets in discovery order. The slice is a snapshot; the
// buckets are shared.
func (bs *Buckets) All() []*PropertyBucket {
	return bs.m.Values()
}

// Targets returns the bucket keys in discovery order.
func (bs *Buckets) Targets() []TargetProp {
	return bs.m.Keys()
}

// Clone returns a deep copy of the set.
func (bs *Buckets) Clone() *Buckets {
	c := NewBuckets()
	for _, b := range bs.All() {
		c.m.Add(b.Target, b.Clone())
	}
	return c
}
