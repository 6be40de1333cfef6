package animledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/reactbake/internal/animator"
	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/specialistvlad/reactbake/internal/scenepath"
)

// StateRef is one registered state.
type StateRef struct {
	Layer string
	State string
}

// Memory is the in-memory ledger. The zero value is not usable; use New or
// FromModel.
//
// It keeps three independent maps:
//   - clips: model.TargetProp to the name of the clip driving it
//   - layers: container name to the layers merged into it
//   - states: node ID to the states registered against it
type Memory struct {
	clips  sync.Map
	layers sync.Map
	states sync.Map

	mu     sync.Mutex
	output *animator.Container
}

var (
	_ animator.Sink     = (*Memory)(nil)
	_ animator.Remapper = (*Memory)(nil)
)

// New returns an empty ledger with the given output container, which may be
// nil.
func New(output *animator.Container) *Memory {
	return &Memory{output: output}
}

// FromModel seeds a ledger from the animations and outputs declared in a
// scene document. The first output is the designated container; any others
// are ignored.
func FromModel(ctx context.Context, m *config.Model) (*Memory, error) {
	logger := ctxlog.FromContext(ctx)

	var output *animator.Container
	if len(m.Outputs) > 0 {
		o := m.Outputs[0]
		output = &animator.Container{Name: o.Name, Scratch: o.Scratch}
		for _, extra := range m.Outputs[1:] {
			logger.Warn("Ignoring additional output container.", "output", extra.Name, "designated", o.Name)
		}
	}

	mem := New(output)
	for _, a := range m.Animations {
		path, err := scenepath.Parse(a.Path)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", a.Name, err)
		}
		mem.Record(a.Name, scene.NodeID(path.String()), a.Property)
	}
	logger.Debug("Animation ledger seeded.", "clips", len(m.Animations), "output", output != nil)
	return mem, nil
}

// Record notes that clip drives property on the node at id.
func (m *Memory) Record(clip string, id scene.NodeID, property string) {
	m.clips.Store(model.TargetProp{Object: id, Property: property}, clip)
}

// Animates reports whether a recorded clip drives property on id.
func (m *Memory) Animates(id scene.NodeID, property string) bool {
	_, ok := m.clips.Load(model.TargetProp{Object: id, Property: property})
	return ok
}

// OutputContainer implements animator.Sink.
func (m *Memory) OutputContainer() (*animator.Container, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output, m.output != nil
}

// Merge implements animator.Sink. A layer with the same name as an already
// merged one replaces it.
func (m *Memory) Merge(c *animator.Container, layers []*animator.Layer) error {
	if c == nil {
		return errors.New("merge into nil container")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var merged []*animator.Layer
	if v, ok := m.layers.Load(c.Name); ok {
		merged = slices.Clone(v.([]*animator.Layer))
	}
	for _, l := range layers {
		idx := slices.IndexFunc(merged, func(x *animator.Layer) bool { return x.Name == l.Name })
		if idx >= 0 {
			merged[idx] = l
			continue
		}
		merged = append(merged, l)
	}
	m.layers.Store(c.Name, merged)
	return nil
}

// Layers returns the layers merged into the named container.
func (m *Memory) Layers(container string) []*animator.Layer {
	v, ok := m.layers.Load(container)
	if !ok {
		return nil
	}
	return slices.Clone(v.([]*animator.Layer))
}

// RegisterState implements animator.Remapper.
func (m *Memory) RegisterState(path scene.NodeID, layer, state string) {
	ref := StateRef{Layer: layer, State: state}
	m.mu.Lock()
	defer m.mu.Unlock()

	var refs []StateRef
	if v, ok := m.states.Load(path); ok {
		refs = v.([]StateRef)
	}
	if slices.Contains(refs, ref) {
		return
	}
	m.states.Store(path, append(slices.Clone(refs), ref))
}

// States returns the states registered against path.
func (m *Memory) States(path scene.NodeID) []StateRef {
	v, ok := m.states.Load(path)
	if !ok {
		return nil
	}
	return slices.Clone(v.([]StateRef))
}
