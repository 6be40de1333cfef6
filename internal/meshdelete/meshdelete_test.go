package meshdelete

import (
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/reactbake/internal/collect"
	"github.com/specialistvlad/reactbake/internal/condition"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/fold"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/specialistvlad/reactbake/internal/scene/scenetest"
	"github.com/specialistvlad/reactbake/internal/syncgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnimated map[model.TargetProp]bool

func (f fakeAnimated) Animates(id scene.NodeID, property string) bool {
	return f[model.TargetProp{Object: id, Property: property}]
}

type fixture struct {
	scene   *scene.Scene
	buckets *model.Buckets
	graph   *syncgraph.Graph
}

// prepare runs the stages that precede deletion.
func prepare(t *testing.T, src string) fixture {
	t.Helper()
	ctx := scenetest.Context()
	s := scenetest.Load(t, src)
	buckets, diags := collect.Collect(ctx, s, condition.NewResolver(s, ctxlog.FromContext(ctx)))
	require.Empty(t, diags)
	g, err := syncgraph.Build(s)
	require.NoError(t, err)
	syncgraph.NewPropagator(g, s, s).Propagate(ctx, buckets)
	fold.Fold(ctx, buckets, nil)
	return fixture{scene: s, buckets: buckets, graph: g}
}

const unconditionalDelete = `
avatar "A" {
  node "Body" {
    renderer {
      mesh   = "mesh.body"
      shapes = { Smile = 30 }
    }
    shape_changer {
      shape {
        renderer = "Body"
        name     = "Smile"
        mode     = "delete"
      }
    }
  }
}

mesh "mesh.body" { blendshapes = ["Open", "Smile", "Blink"] }
`

func TestExecute_UnconditionalDeleteRemovesChannel(t *testing.T) {
	f := prepare(t, unconditionalDelete)
	x := New(f.scene, f.scene, 0)

	removals, diags := x.Execute(scenetest.Context(), f.buckets, f.graph, nil)

	require.Empty(t, diags)
	require.Len(t, removals, 1)
	assert.Equal(t, []string{"Smile"}, removals[0].Shapes)
	assert.Equal(t, scene.AssetRef("mesh.body"), removals[0].Source)
	assert.Equal(t, 1, x.Clones())
	assert.Zero(t, f.buckets.Len(), "both the weight and the marker bucket are purged")

	body := scenetest.Node(t, f.scene, "Body")
	assert.Equal(t, removals[0].Mesh, body.Renderer.Mesh)
	assert.NotContains(t, body.Renderer.Shapes, "Smile")

	clone, ok := f.scene.Mesh(body.Renderer.Mesh)
	require.True(t, ok)
	assert.Equal(t, -1, clone.ShapeIndex("Smile"))
	assert.Equal(t, []string{"Open", "Blink"}, names(clone))
	assert.Equal(t, scene.AssetRef("mesh.body"), clone.Source)

	orig, ok := f.scene.Mesh("mesh.body")
	require.True(t, ok)
	assert.Equal(t, []string{"Open", "Smile", "Blink"}, names(orig), "the source asset is never mutated")
}

func TestExecute_ConditionalDeleteIsKept(t *testing.T) {
	f := prepare(t, `
avatar "A" {
  node "Body" {
    renderer { mesh = "mesh.body" }
  }
  node "NoSmile" {
    menu_item {
      parameter = "NoSmile"
    }
    shape_changer {
      shape {
        renderer = "Body"
        name     = "Smile"
        mode     = "delete"
      }
    }
  }
}
mesh "mesh.body" { blendshapes = ["Smile"] }
`)
	x := New(f.scene, f.scene, 0)

	removals, diags := x.Execute(scenetest.Context(), f.buckets, f.graph, nil)

	assert.Empty(t, diags)
	assert.Empty(t, removals)
	assert.Zero(t, x.Clones())
	assert.True(t, f.buckets.Has(model.ShapeProp("Body", "Smile")))
	assert.Equal(t, scene.AssetRef("mesh.body"), scenetest.Node(t, f.scene, "Body").Renderer.Mesh)
}

func TestExecute_ConsumedShapeIsKept(t *testing.T) {
	t.Run("sync destination is animated", func(t *testing.T) {
		f := prepare(t, `
avatar "A" {
  node "Body" {
    renderer { mesh = "mesh.body" }
    shape_changer {
      shape {
        renderer = "Body"
        name     = "Smile"
        mode     = "delete"
      }
    }
  }
  node "Face" {
    renderer { mesh = "mesh.face" }
    blendshape_sync {
      binding {
        source = "Body"
        shape  = "Smile"
      }
    }
  }
  node "Grin" {
    menu_item {
      parameter = "Grin"
    }
    shape_changer {
      shape {
        renderer = "Face"
        name     = "Smile"
        value    = 100
      }
    }
  }
}
mesh "mesh.body" { blendshapes = ["Smile"] }
mesh "mesh.face" { blendshapes = ["Smile"] }
`)
		removals, _ := New(f.scene, f.scene, 0).Execute(scenetest.Context(), f.buckets, f.graph, nil)
		assert.Empty(t, removals)
	})

	t.Run("existing clip drives the weight", func(t *testing.T) {
		f := prepare(t, unconditionalDelete)
		animated := fakeAnimated{model.ShapeProp("Body", "Smile"): true}
		removals, _ := New(f.scene, f.scene, 0).Execute(scenetest.Context(), f.buckets, f.graph, animated)
		assert.Empty(t, removals)
		assert.True(t, f.buckets.Has(model.ShapeProp("Body", "Smile")))
	})
}

const sharedGlove = `
avatar "A" {
  node "Left" {
    renderer { mesh = "mesh.glove" }
  }
  node "Right" {
    renderer { mesh = "mesh.glove" }
  }
  node "Strip" {
    shape_changer {
      shape {
        renderer = "Left"
        name     = "Fur"
        mode     = "delete"
      }
      shape {
        renderer = "Right"
        name     = "Fur"
        mode     = "delete"
      }
    }
  }
}
mesh "mesh.glove" { blendshapes = ["Fur", "Fist"] }
`

func TestExecute_SharedMeshIsClonedOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			f := prepare(t, sharedGlove)
			x := New(f.scene, f.scene, workers)

			removals, diags := x.Execute(scenetest.Context(), f.buckets, f.graph, nil)

			require.Empty(t, diags)
			require.Len(t, removals, 2)
			assert.Equal(t, scene.NodeID("Left"), removals[0].Renderer, "results keep discovery order")
			assert.Equal(t, scene.NodeID("Right"), removals[1].Renderer)
			assert.Equal(t, 1, x.Clones())
			assert.Equal(t, removals[0].Mesh, removals[1].Mesh)
			assert.Equal(t, removals[0].Mesh, scenetest.Node(t, f.scene, "Right").Renderer.Mesh)
		})
	}
}

func TestClone_ConcurrentCallersShareOneClone(t *testing.T) {
	s := scenetest.Load(t, unconditionalDelete)
	x := New(s, s, 0)
	src, ok := s.Mesh("mesh.body")
	require.True(t, ok)

	const workers = 16
	results := make([]*scene.Mesh, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := x.clone(src, []int{2, 0})
			assert.NoError(t, err)
			results[i] = m
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, x.Clones())
	for _, m := range results {
		assert.Same(t, results[0], m)
	}
	assert.Equal(t, []string{"Smile"}, names(results[0]))
}

func TestClone_RemovalSetsAreClonedSeparately(t *testing.T) {
	s := scenetest.Load(t, unconditionalDelete)
	x := New(s, s, 0)
	src, ok := s.Mesh("mesh.body")
	require.True(t, ok)

	noSmile, err := x.clone(src, []int{1})
	require.NoError(t, err)
	noBlink, err := x.clone(src, []int{2})
	require.NoError(t, err)
	again, err := x.clone(src, []int{1})
	require.NoError(t, err)

	assert.Equal(t, 2, x.Clones())
	assert.NotSame(t, noSmile, noBlink)
	assert.Same(t, noSmile, again)
	assert.Equal(t, []string{"Open", "Blink"}, names(noSmile))
	assert.Equal(t, []string{"Open", "Smile"}, names(noBlink))
}

func names(m *scene.Mesh) []string {
	out := make([]string, len(m.BlendShapes))
	for i, bs := range m.BlendShapes {
		out[i] = bs.Name
	}
	return out
}
