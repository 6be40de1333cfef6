package integration_tests

import (
	"testing"

	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/specialistvlad/reactbake/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fxOutput = `
output "FX" {
  scratch = true
}
`

// TestMenuToggles_LastRuleWins compiles two menu items toggling the same
// object in opposite directions.
func TestMenuToggles_LastRuleWins(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"avatar.hcl": `
avatar "A" {
  node "Menu" {
    node "Hat" {
      menu_item {
        parameter = "Hat"
        value     = 1
        default   = true
      }
      object_toggle {
        object {
          target = "G"
          active = true
        }
      }
    }
    node "Sad" {
      menu_item {
        parameter = "Sad"
        value     = 1
      }
      object_toggle {
        object {
          target = "G"
          active = false
        }
      }
    }
  }
  node "G" {
    active = false
  }
}
`,
		"output.hcl": fxOutput,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	layer := testutil.RequireLayer(t, result, "G", "m_IsActive")
	assert.Equal(t, []string{"0", "1", "0"}, testutil.StateValues(layer))
	assert.Equal(t, "Menu/Hat#object_toggle[0]", layer.States[1].Source)
	assert.Equal(t, "Menu/Sad#object_toggle[0]", layer.States[2].Source)

	require.NotEmpty(t, layer.States[0].Transitions)
	assert.Equal(t, app.TransitionReport{To: "Rule 2", When: []string{"Sad >= 0.5", "Sad < 1.5"}}, layer.States[0].Transitions[0])

	testutil.AssertValue(t, result.Report.Defaults, "G", "m_IsActive", "1")
	assert.Empty(t, result.Report.Baked)
	assert.Equal(t, []app.ParameterReport{
		{Name: "Hat", Kind: "menu", Default: 1},
		{Name: "Sad", Kind: "menu", Default: 0},
	}, result.Report.Parameters)
	assert.Empty(t, result.Report.Warnings)
	assert.Contains(t, result.LogOutput, "Scene loaded successfully.")
}

// TestUnconditionalDelete_RemovesChannel compiles a permanent blendshape
// deletion down to a cloned mesh and no layers.
func TestUnconditionalDelete_RemovesChannel(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"avatar.hcl": `
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
mesh "mesh.body" {
  blendshapes = ["Smile", "Open"]
}
`,
		"output.hcl": fxOutput,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Len(t, result.Report.Meshes, 1)
	mesh := result.Report.Meshes[0]
	assert.Equal(t, "Body", mesh.Renderer)
	assert.Equal(t, "mesh.body", mesh.Source)
	assert.NotEqual(t, mesh.Source, mesh.Mesh)
	assert.Equal(t, []string{"Smile"}, mesh.Removed)
	assert.Empty(t, result.Report.Layers)
	assert.Empty(t, result.Report.Baked)
}

// TestAnimatedShape_IsNotDeleted keeps a channel that an existing clip still
// drives.
func TestAnimatedShape_IsNotDeleted(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"avatar.hcl": `
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
}
mesh "mesh.body" {
  blendshapes = ["Smile"]
}
animation "Grin" {
  path     = "Body"
  property = "blendShape.Smile"
}
`,
		"output.hcl": fxOutput,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Empty(t, result.Report.Meshes)
}

// TestBlendshapeSync_MirrorsRules compiles a menu-driven shape that a second
// renderer mirrors under a different local name.
func TestBlendshapeSync_MirrorsRules(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"avatar.hcl": `
avatar "A" {
  node "R1" {
    renderer { mesh = "mesh.face" }
  }
  node "R2" {
    renderer { mesh = "mesh.body" }
    blendshape_sync {
      binding {
        source = "R1"
        shape  = "Open"
        local  = "OpenMouth"
      }
    }
  }
  node "Talk" {
    menu_item {
      parameter = "Talk"
    }
    shape_changer {
      shape {
        renderer = "R1"
        name     = "Open"
        value    = 80
      }
    }
  }
}
`,
		"meshes.hcl": `
mesh "mesh.face" {
  blendshapes = ["Open"]
}
mesh "mesh.body" {
  blendshapes = ["OpenMouth"]
}
`,
		"output.hcl": fxOutput,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	source := testutil.RequireLayer(t, result, "R1", "blendShape.Open")
	mirror := testutil.RequireLayer(t, result, "R2", "blendShape.OpenMouth")
	assert.Equal(t, []string{"0", "80"}, testutil.StateValues(source))
	assert.Equal(t, []string{"0", "80"}, testutil.StateValues(mirror))
	assert.Equal(t, source.States[1].Transitions, mirror.States[1].Transitions)
}

// TestConstantRules_AreBaked writes unconditional rules straight into the
// scene instead of synthesizing layers.
func TestConstantRules_AreBaked(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"avatar.hcl": `
avatar "A" {
  node "Setup" {
    object_toggle {
      object {
        target = "Hat"
        active = false
      }
    }
    material_setter {
      material {
        renderer = "Body"
        slot     = 0
        asset    = "mat.fur"
      }
    }
  }
  node "Hat" {}
  node "Body" {
    renderer {
      mesh      = "mesh.body"
      materials = ["mat.skin"]
    }
  }
}
mesh "mesh.body" {
  blendshapes = ["Smile"]
}
`,
		"output.hcl": fxOutput,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Empty(t, result.Report.Layers)
	testutil.AssertValue(t, result.Report.Baked, "Hat", "m_IsActive", "0")
	testutil.AssertValue(t, result.Report.Baked, "Body", "m_Materials.Array.data[0]", "asset:mat.fur")
	assert.Empty(t, result.Report.Parameters)
}
