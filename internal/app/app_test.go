package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const hatScene = `
avatar "Kitsune" {
  node "Hat" {
    menu_item {
      parameter = "Hat"
      default   = true
    }
    object_toggle {
      object {
        target = "HatMesh"
        active = true
      }
    }
  }
  node "HatMesh" {
    active = false
  }
}

output "FX" {
  scratch = true
}
`

func writeScene(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.hcl"), []byte(src), 0o600))
	return dir
}

func testConfig(scenePath string) *Config {
	cfg := DefaultConfig()
	cfg.ScenePath = scenePath
	return &cfg
}

func TestRun_WritesYAMLReport(t *testing.T) {
	a, out, _ := SetupAppTest(t, testConfig(writeScene(t, hatScene)))

	require.NoError(t, a.Run(context.Background()))

	var report Report
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &report))
	assert.Equal(t, "Kitsune", report.Avatar)
	require.Len(t, report.Layers, 1)
	assert.Equal(t, "HatMesh", report.Layers[0].Object)
	assert.Equal(t, "m_IsActive", report.Layers[0].Property)
	require.Len(t, report.Layers[0].States, 2)
	assert.Equal(t, "Hat#object_toggle[0]", report.Layers[0].States[1].Source)
	assert.Equal(t, []ValueReport{{Object: "HatMesh", Property: "m_IsActive", Value: "1"}}, report.Defaults)
	assert.Equal(t, []ParameterReport{{Name: "Hat", Kind: "menu", Default: 1}}, report.Parameters)
}

func TestRun_WritesJSONReport(t *testing.T) {
	cfg := testConfig(writeScene(t, hatScene))
	cfg.OutputFormat = "json"
	a, out, _ := SetupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
	assert.Equal(t, uint64(1), report.Generation)
	assert.Len(t, report.Layers, 1)
}

func TestRun_Errors(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, testConfig(writeScene(t, `avatar "A" {`)))
		err := a.Run(context.Background())
		assert.ErrorContains(t, err, "failed to load scene")
	})

	t.Run("missing output container", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, testConfig(writeScene(t, `avatar "A" {}`)))
		err := a.Run(context.Background())
		assert.ErrorContains(t, err, "output layer container")
	})

	t.Run("unknown reference", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, testConfig(writeScene(t, `
avatar "A" {
  node "T" {
    object_toggle {
      object {
        target = "Nope"
        active = true
      }
    }
  }
}
`)))
		err := a.Run(context.Background())
		assert.ErrorContains(t, err, "failed to build scene")
	})
}

func TestCompile_WarningsAreLogged(t *testing.T) {
	a, _, logs := SetupAppTest(t, testConfig(writeScene(t, `
avatar "A" {
  node "Body" {
    renderer { mesh = "mesh.body" }
    shape_changer {
      shape {
        renderer = "Body"
        name     = "Gone"
        value    = 1
      }
    }
  }
}
mesh "mesh.body" { blendshapes = ["Smile"] }
output "FX" { scratch = true }
`)))

	report, err := a.Compile(a.ctx)
	require.NoError(t, err)

	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "scene.hcl")
	assert.Contains(t, report.Warnings[0], "Unknown blendshape")
	assert.Contains(t, logs.String(), "Compilation warning.")
}

func TestHealthAndMetrics(t *testing.T) {
	a, _, _ := SetupAppTest(t, testConfig(writeScene(t, hatScene)))
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "no result yet")

	_, err = a.Compile(a.ctx)
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reactbake_compilations_total{result="ok"} 1`)
}

func TestRun_WatchRecompilesOnChange(t *testing.T) {
	dir := writeScene(t, hatScene)
	cfg := testConfig(dir)
	cfg.Watch = true
	a, _, _ := SetupAppTest(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Last() != nil }, 5*time.Second, 20*time.Millisecond)
	first := a.Last().Generation

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.hcl"), []byte(hatScene+"\n"), 0o600))

	require.Eventually(t, func() bool { return a.Last().Generation > first }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancellation")
	}
}

func TestRelevant(t *testing.T) {
	testCases := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "hcl write", event: fsnotify.Event{Name: "/s/a.hcl", Op: fsnotify.Write}, want: true},
		{name: "hcl chmod only", event: fsnotify.Event{Name: "/s/a.hcl", Op: fsnotify.Chmod}, want: false},
		{name: "editor swap file", event: fsnotify.Event{Name: "/s/.a.hcl.swp", Op: fsnotify.Write}, want: false},
		{name: "other extension", event: fsnotify.Event{Name: "/s/notes.txt", Op: fsnotify.Write}, want: false},
		{name: "new directory", event: fsnotify.Event{Name: "/s/parts", Op: fsnotify.Create}, want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relevant(tc.event))
		})
	}
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "parts", "hats"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	file := filepath.Join(root, "scene.hcl")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	dirs, err := watchDirs(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "parts"), filepath.Join(root, "parts", "hats")}, dirs)

	dirs, err = watchDirs(file)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)

	_, err = watchDirs(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
