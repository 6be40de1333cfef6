// Package scenetest builds scenes from inline HCL for package tests.
package scenetest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/hcl"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a logger. Logs are discarded unless
// REACTBAKE_TEST_LOGS=true, in which case they go to stderr.
func Context() context.Context {
	var w io.Writer = io.Discard
	if os.Getenv("REACTBAKE_TEST_LOGS") == "true" {
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// Load parses src as a single scene file and builds the scene.
func Load(t *testing.T, src string) *scene.Scene {
	t.Helper()
	s, err := TryLoad(t, src)
	require.NoError(t, err)
	return s
}

// TryLoad is Load for tests that expect loading to fail.
func TryLoad(t *testing.T, src string) (*scene.Scene, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	ctx := Context()
	model, err := hcl.NewLoader().Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return scene.Build(ctx, model)
}

// Node looks up a node by path and fails the test if it does not exist.
func Node(t *testing.T, s *scene.Scene, id string) *scene.Node {
	t.Helper()
	n, ok := s.Lookup(scene.NodeID(id))
	require.True(t, ok, "node %q not found", id)
	return n
}
