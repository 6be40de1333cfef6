package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/specialistvlad/reactbake/internal/hcl"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Report    *app.Report
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files)
}

// RunIntegrationTestWithContext writes files under a temporary scene
// directory and compiles it once. File names are relative to that directory
// and may contain subdirectories.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	sceneDir := filepath.Join(t.TempDir(), "scene")
	require.NoError(t, os.Mkdir(sceneDir, 0o755))
	for name, content := range files {
		filePath := filepath.Join(sceneDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := app.DefaultConfig()
	cfg.ScenePath = sceneDir
	cfg.LogLevel = "debug"

	logBuffer := &app.SafeBuffer{}
	testApp := app.NewApp(ctx, logBuffer, logBuffer, &cfg, hcl.NewLoader())

	var report *app.Report
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("compilation panicked | %v", r)
			}
		}()
		report, runErr = testApp.Compile(ctx)
	}()

	if os.Getenv("REACTBAKE_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Report:    report,
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
