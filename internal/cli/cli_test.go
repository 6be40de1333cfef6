package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "reactbake.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
scene          = "file.hcl"
output_format  = "json"
max_relaxation = 4
`), 0o600))

	withDefaults := func(mutate func(c *app.Config)) *app.Config {
		c := app.DefaultConfig()
		mutate(&c)
		return &c
	}

	testCases := []struct {
		name    string
		args    []string
		environ []string
		want    *app.Config
	}{
		{
			name: "positional scene",
			args: []string{"scene.hcl"},
			want: withDefaults(func(c *app.Config) { c.ScenePath = "scene.hcl" }),
		},
		{
			name: "scene flag wins over positional",
			args: []string{"-s", "flag.hcl", "positional.hcl"},
			want: withDefaults(func(c *app.Config) { c.ScenePath = "flag.hcl" }),
		},
		{
			name: "all flags",
			args: []string{"--scene", "s", "-o", "JSON", "--log-format", "json", "--log-level", "debug", "--max-relaxation", "2", "--workers", "3", "-w", "--healthcheck-port", "8081"},
			want: &app.Config{ScenePath: "s", OutputFormat: "json", LogFormat: "json", LogLevel: "debug", MaxRelaxation: 2, Workers: 3, Watch: true, HealthcheckPort: 8081},
		},
		{
			name:    "environment",
			environ: []string{"REACTBAKE_SCENE=env.hcl", "REACTBAKE_LOG_LEVEL=warn", "HOME=/root"},
			want: withDefaults(func(c *app.Config) {
				c.ScenePath = "env.hcl"
				c.LogLevel = "warn"
			}),
		},
		{
			name:    "file, then environment, then flags",
			args:    []string{"--config", configFile, "--max-relaxation", "6"},
			environ: []string{"REACTBAKE_OUTPUT_FORMAT=yaml"},
			want: withDefaults(func(c *app.Config) {
				c.ConfigFile = configFile
				c.ScenePath = "file.hcl"
				c.OutputFormat = "yaml"
				c.MaxRelaxation = 6
			}),
		},
		{
			name:    "config file from environment",
			environ: []string{"REACTBAKE_CONFIG=" + configFile},
			want: withDefaults(func(c *app.Config) {
				c.ConfigFile = configFile
				c.ScenePath = "file.hcl"
				c.OutputFormat = "json"
				c.MaxRelaxation = 4
			}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(tc.args, out, tc.environ)
			require.NoError(t, err)
			assert.False(t, shouldExit)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestParse_Exit(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse([]string{"--help"}, out, nil)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "--max-relaxation")
	})

	t.Run("no scene prints usage", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, shouldExit, err := Parse(nil, out, nil)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Contains(t, out.String(), "SCENE_PATH")
	})
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		environ []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--bogus"}, wantMsg: "unknown flag: --bogus"},
		{name: "invalid log level", args: []string{"s.hcl", "--log-level", "loud"}, wantMsg: "invalid log level"},
		{name: "invalid output", args: []string{"s.hcl", "-o", "xml"}, wantMsg: "invalid output format"},
		{name: "missing config file", args: []string{"s.hcl", "--config", "/nonexistent/reactbake.toml"}, wantMsg: "failed to read config file"},
		{name: "bad environment value", args: []string{"s.hcl"}, environ: []string{"REACTBAKE_WATCH=maybe"}, wantMsg: "failed to parse environment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{}, tc.environ)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
