package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickward/todomark"
	"github.com/patrickward/todomark/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
embedded:
  regex: "(TODO|FIXME):\\s*(.*)"
  include: ["**/*.go", "**/*.md"]
  limit: 10
  group_by_file: true
  concurrency: 4
  match_timeout: 2s
  trim_types: true
indentation: "\t"
symbols:
  box: "-"
log:
  file: /tmp/todomark.log
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, `(TODO|FIXME):\s*(.*)`, cfg.Embedded.Regex)
	assert.Equal(t, []string{"**/*.go", "**/*.md"}, cfg.Embedded.Include)
	assert.Equal(t, 10, cfg.Embedded.Limit)
	assert.True(t, cfg.Embedded.GroupByFile)
	assert.Equal(t, 4, cfg.Embedded.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Embedded.MatchTimeout)
	assert.True(t, cfg.Embedded.TrimTypes)

	// Unset keys keep their defaults
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Embedded.Exclude, cfg.Embedded.Exclude)
	assert.Equal(t, defaults.Document, cfg.Document)
	assert.Equal(t, 10, cfg.Log.MaxSize)

	assert.Equal(t, todomark.RenderConfig{Indentation: "\t", GroupByFile: true, BulletSymbol: "-"}, cfg.RenderConfig())
	assert.Equal(t, "/tmp/todomark.log", cfg.Log.File)

	opts := cfg.DiscoveryOptions()
	assert.Equal(t, cfg.Embedded.Include, opts.Include)
	assert.Equal(t, 10, opts.Limit)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"malformed":        "embedded: [not, a, map",
		"negative limit":   "embedded:\n  limit: -1\n",
		"empty regex":      "embedded:\n  regex: \"\"\n",
		"invalid glob":     "embedded:\n  include: [\"[oops\"]\n",
		"same markers":     "document:\n  start_marker: X\n  end_marker: X\n",
		"negative workers": "embedded:\n  concurrency: -2\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestConfig_Pattern(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	p, err := cfg.Pattern()
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumGroups())

	cfg.Embedded.Regex = "(unclosed"
	_, err = cfg.Pattern()
	assert.ErrorIs(t, err, todomark.ErrInvalidPattern)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")
	assert.Equal(t, "flag.yaml", config.ResolvePath("flag.yaml", "/root"))
	assert.Equal(t, filepath.Join("/root", config.FileName), config.ResolvePath("", "/root"))

	t.Setenv(config.EnvConfigFile, "/etc/todomark.yaml")
	assert.Equal(t, "/etc/todomark.yaml", config.ResolvePath("", "/root"))
	assert.Equal(t, "flag.yaml", config.ResolvePath("flag.yaml", "/root"))
}
