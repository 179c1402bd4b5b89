package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicac-project/tokenmeter/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.RepoPath)
	assert.Equal(t, string(model.FormatReadmeOnly), cfg.Baseline)
	assert.Equal(t, 1, cfg.Trials)
	assert.Equal(t, []string{"heuristic"}, cfg.Tokenizers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenmeter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repo_path: /some/repo
formats: [README_ONLY, AICAC_SELECTIVE]
baseline: README_ONLY
trials: 30
tokenizers: [heuristic, gpt4]
retry_delay: 500ms
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/some/repo", cfg.RepoPath)
	assert.Equal(t, []string{"README_ONLY", "AICAC_SELECTIVE"}, cfg.Formats)
	assert.Equal(t, 30, cfg.Trials)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	// Unset keys keep their defaults.
	assert.Equal(t, "token_results.json", cfg.ReportFile)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: [not an int"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero trials", func(c *Config) { c.Trials = 0 }, "positive integer"},
		{"negative trials", func(c *Config) { c.Trials = -3 }, "positive integer"},
		{"no formats", func(c *Config) { c.Formats = nil }, "no formats"},
		{"no tokenizers", func(c *Config) { c.Tokenizers = nil }, "no tokenizers"},
		{"unknown format", func(c *Config) { c.Formats = []string{"BOGUS"} }, "unknown format"},
		{"unknown baseline", func(c *Config) { c.Baseline = "BOGUS" }, "baseline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParsedFormats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Formats = []string{"readme_only", " AICAC "}

	formats, err := cfg.ParsedFormats()
	require.NoError(t, err)
	assert.Equal(t, []model.Format{model.FormatReadmeOnly, model.FormatAICaC}, formats)
}
