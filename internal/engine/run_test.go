package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicac-project/tokenmeter/internal/config"
	"github.com/aicac-project/tokenmeter/internal/docs"
	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/output"
	"github.com/aicac-project/tokenmeter/internal/tokenizer"
)

func runConfig(t *testing.T, repo string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RepoPath = repo
	cfg.OutputDir = t.TempDir()
	cfg.Tokenizers = []string{"heuristic"}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := runConfig(t, fullRepo(t))
	cfg.Formats = []string{
		string(model.FormatReadmeOnly),
		string(model.FormatAgentsOnly),
		string(model.FormatAICaC),
		string(model.FormatAICaCSelective),
	}
	cfg.Trials = 2

	require.NoError(t, Run(context.Background(), cfg))

	// All three result files exist.
	for _, name := range []string{cfg.CSVFile, cfg.JSONLFile, cfg.ReportFile} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, cfg.ReportFile))
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal(data, &report))

	// 4 formats x 2 trials x 16 embedded questions x 1 tokenizer.
	assert.Equal(t, 4*2*16, report.Metadata.TotalMeasurements)
	assert.Len(t, report.Measurements, 4*2*16)
	assert.NotEmpty(t, report.Metadata.RunID)
	assert.Equal(t, 2, report.Metadata.Trials)

	require.True(t, report.Summary.BaselineAvailable)
	require.Len(t, report.Summary.Formats, 4)
	for _, fs := range report.Summary.Formats {
		assert.False(t, fs.InsufficientData, string(fs.Format))
		assert.Positive(t, fs.MeanTokens, string(fs.Format))
		// Static text: identical counts across trials, zero spread
		// within a (format, question) pair shows up as consistent
		// means; stddev across questions can still be non-zero.
		assert.Equal(t, 2*16, fs.SampleCount)
	}
}

func TestRunMissingFormatFileStillReports(t *testing.T) {
	// No AGENTS.md: AGENTS_ONLY fails, README_ONLY succeeds, the run
	// exits non-zero but the report covers what was measured.
	repo := writeRepo(t, map[string]string{"README.md": "# Project"})
	cfg := runConfig(t, repo)
	cfg.Formats = []string{
		string(model.FormatReadmeOnly),
		string(model.FormatAgentsOnly),
	}

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, docs.ErrMissingFile)

	data, readErr := os.ReadFile(filepath.Join(cfg.OutputDir, cfg.ReportFile))
	require.NoError(t, readErr)

	var report output.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 16, report.Metadata.TotalMeasurements)

	for _, fs := range report.Summary.Formats {
		if fs.Format == model.FormatAgentsOnly {
			assert.True(t, fs.InsufficientData)
			assert.Equal(t, 0, fs.SampleCount)
		}
	}
}

func TestRunUnavailableTokenizer(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := runConfig(t, fullRepo(t))
	cfg.Tokenizers = []string{"claude"}

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, tokenizer.ErrUnavailable)

	// Failed before any measurement: no report was produced.
	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, cfg.ReportFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := runConfig(t, fullRepo(t))
	cfg.Trials = 0

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive integer")
}

func TestRunCategoryFilter(t *testing.T) {
	cfg := runConfig(t, fullRepo(t))
	cfg.Formats = []string{string(model.FormatReadmeOnly)}
	cfg.Categories = []string{"common_workflows"}

	require.NoError(t, Run(context.Background(), cfg))

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, cfg.ReportFile))
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 5, report.Metadata.TotalMeasurements)
	for _, m := range report.Measurements {
		assert.Equal(t, "common_workflows", m.Category)
	}
}

func TestRunNoQuestionsAfterFilter(t *testing.T) {
	cfg := runConfig(t, fullRepo(t))
	cfg.Categories = []string{"nonexistent"}

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no questions match")
}
