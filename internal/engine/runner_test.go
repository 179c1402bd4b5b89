package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicac-project/tokenmeter/internal/docs"
	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/tokenizer"
)

// lenCounter is a deterministic stub backend: one token per byte.
type lenCounter struct{}

func (lenCounter) Name() string { return "len" }
func (lenCounter) Count(_ context.Context, text string) (int, error) {
	return len(text), nil
}

// brokenCounter fails on every call.
type brokenCounter struct{}

func (brokenCounter) Name() string { return "broken" }
func (brokenCounter) Count(_ context.Context, _ string) (int, error) {
	return 0, errors.New("backend exploded")
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func fullRepo(t *testing.T) string {
	t.Helper()
	return writeRepo(t, map[string]string{
		"README.md":             "# Project readme",
		"AGENTS.md":             "# Agents router",
		".ai/context.yaml":      "project: demo",
		".ai/architecture.yaml": "layers: []",
		".ai/decisions.yaml":    "adr: []",
		".ai/workflows.yaml":    "workflows: []",
		".ai/errors.yaml":       "errors: []",
	})
}

var testQuestions = []model.Question{
	{ID: "IR-001", Text: "What is this?", Category: "information_retrieval"},
	{ID: "CW-001", Text: "How do I run it?", Category: "common_workflows"},
}

func TestMeasureProducesFullProduct(t *testing.T) {
	loader := docs.NewLoader(fullRepo(t))
	formats := []model.Format{model.FormatReadmeOnly, model.FormatAICaC}
	trials := 3

	var sunk []model.Measurement
	sink := func(m model.Measurement) error {
		sunk = append(sunk, m)
		return nil
	}

	r := NewRunner(formats, testQuestions, []tokenizer.Counter{lenCounter{}}, loader, trials, sink)
	assert.Equal(t, 2*3*2*1, r.Total())

	ms, errs := r.Measure(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, ms, r.Total())
	assert.Equal(t, ms, sunk)

	for _, m := range ms {
		assert.GreaterOrEqual(t, m.TokenCount, 0)
		assert.Positive(t, m.TokenCount, "non-empty context must cost tokens")
		assert.Equal(t, m.ContextLength, m.TokenCount) // lenCounter property
		assert.NotEmpty(t, m.FilesLoaded)
	}
}

func TestMeasureDeterministicAcrossTrials(t *testing.T) {
	loader := docs.NewLoader(fullRepo(t))
	r := NewRunner([]model.Format{model.FormatAICaC}, testQuestions,
		[]tokenizer.Counter{lenCounter{}}, loader, 5, nil)

	ms, errs := r.Measure(context.Background())
	require.Empty(t, errs)

	first := make(map[string]int)
	for _, m := range ms {
		key := string(m.Format) + "|" + m.QuestionID + "|" + m.Tokenizer
		if prev, ok := first[key]; ok {
			assert.Equal(t, prev, m.TokenCount, "trial %d diverged for %s", m.Trial, key)
		} else {
			first[key] = m.TokenCount
		}
	}
}

func TestMeasureMissingFileAbortsFormat(t *testing.T) {
	// README.md exists, AGENTS.md does not: AGENTS_ONLY must produce
	// zero measurements, README_ONLY still runs.
	dir := writeRepo(t, map[string]string{"README.md": "# Project"})
	loader := docs.NewLoader(dir)

	var sunk []model.Measurement
	sink := func(m model.Measurement) error {
		sunk = append(sunk, m)
		return nil
	}

	formats := []model.Format{model.FormatAgentsOnly, model.FormatReadmeOnly}
	r := NewRunner(formats, testQuestions, []tokenizer.Counter{lenCounter{}}, loader, 1, sink)

	ms, errs := r.Measure(context.Background())
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], docs.ErrMissingFile)

	for _, m := range ms {
		assert.Equal(t, model.FormatReadmeOnly, m.Format,
			"no measurement may exist for the aborted format")
	}
	assert.Len(t, ms, len(testQuestions))
	assert.Equal(t, ms, sunk)
}

func TestMeasureSelectivePreflightChecksAllCategories(t *testing.T) {
	// workflows.yaml missing: the CW question makes AICAC_SELECTIVE
	// unrunnable, and the whole format must abort up front.
	dir := writeRepo(t, map[string]string{
		"README.md":        "# Project",
		"AGENTS.md":        "# Agents",
		".ai/context.yaml": "project: demo",
	})
	loader := docs.NewLoader(dir)

	r := NewRunner([]model.Format{model.FormatAICaCSelective}, testQuestions,
		[]tokenizer.Counter{lenCounter{}}, loader, 1, nil)

	ms, errs := r.Measure(context.Background())
	assert.Empty(t, ms)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], docs.ErrMissingFile)
}

func TestMeasureTokenizerFailureIsIsolated(t *testing.T) {
	loader := docs.NewLoader(fullRepo(t))
	counters := []tokenizer.Counter{lenCounter{}, brokenCounter{}}

	r := NewRunner([]model.Format{model.FormatReadmeOnly}, testQuestions, counters, loader, 1, nil)

	ms, errs := r.Measure(context.Background())
	// The healthy backend's measurements survive.
	assert.Len(t, ms, len(testQuestions))
	for _, m := range ms {
		assert.Equal(t, "len", m.Tokenizer)
	}
	// The broken backend surfaces exactly once.
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken")
}

func TestMeasureSelectiveLoadsPerCategory(t *testing.T) {
	loader := docs.NewLoader(fullRepo(t))
	r := NewRunner([]model.Format{model.FormatAICaCSelective}, testQuestions,
		[]tokenizer.Counter{lenCounter{}}, loader, 1, nil)

	ms, errs := r.Measure(context.Background())
	require.Empty(t, errs)
	require.Len(t, ms, 2)

	byQuestion := make(map[string]model.Measurement)
	for _, m := range ms {
		byQuestion[m.QuestionID] = m
	}
	assert.Equal(t, []string{"AGENTS.md", ".ai/context.yaml"}, byQuestion["IR-001"].FilesLoaded)
	assert.Equal(t, []string{"AGENTS.md", ".ai/workflows.yaml", ".ai/errors.yaml"}, byQuestion["CW-001"].FilesLoaded)
}

func TestMeasureCancelledContext(t *testing.T) {
	loader := docs.NewLoader(fullRepo(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner([]model.Format{model.FormatReadmeOnly}, testQuestions,
		[]tokenizer.Counter{lenCounter{}}, loader, 1, nil)

	ms, errs := r.Measure(ctx)
	assert.Empty(t, ms)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[len(errs)-1], context.Canceled)
}
