package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/stats"
)

func sampleMeasurement() model.Measurement {
	return model.Measurement{
		Format:        model.FormatReadmeOnly,
		QuestionID:    "IR-001",
		Question:      "What is this?",
		Category:      "information_retrieval",
		Tokenizer:     "heuristic",
		Trial:         1,
		TokenCount:    512,
		ContextLength: 2048,
		FilesLoaded:   []string{"README.md"},
		Timestamp:     time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleMeasurement()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "format", records[0][0])
	assert.Equal(t, "README_ONLY", records[1][0])
	assert.Equal(t, "512", records[1][5])
	assert.Equal(t, "README.md", records[1][7])
}

func TestJSONLWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := NewJSONLWriter(path)
	require.NoError(t, err)

	m := sampleMeasurement()
	require.NoError(t, w.Write(m))
	require.NoError(t, w.Write(m))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var got model.Measurement
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, m.QuestionID, got.QuestionID)
	assert.Equal(t, m.TokenCount, got.TokenCount)
}

func sampleReport() Report {
	ms := []model.Measurement{sampleMeasurement()}
	summary := stats.Summarize(ms,
		[]model.Format{model.FormatReadmeOnly, model.FormatAICaC},
		model.FormatReadmeOnly)
	return NewReport("run-1", "/repo", 1, []string{"heuristic"}, summary, ms)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.Metadata.RunID)
	assert.Equal(t, 1, got.Metadata.TotalMeasurements)
	assert.NotEmpty(t, got.Metadata.MethodologyNotes)
	assert.Len(t, got.Measurements, 1)
	assert.Equal(t, model.Format("README_ONLY"), got.Summary.Baseline)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	RenderText(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "TOKEN CONSUMPTION BY FORMAT")
	assert.Contains(t, out, "Baseline: README_ONLY")
	assert.Contains(t, out, "positive % = fewer tokens")
	assert.Contains(t, out, "README_ONLY:")
	assert.Contains(t, out, "Mean tokens:  512")
	// The requested-but-unmeasured format renders as insufficient data.
	assert.Contains(t, out, "AICAC:")
	assert.Contains(t, out, "insufficient data")
}

func TestRenderTextPolarity(t *testing.T) {
	base := sampleMeasurement()
	richer := sampleMeasurement()
	richer.Format = model.FormatAICaC
	richer.TokenCount = 768
	leaner := sampleMeasurement()
	leaner.Format = model.FormatAICaCSelective
	leaner.TokenCount = 256

	ms := []model.Measurement{base, richer, leaner}
	summary := stats.Summarize(ms,
		[]model.Format{model.FormatReadmeOnly, model.FormatAICaC, model.FormatAICaCSelective},
		model.FormatReadmeOnly)
	report := NewReport("run-2", "/repo", 1, []string{"heuristic"}, summary, ms)

	var buf bytes.Buffer
	RenderText(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "50.0% MORE tokens")
	assert.Contains(t, out, "50.0% FEWER tokens")
}
