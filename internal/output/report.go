/*
PURPOSE:
  Builds and writes the final structured report: run metadata, the
  comparative summary, and the full measurement set in one JSON file.
  Also renders the human-readable console summary.

REQUIREMENTS:
  User-specified:
  - The report file is the interface consumed by downstream tooling
    (badge generation, CI checks); it must be self-describing.
  - The console summary must spell out the percentage polarity.

  Implementation-discovered:
  - Methodology notes travel with the data so numbers are not quoted
    out of context.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Measurement, internal/stats.Summary

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Indented JSON; the file is meant to be read by humans too.
  - RenderText writes to an io.Writer so tests can capture it; the CLI
    passes os.Stdout.

USAGE:
  report := output.NewReport(runID, repoPath, trials, tokenizers, summary, measurements)
  err := output.WriteReport("token_results.json", report)
  output.RenderText(os.Stdout, report)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/stats/stats.go

MAINTENANCE:
  - Keep the methodology notes in sync with loader semantics.
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/stats"
)

// Metadata describes one measurement run.
type Metadata struct {
	RunID             string   `json:"run_id"`
	RepoPath          string   `json:"repo_path"`
	Timestamp         string   `json:"timestamp"`
	TotalMeasurements int      `json:"total_measurements"`
	Trials            int      `json:"trials"`
	Tokenizers        []string `json:"tokenizers"`
	MethodologyNotes  []string `json:"methodology_notes"`
}

// Report is the full serializable output of a run.
type Report struct {
	Metadata     Metadata            `json:"metadata"`
	Summary      stats.Summary       `json:"summary"`
	Measurements []model.Measurement `json:"measurements"`
}

var methodologyNotes = []string{
	"AICAC = everything loaded (README + AGENTS + all .ai/ files); what current AI tools do",
	"AICAC_SELECTIVE = AGENTS.md router + only the .ai/ files relevant to the question category",
	"AICaC adds files, so AICAC total context is HIGHER than README alone",
	"reduction_vs_baseline_pct = (baselineMean - mean) / baselineMean * 100; positive = fewer tokens than baseline",
	"trials repeat static text; counts must be identical across trials",
}

// NewReport assembles a Report.
func NewReport(runID, repoPath string, trials int, tokenizers []string, summary stats.Summary, measurements []model.Measurement) Report {
	return Report{
		Metadata: Metadata{
			RunID:             runID,
			RepoPath:          repoPath,
			Timestamp:         time.Now().Format("2006-01-02 15:04:05"),
			TotalMeasurements: len(measurements),
			Trials:            trials,
			Tokenizers:        tokenizers,
			MethodologyNotes:  methodologyNotes,
		},
		Summary:      summary,
		Measurements: measurements,
	}
}

// WriteReport writes the report as indented JSON.
func WriteReport(path string, report Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report file %s: %w", path, err)
	}
	return nil
}

// RenderText writes the console summary.
func RenderText(w io.Writer, report Report) {
	line := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	fmt.Fprintf(w, "\n%s\nTOKEN CONSUMPTION BY FORMAT\n%s\n", line, line)
	fmt.Fprintf(w, "Baseline: %s (positive %% = fewer tokens than baseline)\n", report.Summary.Baseline)

	for _, fs := range report.Summary.Formats {
		fmt.Fprintf(w, "\n%s:\n", fs.Format)
		if fs.InsufficientData && fs.SampleCount == 0 {
			fmt.Fprintf(w, "  insufficient data (no measurements)\n")
			continue
		}
		if len(fs.FilesLoaded) > 0 {
			fmt.Fprintf(w, "  Files loaded: %s\n", strings.Join(fs.FilesLoaded, ", "))
		}
		fmt.Fprintf(w, "  Samples:      %d\n", fs.SampleCount)
		fmt.Fprintf(w, "  Mean tokens:  %.0f\n", fs.MeanTokens)
		fmt.Fprintf(w, "  Median:       %.0f\n", fs.MedianTokens)
		fmt.Fprintf(w, "  Std dev:      %.1f\n", fs.StdDevTokens)
		switch {
		case fs.Format == report.Summary.Baseline:
			// baseline row has no comparison
		case fs.ReductionVsBaselinePct != nil:
			pct := *fs.ReductionVsBaselinePct
			direction := "FEWER"
			if pct < 0 {
				direction = "MORE"
			}
			fmt.Fprintf(w, "  vs baseline:  %.1f%% %s tokens\n", abs(pct), direction)
		default:
			fmt.Fprintf(w, "  vs baseline:  insufficient data\n")
		}
	}

	if len(report.Summary.Categories) > 0 {
		fmt.Fprintf(w, "\n%s\nBY QUESTION CATEGORY\n%s\n", thin, thin)
		for _, cs := range report.Summary.Categories {
			fmt.Fprintf(w, "%-18s %-28s mean %8.0f  median %8.0f", cs.Format, cs.Category, cs.MeanTokens, cs.MedianTokens)
			if cs.ReductionVsBaselinePct != nil {
				fmt.Fprintf(w, "  vs baseline %+.1f%%", *cs.ReductionVsBaselinePct)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\n%s\n", line)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
