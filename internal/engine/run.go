/*
PURPOSE:
  High-level orchestration of one measurement run. Resolves the
  configuration into formats, questions, and tokenizer backends, wires
  the output writers, drives the Runner, and produces the report.

REQUIREMENTS:
  User-specified:
  - Stream each measurement to CSV and JSONL as it is taken.
  - Write the structured JSON report and print the console summary.
  - Exit non-zero when a selected format is missing files or a selected
    tokenizer backend is unavailable.

  Implementation-discovered:
  - Per-format failures do not stop other formats; they surface in the
    joined error after the report is written, so a partial run still
    yields a usable report.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/config, internal/docs, internal/questions,
    internal/tokenizer, internal/stats, internal/output

ERROR HANDLING:
  - Setup errors (config, questions, tokenizers, writers) abort before
    any measurement. Measurement-phase errors are joined and returned
    after reporting.

IMPLEMENTATION RULES:
  - Iteration is synchronous; combinations are independent so no
    coordination is needed.

USAGE:
  err := engine.Run(ctx, cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - Update when run outputs or phases change.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/aicac-project/tokenmeter/internal/config"
	"github.com/aicac-project/tokenmeter/internal/docs"
	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/output"
	"github.com/aicac-project/tokenmeter/internal/questions"
	"github.com/aicac-project/tokenmeter/internal/stats"
	"github.com/aicac-project/tokenmeter/internal/tokenizer"
)

// Run executes a full measurement run.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	formats, err := cfg.ParsedFormats()
	if err != nil {
		return err
	}
	baseline, err := model.ParseFormat(cfg.Baseline)
	if err != nil {
		return err
	}

	// Tokenizer selection fails fast: numbers must never silently come
	// from a different backend than the one requested.
	registry := tokenizer.NewRegistry(cfg)
	counters, err := registry.Select(cfg.Tokenizers)
	if err != nil {
		return err
	}

	qs, err := questions.Load(cfg.QuestionsFile)
	if err != nil {
		return err
	}
	qs = questions.FilterCategories(qs, cfg.Categories)
	if len(qs) == 0 {
		return fmt.Errorf("no questions match categories %v", cfg.Categories)
	}

	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	csvPath := filepath.Join(cfg.OutputDir, cfg.CSVFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonlPath := filepath.Join(cfg.OutputDir, cfg.JSONLFile)
	jsonlWriter, err := output.NewJSONLWriter(jsonlPath)
	if err != nil {
		return fmt.Errorf("failed to init JSONL writer at %s: %w", jsonlPath, err)
	}
	defer jsonlWriter.Close()

	sink := func(m model.Measurement) error {
		if err := csvWriter.Write(m); err != nil {
			return err
		}
		return jsonlWriter.Write(m)
	}

	runner := NewRunner(formats, qs, counters, docs.NewLoader(cfg.RepoPath), cfg.Trials, sink)

	counterNames := make([]string, len(counters))
	for i, c := range counters {
		counterNames[i] = c.Name()
	}

	output.Logger.Info("Starting measurement run",
		"repo", cfg.RepoPath,
		"formats", model.FormatNames(formats),
		"questions", len(qs),
		"tokenizers", counterNames,
		"trials", cfg.Trials,
		"total", runner.Total(),
	)

	measurements, errs := runner.Measure(ctx)

	summary := stats.Summarize(measurements, formats, baseline)
	report := output.NewReport(uuid.NewString(), cfg.RepoPath, cfg.Trials, counterNames, summary, measurements)

	reportPath := filepath.Join(cfg.OutputDir, cfg.ReportFile)
	if err := output.WriteReport(reportPath, report); err != nil {
		errs = append(errs, err)
	} else {
		output.Logger.Info("Report written", "path", reportPath, "measurements", len(measurements))
	}

	output.RenderText(os.Stdout, report)

	return errors.Join(errs...)
}
