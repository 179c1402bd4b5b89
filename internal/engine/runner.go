/*
PURPOSE:
  Core measurement runner. Iterates the Cartesian product of
  formats × trials × questions × tokenizer backends, loads the context
  for each combination, counts tokens, and emits one immutable
  Measurement per combination.

REQUIREMENTS:
  User-specified:
  - A missing required file aborts the whole format before any of its
    measurements are recorded (a partial format invalidates the
    comparison).
  - A tokenizer failure is fatal for that backend's measurements only.
  - Repeated trials over static text must produce identical counts;
    divergence is a bug signal, not variance.

  Implementation-discovered:
  - Preflight-loading every needed context per format surfaces missing
    files up front; measurements for a format are buffered and only
    handed to the sink once the format completes cleanly.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine.Run (orchestration)
  - Uses: internal/docs, internal/tokenizer, internal/model

ERROR HANDLING:
  - Per-format errors are collected and returned together; healthy
    formats still run. Context cancellation aborts everything.

IMPLEMENTATION RULES:
  - Single-threaded, synchronous. Every combination is independent and
    side-effect-free, so ordering is free to stay simple.
  - Iterate format → trial → question → backend.

USAGE:
  r := engine.NewRunner(formats, qs, counters, loader, trials)
  measurements, errs := r.Measure(ctx)

SELF-HEALING INSTRUCTIONS:
  - Determinism warnings point at a non-deterministic backend or files
    changing mid-run; re-run on a quiescent checkout.

RELATED FILES:
  - internal/engine/run.go
  - internal/docs/loader.go

MAINTENANCE:
  - Update iteration logic if parallelism is introduced.
*/

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aicac-project/tokenmeter/internal/docs"
	"github.com/aicac-project/tokenmeter/internal/model"
	"github.com/aicac-project/tokenmeter/internal/output"
	"github.com/aicac-project/tokenmeter/internal/tokenizer"
)

// Sink receives each measurement as soon as its format completes.
type Sink func(model.Measurement) error

// Runner executes the measurement product.
type Runner struct {
	formats   []model.Format
	questions []model.Question
	counters  []tokenizer.Counter
	loader    *docs.Loader
	trials    int
	sink      Sink
}

// NewRunner creates a Runner. sink may be nil.
func NewRunner(formats []model.Format, questions []model.Question, counters []tokenizer.Counter, loader *docs.Loader, trials int, sink Sink) *Runner {
	return &Runner{
		formats:   formats,
		questions: questions,
		counters:  counters,
		loader:    loader,
		trials:    trials,
		sink:      sink,
	}
}

// Total returns the number of measurements a clean run produces.
func (r *Runner) Total() int {
	return len(r.formats) * r.trials * len(r.questions) * len(r.counters)
}

// Measure runs the full product. It returns every measurement taken
// plus one error per format or backend that had to be abandoned.
func (r *Runner) Measure(ctx context.Context) ([]model.Measurement, []error) {
	var all []model.Measurement
	var errs []error

	// Backends that failed once are skipped for the rest of the run;
	// their numbers would not be comparable anyway.
	failed := make(map[string]error)

	total := r.Total()
	current := 0

	for _, format := range r.formats {
		if err := r.preflight(format); err != nil {
			output.Logger.Error("Skipping format", "format", format, "error", err)
			errs = append(errs, err)
			current += r.trials * len(r.questions) * len(r.counters)
			continue
		}

		// Buffer per format: nothing is emitted unless every
		// combination for the format succeeds at loading.
		var batch []model.Measurement
		// First-trial counts, keyed by question × backend, for the
		// determinism check.
		firstCounts := make(map[string]int)

		formatErr := func() error {
			for trial := 1; trial <= r.trials; trial++ {
				for _, q := range r.questions {
					loaded, err := r.loader.Load(format, q.CategoryPrefix())
					if err != nil {
						return err
					}
					for _, c := range r.counters {
						current++
						if err := ctx.Err(); err != nil {
							return err
						}
						if prev, ok := failed[c.Name()]; ok {
							output.Logger.Warn("Skipping tokenizer (failed earlier)", "tokenizer", c.Name(), "error", prev)
							continue
						}

						count, err := c.Count(ctx, loaded.Content)
						if err != nil {
							err = fmt.Errorf("tokenizer %s: %w", c.Name(), err)
							output.Logger.Error("Tokenizer failed; abandoning its measurements", "tokenizer", c.Name(), "error", err)
							failed[c.Name()] = err
							errs = append(errs, err)
							continue
						}

						m := model.Measurement{
							Format:        format,
							QuestionID:    q.ID,
							Question:      q.Text,
							Category:      q.Category,
							Tokenizer:     c.Name(),
							Trial:         trial,
							TokenCount:    count,
							ContextLength: len(loaded.Content),
							FilesLoaded:   loaded.Files,
							Timestamp:     time.Now(),
						}
						batch = append(batch, m)

						key := q.ID + "|" + c.Name()
						if trial == 1 {
							firstCounts[key] = count
						} else if first, ok := firstCounts[key]; ok && first != count {
							// Static text, deterministic tokenizer:
							// this should never happen.
							output.Logger.Error("Determinism violation across trials",
								"format", format, "question", q.ID, "tokenizer", c.Name(),
								"trial", trial, "count", count, "first_count", first)
						}

						output.Logger.Info("Measured",
							"progress", fmt.Sprintf("%d/%d", current, total),
							"format", format, "question", q.ID,
							"tokenizer", c.Name(), "trial", trial, "tokens", count)
					}
				}
			}
			return nil
		}()

		if formatErr != nil {
			if ctx.Err() != nil {
				errs = append(errs, formatErr)
				return all, errs
			}
			output.Logger.Error("Format aborted; discarding its partial measurements",
				"format", format, "error", formatErr)
			errs = append(errs, fmt.Errorf("format %s: %w", format, formatErr))
			continue
		}

		for _, m := range batch {
			all = append(all, m)
			if r.sink != nil {
				if err := r.sink(m); err != nil {
					errs = append(errs, fmt.Errorf("writing measurement: %w", err))
				}
			}
		}
	}

	return all, errs
}

// preflight loads every context the format will need so a missing file
// is reported before any measurement for the format exists.
func (r *Runner) preflight(format model.Format) error {
	if format != model.FormatAICaCSelective {
		_, err := r.loader.Load(format, "")
		return err
	}
	seen := make(map[string]bool)
	for _, q := range r.questions {
		prefix := q.CategoryPrefix()
		if seen[prefix] {
			continue
		}
		seen[prefix] = true
		if _, err := r.loader.Load(format, prefix); err != nil {
			return err
		}
	}
	return nil
}
