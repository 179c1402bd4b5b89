/*
PURPOSE:
  Aggregates measurements into comparative summary statistics:
  mean, median, sample standard deviation, and percentage reduction
  versus a designated baseline format.

REQUIREMENTS:
  User-specified:
  - Group by format, and by (format, category).
  - Compare every format against the baseline format's mean.

  Implementation-discovered:
  - A requested format with zero measurements must surface as
    "insufficient data", never as a division by zero.
  - Percentage polarity must be one documented convention everywhere.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/output
  - Consumes: internal/model.Measurement

ERROR HANDLING:
  - Pure computation; no errors. Missing data is represented in the
    result, not raised.

IMPLEMENTATION RULES:
  - ReductionVsBaselinePct = (baselineMean - mean) / baselineMean * 100.
    Positive means the format uses FEWER tokens than the baseline.
  - Sample (n-1) standard deviation; 0 when n < 2.

USAGE:
  summary := stats.Summarize(measurements, formats, model.FormatReadmeOnly)

SELF-HEALING INSTRUCTIONS:
  - If a new grouping dimension is needed, add a key field and extend
    Summarize; keep the polarity convention untouched.

RELATED FILES:
  - internal/output/report.go

MAINTENANCE:
  - Update when adding new summary metrics.
*/

package stats

import (
	"math"
	"sort"

	"github.com/aicac-project/tokenmeter/internal/model"
)

// FormatSummary holds the aggregate statistics for one format.
type FormatSummary struct {
	Format       model.Format `json:"format"`
	SampleCount  int          `json:"sample_count"`
	MeanTokens   float64      `json:"mean_tokens"`
	MedianTokens float64      `json:"median_tokens"`
	StdDevTokens float64      `json:"stddev_tokens"`
	// ReductionVsBaselinePct is (baselineMean - mean) / baselineMean * 100.
	// Positive = fewer tokens than the baseline. Nil for the baseline
	// itself and whenever the baseline has no measurements.
	ReductionVsBaselinePct *float64 `json:"reduction_vs_baseline_pct,omitempty"`
	// InsufficientData marks a format that was requested but produced
	// no measurements (or has no baseline to compare against).
	InsufficientData bool     `json:"insufficient_data,omitempty"`
	FilesLoaded      []string `json:"files_loaded,omitempty"`
}

// CategorySummary is a FormatSummary sliced down to one question category.
type CategorySummary struct {
	Format                 model.Format `json:"format"`
	Category               string       `json:"category"`
	SampleCount            int          `json:"sample_count"`
	MeanTokens             float64      `json:"mean_tokens"`
	MedianTokens           float64      `json:"median_tokens"`
	StdDevTokens           float64      `json:"stddev_tokens"`
	ReductionVsBaselinePct *float64     `json:"reduction_vs_baseline_pct,omitempty"`
}

// Summary is the full aggregate view of one measurement run.
type Summary struct {
	Baseline model.Format `json:"baseline"`
	// BaselineAvailable is false when the baseline format has zero
	// measurements; all percentage fields are omitted in that case.
	BaselineAvailable bool              `json:"baseline_available"`
	Formats           []FormatSummary   `json:"formats"`
	Categories        []CategorySummary `json:"categories,omitempty"`
}

// Summarize groups measurements by format (and by format+category) and
// computes comparative statistics against the baseline format. Every
// requested format appears in the result, with InsufficientData set
// when it produced no measurements.
func Summarize(measurements []model.Measurement, requested []model.Format, baseline model.Format) Summary {
	byFormat := make(map[model.Format][]int)
	filesByFormat := make(map[model.Format]map[string]struct{})
	type catKey struct {
		format   model.Format
		category string
	}
	byCategory := make(map[catKey][]int)

	for _, m := range measurements {
		byFormat[m.Format] = append(byFormat[m.Format], m.TokenCount)
		if filesByFormat[m.Format] == nil {
			filesByFormat[m.Format] = make(map[string]struct{})
		}
		for _, f := range m.FilesLoaded {
			filesByFormat[m.Format][f] = struct{}{}
		}
		byCategory[catKey{m.Format, m.Category}] = append(byCategory[catKey{m.Format, m.Category}], m.TokenCount)
	}

	baselineMean := 0.0
	baselineAvailable := len(byFormat[baseline]) > 0
	if baselineAvailable {
		baselineMean = Mean(byFormat[baseline])
	}

	// Keep requested order; append any unrequested formats that somehow
	// carry measurements so nothing is hidden.
	ordered := append([]model.Format{}, requested...)
	for _, f := range model.AllFormats {
		if _, ok := byFormat[f]; ok && !containsFormat(ordered, f) {
			ordered = append(ordered, f)
		}
	}

	s := Summary{
		Baseline:          baseline,
		BaselineAvailable: baselineAvailable,
	}

	for _, f := range ordered {
		tokens := byFormat[f]
		fs := FormatSummary{
			Format:      f,
			SampleCount: len(tokens),
		}
		if len(tokens) == 0 {
			fs.InsufficientData = true
			s.Formats = append(s.Formats, fs)
			continue
		}
		fs.MeanTokens = Mean(tokens)
		fs.MedianTokens = Median(tokens)
		fs.StdDevTokens = StdDev(tokens)
		fs.FilesLoaded = sortedKeys(filesByFormat[f])
		if f != baseline {
			if baselineAvailable && baselineMean > 0 {
				pct := reduction(baselineMean, fs.MeanTokens)
				fs.ReductionVsBaselinePct = &pct
			} else {
				fs.InsufficientData = true
			}
		}
		s.Formats = append(s.Formats, fs)
	}

	// Category view: only groups that actually have data.
	catKeys := make([]catKey, 0, len(byCategory))
	for k := range byCategory {
		catKeys = append(catKeys, k)
	}
	sort.Slice(catKeys, func(i, j int) bool {
		if catKeys[i].format != catKeys[j].format {
			return indexOfFormat(ordered, catKeys[i].format) < indexOfFormat(ordered, catKeys[j].format)
		}
		return catKeys[i].category < catKeys[j].category
	})
	for _, k := range catKeys {
		tokens := byCategory[k]
		cs := CategorySummary{
			Format:       k.format,
			Category:     k.category,
			SampleCount:  len(tokens),
			MeanTokens:   Mean(tokens),
			MedianTokens: Median(tokens),
			StdDevTokens: StdDev(tokens),
		}
		if k.format != baseline && baselineAvailable && baselineMean > 0 {
			pct := reduction(baselineMean, cs.MeanTokens)
			cs.ReductionVsBaselinePct = &pct
		}
		s.Categories = append(s.Categories, cs)
	}

	return s
}

// reduction implements the one documented polarity convention:
// positive = fewer tokens than the baseline.
func reduction(baselineMean, mean float64) float64 {
	return (baselineMean - mean) / baselineMean * 100
}

// Mean returns the arithmetic mean of values. 0 for an empty slice.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Median returns the median of values. 0 for an empty slice.
func Median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int{}, values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// StdDev returns the sample (n-1) standard deviation. 0 when n < 2.
func StdDev(values []int) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func containsFormat(formats []model.Format, f model.Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

func indexOfFormat(formats []model.Format, f model.Format) int {
	for i, x := range formats {
		if x == f {
			return i
		}
	}
	return len(formats)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
