/*
PURPOSE:
  Loads and filters the benchmark question set: the embedded default
  set or an external YAML file.

REQUIREMENTS:
  User-specified:
  - Questions carry an ID, text, and category; IDs prefix the category
    code used for selective context loading.

  Implementation-discovered:
  - Validation happens at load time so the runner never sees a
    malformed question.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/engine
  - Uses: internal/assets, internal/model

ERROR HANDLING:
  - Empty IDs/text and duplicate IDs are load errors with the source
    named.

IMPLEMENTATION RULES:
  - YAML list of {id, question, category}; same shape embedded and
    external.

USAGE:
  qs, err := questions.Load(cfg.QuestionsFile)
  qs = questions.FilterCategories(qs, cfg.Categories)

SELF-HEALING INSTRUCTIONS:
  - If the embedded set fails to parse, the assets file was edited
    incorrectly; validate it with any YAML linter.

RELATED FILES:
  - internal/assets/data/questions.yaml

MAINTENANCE:
  - Update when the question schema grows fields.
*/

package questions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aicac-project/tokenmeter/internal/assets"
	"github.com/aicac-project/tokenmeter/internal/model"
)

// Load returns the question set from path, or the embedded default set
// when path is empty.
func Load(path string) ([]model.Question, error) {
	var data []byte
	var err error
	source := "embedded question set"

	if path == "" {
		data, err = assets.Data.ReadFile(assets.QuestionsPath)
	} else {
		source = path
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	var qs []model.Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	if err := validate(qs, source); err != nil {
		return nil, err
	}
	return qs, nil
}

// FilterCategories keeps only questions in the named categories.
// An empty filter keeps everything.
func FilterCategories(qs []model.Question, categories []string) []model.Question {
	if len(categories) == 0 {
		return qs
	}
	keep := make(map[string]bool, len(categories))
	for _, c := range categories {
		keep[c] = true
	}
	var out []model.Question
	for _, q := range qs {
		if keep[q.Category] {
			out = append(out, q)
		}
	}
	return out
}

func validate(qs []model.Question, source string) error {
	if len(qs) == 0 {
		return fmt.Errorf("%s: no questions defined", source)
	}
	seen := make(map[string]bool, len(qs))
	for i, q := range qs {
		if q.ID == "" {
			return fmt.Errorf("%s: question %d has no id", source, i)
		}
		if q.Text == "" {
			return fmt.Errorf("%s: question %s has no text", source, q.ID)
		}
		if q.Category == "" {
			return fmt.Errorf("%s: question %s has no category", source, q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("%s: duplicate question id %s", source, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
