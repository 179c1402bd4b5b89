/*
PURPOSE:
  Defines the core data structures used throughout tokenmeter.
  These models represent documentation formats, test questions, and
  individual token measurements.

REQUIREMENTS:
  User-specified:
  - Record format, question, tokenizer, trial, token count, context size.
  - Formats are a closed set, not user-extensible.

  Implementation-discovered:
  - Need JSON tags for the report file.
  - Need YAML tags on Question for external question files.

ARCHITECTURE INTEGRATION:
  - Used by: internal/docs, internal/engine, internal/stats, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - ParseFormat returns an error for unknown names; everything else is
    pure data.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Measurement is immutable once created; nothing mutates it downstream.

USAGE:
  m := model.Measurement{...}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update CSV/JSON writers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when adding new formats or measurement fields.
*/

package model

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies which documentation files are concatenated to build
// a measurement context. Closed enumeration.
type Format string

const (
	// FormatReadmeOnly loads README.md alone. Default baseline.
	FormatReadmeOnly Format = "README_ONLY"
	// FormatAgentsOnly loads README.md plus AGENTS.md.
	FormatAgentsOnly Format = "AGENTS_ONLY"
	// FormatAICaC loads README.md, AGENTS.md, and every .ai/ file.
	// Models what current AI tools load out of the box.
	FormatAICaC Format = "AICAC"
	// FormatAICaCSelective loads AGENTS.md plus only the .ai/ files
	// mapped to the active question's category. Models an AI tool that
	// follows the AGENTS.md routing guidance.
	FormatAICaCSelective Format = "AICAC_SELECTIVE"
)

// AllFormats lists every known format in report order.
var AllFormats = []Format{
	FormatReadmeOnly,
	FormatAgentsOnly,
	FormatAICaC,
	FormatAICaCSelective,
}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (known: %s)", s, FormatNames(AllFormats))
}

// FormatNames renders a format slice for error messages and logs.
func FormatNames(formats []Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Question is one task a reader (or AI assistant) might ask about the
// repository under measurement.
type Question struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"question" yaml:"question"`
	Category string `json:"category" yaml:"category"`
}

// CategoryPrefix returns the short category code carried by the
// question ID, e.g. "IR" for "IR-001". Selective loading keys off it.
func (q Question) CategoryPrefix() string {
	if i := strings.IndexByte(q.ID, '-'); i > 0 {
		return q.ID[:i]
	}
	return q.ID
}

// Measurement is a single observation: one (format, question,
// tokenizer, trial) combination. Created once after a successful token
// count; never mutated.
type Measurement struct {
	Format        Format    `json:"format"`
	QuestionID    string    `json:"question_id"`
	Question      string    `json:"question"`
	Category      string    `json:"category"`
	Tokenizer     string    `json:"tokenizer"`
	Trial         int       `json:"trial"`
	TokenCount    int       `json:"token_count"`
	ContextLength int       `json:"context_length"`
	FilesLoaded   []string  `json:"files_loaded"`
	Timestamp     time.Time `json:"timestamp"`
}
