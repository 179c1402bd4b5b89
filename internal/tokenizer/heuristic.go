/*
PURPOSE:
  Heuristic token estimator: ~4 characters per token.
  The zero-dependency backend that is always available.

REQUIREMENTS:
  User-specified:
  - Offline runs must work without any tokenizer library or API key.

  Implementation-discovered:
  - Rune count (not byte count) handles unicode correctly.
  - Ceiling division keeps non-empty text above zero tokens.

ARCHITECTURE INTEGRATION:
  - Registered by: internal/tokenizer.NewRegistry

ERROR HANDLING:
  - Pure function; Count never fails.

IMPLEMENTATION RULES:
  - The 4-chars-per-token rule of thumb tracks English prose for
    GPT/Claude-family vocabularies closely enough for comparative use.

USAGE:
  h := tokenizer.NewHeuristic()
  n, _ := h.Count(ctx, "some documentation text")

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/tokenizer/tokenizer.go

MAINTENANCE:
  - None.
*/

package tokenizer

import (
	"context"
	"unicode/utf8"
)

// HeuristicName selects the chars/4 estimator.
const HeuristicName = "heuristic"

// Heuristic estimates token counts as ceil(runes / 4).
type Heuristic struct{}

// NewHeuristic creates the estimator.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name implements Counter.
func (h *Heuristic) Name() string { return HeuristicName }

// Count implements Counter.
func (h *Heuristic) Count(_ context.Context, text string) (int, error) {
	if len(text) == 0 {
		return 0, nil
	}
	return (utf8.RuneCountInString(text) + 3) / 4, nil
}
