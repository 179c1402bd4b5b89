/*
PURPOSE:
  GPT-family token counting via the cl100k_base BPE encoding
  (tiktoken). Exact counts, fully offline.

REQUIREMENTS:
  User-specified:
  - Exact GPT-4 token counts without network access.

  Implementation-discovered:
  - Encoding initialization can fail (embedded vocabulary load); probe
    it once at registry construction so selection fails up front.

ARCHITECTURE INTEGRATION:
  - Registered by: internal/tokenizer.NewRegistry
  - Dependencies: github.com/pkoukk/tiktoken-go

ERROR HANDLING:
  - NewTiktoken returns the probe error; Count cannot fail afterwards.

IMPLEMENTATION RULES:
  - cl100k_base is the GPT-4 / GPT-3.5-turbo encoding; the backend name
    stays "gpt4" to match the original measurement dataset.

USAGE:
  tk, err := tokenizer.NewTiktoken()
  n, _ := tk.Count(ctx, text)

SELF-HEALING INSTRUCTIONS:
  - If counts look wrong for a newer model family, check whether that
    model still uses cl100k_base.

RELATED FILES:
  - internal/tokenizer/tokenizer.go

MAINTENANCE:
  - Update the encoding name when targeting newer OpenAI vocabularies.
*/

package tokenizer

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenName selects the GPT BPE backend.
const TiktokenName = "gpt4"

const tiktokenEncoding = "cl100k_base"

// Tiktoken counts tokens with an exact GPT BPE encoding.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding. The returned error marks
// the backend unavailable; the Counter is still non-nil so the
// registry can report its name.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(tiktokenEncoding)
	if err != nil {
		return &Tiktoken{}, fmt.Errorf("loading %s encoding: %w", tiktokenEncoding, err)
	}
	return &Tiktoken{encoding: enc}, nil
}

// Name implements Counter.
func (t *Tiktoken) Name() string { return TiktokenName }

// Count implements Counter.
func (t *Tiktoken) Count(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(t.encoding.Encode(text, nil, nil)), nil
}
