/*
PURPOSE:
  Writes measurements to a JSON Lines file (NDJSON) as they are taken.
  Optimized for machine parsing and jq-style post-analysis.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is better for streaming/logging than a single large array
    (append-friendly); the final report file carries the array form.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Measurement

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONLWriter("token_results.jsonl")
  w.Write(m)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go
  - internal/output/report.go

MAINTENANCE:
  - Update if we switch to plain JSON array (not recommended for streaming).
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/aicac-project/tokenmeter/internal/model"
)

// JSONLWriter handles writing measurements to a JSON Lines file.
type JSONLWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONLWriter creates a new JSONLWriter.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONLWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single measurement as a JSON line.
func (jw *JSONLWriter) Write(m model.Measurement) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(m)
}

// Close closes the underlying file.
func (jw *JSONLWriter) Close() error {
	return jw.file.Close()
}
