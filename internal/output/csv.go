/*
PURPOSE:
  Writes measurements to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV alongside the JSON report.

  Implementation-discovered:
  - Overwrite on each run; a run is a complete, self-contained dataset.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Measurement

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex if concurrent writes are expected.

USAGE:
  w, err := output.NewCSVWriter("token_results.csv")
  w.Write(m)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Measurement struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aicac-project/tokenmeter/internal/model"
)

// CSVWriter handles writing measurements to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"format", "question_id", "category", "tokenizer", "trial",
		"token_count", "context_length", "files_loaded", "timestamp",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single measurement to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(m model.Measurement) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		string(m.Format),
		m.QuestionID,
		m.Category,
		m.Tokenizer,
		fmt.Sprintf("%d", m.Trial),
		fmt.Sprintf("%d", m.TokenCount),
		fmt.Sprintf("%d", m.ContextLength),
		strings.Join(m.FilesLoaded, ";"),
		m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
