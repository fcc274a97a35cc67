// Package export writes admin downloads.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVWriter writes rows whose cells may hold visitor input. Cells that a
// spreadsheet would evaluate as a formula are prefixed with a single quote.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter returns a CSVWriter on w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes one row.
func (c *CSVWriter) Write(row []string) error {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = SafeCell(cell)
	}
	return eris.Wrap(c.w.Write(cells), "writing csv row")
}

// Flush flushes buffered rows and returns any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return eris.Wrap(c.w.Error(), "flushing csv")
}

// SafeCell neutralises a leading formula trigger.
func SafeCell(value string) string {
	if value == "" {
		return value
	}
	if strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}
