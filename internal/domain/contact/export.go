package contact

import (
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/platform/export"
)

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{"id", "kind", "name", "email", "company", "phone", "subject", "message", "status", "created_at"}

// WriteCSV writes submissions as CSV with a header row. Cells starting
// with a formula trigger are quoted for spreadsheets.
func WriteCSV(w io.Writer, submissions []Submission) error {
	writer := export.NewCSVWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return eris.Wrap(err, "writing csv header")
	}

	for _, submission := range submissions {
		row := []string{
			strconv.FormatUint(uint64(submission.ID), 10),
			string(submission.Kind),
			submission.Name,
			submission.Email,
			submission.Company,
			submission.Phone,
			submission.Subject,
			submission.Message,
			string(submission.Status),
			submission.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrapf(err, "writing csv row for submission %d", submission.ID)
		}
	}

	return writer.Flush()
}
