package newsletter

import (
	"io"
	"time"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/platform/export"
)

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{"email", "name", "status", "source", "subscribed_at", "unsubscribed_at"}

// WriteCSV writes subscribers as CSV with a header row. Cells starting
// with a formula trigger are quoted for spreadsheets.
func WriteCSV(w io.Writer, subscribers []Subscriber) error {
	writer := export.NewCSVWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return eris.Wrap(err, "writing csv header")
	}

	for _, subscriber := range subscribers {
		row := []string{
			subscriber.Email,
			subscriber.Name,
			string(subscriber.Status),
			subscriber.Source,
			formatTime(&subscriber.SubscribedAt),
			formatTime(subscriber.UnsubscribedAt),
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrapf(err, "writing csv row for %s", subscriber.Email)
		}
	}

	return writer.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
