package analytics

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; anything else defaults to CSV.
func ParseFormat(s string) Format {
	if Format(s) == FormatJSON {
		return FormatJSON
	}
	return FormatCSV
}

// ContentType returns the MIME type of the export.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Filename returns the download name for an export made at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("autoblog-analytics-%s.%s", t.Format("2006-01-02"), f)
}

// Export writes the last MaxDays days in format f. CSV lists every record
// (Date, Topic, Status, Published); JSON is the full report.
func (s *Service) Export(ctx context.Context, f Format, w io.Writer) error {
	if f == FormatJSON {
		r, err := s.Analytics(ctx, MaxDays)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	records, err := s.store.Since(ctx, s.now().AddDate(0, 0, -MaxDays))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Topic", "Status", "Published"}); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	const layout = "2006-01-02 15:04:05"
	for _, rec := range records {
		published := "N/A"
		if rec.PublishedAt != nil {
			published = rec.PublishedAt.Format(layout)
		}
		row := []string{rec.GeneratedAt.Format(layout), rec.Topic, string(rec.Status), published}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
