package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"attendpulse/internal/attendance"
)

// CSVRenderer renders the assembled report as a single CSV document. Sections
// appear in report order, each introduced by a title line and separated by a
// blank line.
type CSVRenderer struct {
	// BOMPrefix prepends a UTF-8 BOM so Excel opens the file with the right
	// encoding. On by default via NewCSVRenderer.
	BOMPrefix bool
}

// NewCSVRenderer creates a new CSV renderer with Excel-friendly defaults.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{BOMPrefix: true}
}

// Extension returns the file extension for rendered documents.
func (r *CSVRenderer) Extension() string { return ".csv" }

// Render implements the report service's renderer contract.
func (r *CSVRenderer) Render(ctx context.Context, report *attendance.Report) ([]byte, error) {
	var buf bytes.Buffer
	if r.BOMPrefix {
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	w := csv.NewWriter(&buf)
	for i, section := range report.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			w.Flush()
			buf.WriteByte('\n')
		}
		if err := writeSection(w, section); err != nil {
			return nil, fmt.Errorf("write section %q: %w", section.Title, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSection(w *csv.Writer, section attendance.Section) error {
	if err := w.Write([]string{section.Title}); err != nil {
		return err
	}

	switch section.Kind {
	case attendance.KindKeyValue:
		for _, kv := range section.Pairs {
			if err := w.Write([]string{kv.Key, kv.Value, string(kv.Status)}); err != nil {
				return err
			}
		}
		for _, bl := range section.Bullets {
			if err := w.Write([]string{bl.Title}); err != nil {
				return err
			}
			for _, item := range bl.Items {
				if err := w.Write([]string{"", item}); err != nil {
					return err
				}
			}
		}

	case attendance.KindActions:
		if err := w.Write(actionHeaders); err != nil {
			return err
		}
		for _, a := range section.Actions {
			row := []string{string(a.Priority), a.Employee, a.Issue, a.Details, a.RecommendedAction, a.Timeline}
			if err := w.Write(row); err != nil {
				return err
			}
		}

	default:
		if section.Table == nil {
			return nil
		}
		if err := w.Write(section.Table.Headers); err != nil {
			return err
		}
		for _, row := range section.Table.Rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
