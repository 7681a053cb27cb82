package exporter

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"attendpulse/internal/attendance"
)

// Styling constants shared by every sheet. The fills mirror the standard
// Excel "bad" (light red) and "good" (light green) conditional formats.
const (
	headerFillColor  = "366092"
	warningFillColor = "FFC7CE"
	goodFillColor    = "C6EFCE"

	maxColumnWidth = 50
)

// ExcelRenderer renders the assembled report as an xlsx workbook, one sheet
// per section. It satisfies the report service's renderer contract.
type ExcelRenderer struct{}

// NewExcelRenderer creates a new Excel renderer.
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Extension returns the file extension for rendered workbooks.
func (r *ExcelRenderer) Extension() string { return ".xlsx" }

// Render writes every report section to its own sheet and returns the
// workbook bytes.
func (r *ExcelRenderer) Render(ctx context.Context, report *attendance.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	for i, section := range report.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := sheetName(section.Title)
		if i == 0 {
			// Reuse the default sheet rather than leaving it empty.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("create sheet %q: %w", name, err)
			}
		}

		var werr error
		switch section.Kind {
		case attendance.KindKeyValue:
			werr = writeKeyValueSheet(f, name, section, styles)
		case attendance.KindActions:
			werr = writeActionsSheet(f, name, section, styles)
		default:
			werr = writeTableSheet(f, name, section, styles)
		}
		if werr != nil {
			return nil, fmt.Errorf("write sheet %q: %w", name, werr)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header  int
	warning int
	good    int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	warning, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{warningFillColor}},
	})
	if err != nil {
		return nil, err
	}
	good, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{goodFillColor}},
	})
	if err != nil {
		return nil, err
	}
	return &sheetStyles{header: header, warning: warning, good: good}, nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		out = append(out, excelize.Border{Type: s, Style: 1, Color: "000000"})
	}
	return out
}

// writeKeyValueSheet lays out the executive summary: Metric/Value/Status
// triples, then each bullet list as a titled block.
func writeKeyValueSheet(f *excelize.File, sheet string, section attendance.Section, styles *sheetStyles) error {
	if err := writeRow(f, sheet, 1, []string{"Metric", "Value", "Status"}); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, 3, styles.header); err != nil {
		return err
	}

	row := 2
	for _, kv := range section.Pairs {
		if err := writeRow(f, sheet, row, []string{kv.Key, kv.Value, string(kv.Status)}); err != nil {
			return err
		}
		switch kv.Status {
		case attendance.StatusWarning:
			if err := styleCell(f, sheet, 3, row, styles.warning); err != nil {
				return err
			}
		case attendance.StatusOK:
			if err := styleCell(f, sheet, 3, row, styles.good); err != nil {
				return err
			}
		}
		row++
	}

	for _, bl := range section.Bullets {
		row++ // blank spacer line
		if err := writeRow(f, sheet, row, []string{bl.Title}); err != nil {
			return err
		}
		if err := styleRow(f, sheet, row, 1, styles.header); err != nil {
			return err
		}
		row++
		for _, item := range bl.Items {
			if err := writeRow(f, sheet, row, []string{"", item}); err != nil {
				return err
			}
			row++
		}
	}

	return fitColumns(f, sheet, 3)
}

func writeTableSheet(f *excelize.File, sheet string, section attendance.Section, styles *sheetStyles) error {
	if section.Table == nil {
		return nil
	}
	if err := writeRow(f, sheet, 1, section.Table.Headers); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, len(section.Table.Headers), styles.header); err != nil {
		return err
	}
	for i, row := range section.Table.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return fitColumns(f, sheet, len(section.Table.Headers))
}

var actionHeaders = []string{"Priority", "Employee", "Issue", "Details", "Recommended Action", "Timeline"}

func writeActionsSheet(f *excelize.File, sheet string, section attendance.Section, styles *sheetStyles) error {
	if err := writeRow(f, sheet, 1, actionHeaders); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, len(actionHeaders), styles.header); err != nil {
		return err
	}
	for i, a := range section.Actions {
		row := i + 2
		cells := []string{string(a.Priority), a.Employee, a.Issue, a.Details, a.RecommendedAction, a.Timeline}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return err
		}
		if a.Priority == attendance.PriorityHigh {
			if err := styleCell(f, sheet, 1, row, styles.warning); err != nil {
				return err
			}
		}
	}
	return fitColumns(f, sheet, len(actionHeaders))
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

// fitColumns widens each column to its longest cell, capped so narrative
// lines do not blow the layout up.
func fitColumns(f *excelize.File, sheet string, cols int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for col := 1; col <= cols; col++ {
		width := 0
		for _, row := range rows {
			if col-1 < len(row) && len(row[col-1]) > width {
				width = len(row[col-1])
			}
		}
		if width == 0 {
			continue
		}
		if width+2 > maxColumnWidth {
			width = maxColumnWidth - 2
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+2)); err != nil {
			return err
		}
	}
	return nil
}

// sheetName trims a section title to the 31-character xlsx sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
