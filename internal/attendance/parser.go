package attendance

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// numericColumns is the fixed vocabulary of columns coerced to float64 during
// construction. Leave-named columns are coerced by the substring rule instead;
// anything else passes through Record.Extra untouched.
var numericColumns = map[string]bool{
	ColEmployeeID: true,
	ColRegular:    true,
	ColLateIn:     true,
	ColEarlyOut:   true,
	ColAbsence:    true,
	ColNormalOT:   true,
	ColWeekendOT:  true,
	ColHolidayOT:  true,
}

// ParseWorkbook reads an attendance workbook from disk and builds a RecordSet.
// Files that are not spreadsheets fail with ErrInputFormat.
func ParseWorkbook(path string) (*RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	defer f.Close()
	return parseFile(f)
}

// ParseReader builds a RecordSet from an in-memory workbook, e.g. an upload.
func ParseReader(r io.Reader) (*RecordSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	defer f.Close()
	return parseFile(f)
}

func parseFile(f *excelize.File) (*RecordSet, error) {
	// Use the first sheet that carries at least a header band. Attendance
	// exports put everything on one sheet, but some tools prepend a cover
	// sheet.
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		rs, err := NewRecordSet(rows)
		if err != nil {
			return nil, err
		}
		slog.Debug("parsed attendance sheet",
			slog.String("sheet", name),
			slog.Int("employees", rs.Len()))
		return rs, nil
	}
	return nil, fmt.Errorf("%w: no sheet with tabular data", ErrInputFormat)
}

// NewRecordSet builds a RecordSet from raw rows. Row 0 is the nominal header
// band of the export and is discarded; row 1 carries the true column names;
// the rest are data rows.
func NewRecordSet(rows [][]string) (*RecordSet, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header band and a header row, got %d rows", ErrInputFormat, len(rows))
	}

	columns := cleanHeaders(rows[1])
	schema := buildSchema(columns)

	// Column index by name. Duplicate headers resolve last-wins, matching
	// the header-promotion behavior of the source exports.
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	byID := make(map[int64]int)
	seenDept := make(map[string]bool)
	extraCols := schema.ExtraColumns()

	for _, row := range rows[2:] {
		if rowEmpty(row) {
			continue
		}

		rec := Record{
			EmployeeID: int64(parseNumber(cell(row, ColEmployeeID))),
			FirstName:  cell(row, ColFirstName),
			Department: cell(row, ColDepartment),
			Regular:    parseNumber(cell(row, ColRegular)),
			LateIn:     parseNumber(cell(row, ColLateIn)),
			EarlyOut:   parseNumber(cell(row, ColEarlyOut)),
			Absence:    parseNumber(cell(row, ColAbsence)),
			NormalOT:   parseNumber(cell(row, ColNormalOT)),
			WeekendOT:  parseNumber(cell(row, ColWeekendOT)),
			HolidayOT:  parseNumber(cell(row, ColHolidayOT)),
		}

		if len(schema.LeaveColumns) > 0 {
			rec.Leave = make(map[string]float64, len(schema.LeaveColumns))
			for _, col := range schema.LeaveColumns {
				rec.Leave[col] = parseNumber(cell(row, col))
			}
		}

		for _, col := range extraCols {
			if v := cell(row, col); v != "" {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[col] = v
			}
		}

		if rec.Department != "" && !seenDept[rec.Department] {
			seenDept[rec.Department] = true
			schema.Departments = append(schema.Departments, rec.Department)
		}

		// Duplicate employee ids resolve last-wins, replacing in place so
		// row order stays stable.
		if at, dup := byID[rec.EmployeeID]; dup {
			records[at] = rec
			continue
		}
		byID[rec.EmployeeID] = len(records)
		records = append(records, rec)
	}

	return &RecordSet{
		Period:  time.Now().Format("January 2006"),
		Schema:  schema,
		Records: records,
	}, nil
}

// cleanHeaders trims each promoted header and substitutes a positional
// placeholder for blank ones so malformed exports never abort construction.
func cleanHeaders(raw []string) []string {
	columns := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Col_%d", i)
		}
		columns[i] = h
	}
	return columns
}

func buildSchema(columns []string) Schema {
	s := Schema{Columns: columns}
	for _, col := range columns {
		switch col {
		case ColRegular:
			s.HasWorkingHours = true
		case ColLateIn:
			s.HasLateArrivals = true
		case ColEarlyOut:
			s.HasEarlyDepartures = true
		case ColNormalOT:
			s.HasNormalOT = true
		case ColWeekendOT:
			s.HasWeekendOT = true
		case ColHolidayOT:
			s.HasHolidayOT = true
		case ColAbsence:
			s.HasAbsence = true
		case ColDepartment:
			s.HasDepartment = true
		default:
			if isLeaveColumn(col) {
				s.LeaveColumns = append(s.LeaveColumns, col)
			}
		}
	}
	return s
}

// parseNumber coerces a cell to float64, substituting 0 for anything that
// does not parse. Thousands separators from spreadsheet formatting are
// stripped first. Every metric is a non-negative quantity, so negative cells
// clamp to 0 rather than flowing into the aggregates.
func parseNumber(cell string) float64 {
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
