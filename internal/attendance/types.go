package attendance

import (
	"strings"
)

// Canonical source column names. Input files identify metrics by these exact
// headers; any column whose name contains "Leave" is treated as a leave type.
const (
	ColEmployeeID = "Employee ID"
	ColFirstName  = "First Name"
	ColDepartment = "Department"
	ColRegular    = "Regular(H)"
	ColLateIn     = "Late In(M)"
	ColEarlyOut   = "Early Out(M)"
	ColAbsence    = "Absence(H)"
	ColNormalOT   = "Normal OT(H)"
	ColWeekendOT  = "Weekend OT(H)"
	ColHolidayOT  = "Holiday OT(H)"
)

// Severity classifies how serious a single employee's late-arrival total is.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Priority classifies how urgently HR should follow up with an employee.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Record holds one employee's monthly attendance totals. Every numeric field
// is always populated after construction: a missing or unparsable source cell
// becomes 0, and whether the column existed at all is tracked in the Schema.
type Record struct {
	EmployeeID int64
	FirstName  string
	Department string

	Regular   float64 // regular working hours
	LateIn    float64 // late-arrival minutes
	EarlyOut  float64 // early-departure minutes
	Absence   float64 // absence hours
	NormalOT  float64
	WeekendOT float64
	HolidayOT float64

	// Leave maps the source column name (e.g. "Annual Leave(H)") to hours.
	// The key set is whatever Leave-named columns the file carried.
	Leave map[string]float64

	// Extra carries unknown columns untouched, keyed by header name.
	Extra map[string]string
}

// TotalOT sums the three overtime categories. Columns absent from the source
// contribute 0, so the sum equals the sum over present columns.
func (r Record) TotalOT() float64 {
	return r.NormalOT + r.WeekendOT + r.HolidayOT
}

// TotalLeave sums hours across every leave-type column.
func (r Record) TotalLeave() float64 {
	var total float64
	for _, v := range r.Leave {
		total += v
	}
	return total
}

// Schema describes which metric families the source file actually carried.
// It is built once during construction and consulted instead of re-checking
// raw column names at every call site.
type Schema struct {
	Columns []string // cleaned header names in file order

	HasWorkingHours    bool
	HasLateArrivals    bool
	HasEarlyDepartures bool
	HasNormalOT        bool
	HasWeekendOT       bool
	HasHolidayOT       bool
	HasAbsence         bool
	HasDepartment      bool

	// LeaveColumns lists every column whose name contains "Leave", in file order.
	LeaveColumns []string

	// Departments holds the distinct department values in first-seen row order.
	Departments []string
}

// HasOvertime reports whether any overtime column exists.
func (s Schema) HasOvertime() bool {
	return s.HasNormalOT || s.HasWeekendOT || s.HasHolidayOT
}

// HasLeave reports whether any leave-type column exists.
func (s Schema) HasLeave() bool {
	return len(s.LeaveColumns) > 0
}

// Accessor returns a getter for the named metric column, or false when the
// column is absent from this record set. Leave columns are addressed by their
// full source name.
func (s Schema) Accessor(metric string) (func(Record) float64, bool) {
	switch metric {
	case ColRegular:
		if s.HasWorkingHours {
			return func(r Record) float64 { return r.Regular }, true
		}
	case ColLateIn:
		if s.HasLateArrivals {
			return func(r Record) float64 { return r.LateIn }, true
		}
	case ColEarlyOut:
		if s.HasEarlyDepartures {
			return func(r Record) float64 { return r.EarlyOut }, true
		}
	case ColAbsence:
		if s.HasAbsence {
			return func(r Record) float64 { return r.Absence }, true
		}
	case ColNormalOT:
		if s.HasNormalOT {
			return func(r Record) float64 { return r.NormalOT }, true
		}
	case ColWeekendOT:
		if s.HasWeekendOT {
			return func(r Record) float64 { return r.WeekendOT }, true
		}
	case ColHolidayOT:
		if s.HasHolidayOT {
			return func(r Record) float64 { return r.HolidayOT }, true
		}
	}
	for _, col := range s.LeaveColumns {
		if col == metric {
			return func(r Record) float64 { return r.Leave[col] }, true
		}
	}
	return nil, false
}

// MetricColumns lists every numeric metric column present in this record set.
func (s Schema) MetricColumns() []string {
	var cols []string
	add := func(ok bool, name string) {
		if ok {
			cols = append(cols, name)
		}
	}
	add(s.HasWorkingHours, ColRegular)
	add(s.HasLateArrivals, ColLateIn)
	add(s.HasEarlyDepartures, ColEarlyOut)
	add(s.HasAbsence, ColAbsence)
	add(s.HasNormalOT, ColNormalOT)
	add(s.HasWeekendOT, ColWeekendOT)
	add(s.HasHolidayOT, ColHolidayOT)
	cols = append(cols, s.LeaveColumns...)
	return cols
}

// ExtraColumns lists the pass-through columns in file order: everything
// outside the identity columns, the metric vocabulary, and the leave types.
func (s Schema) ExtraColumns() []string {
	var cols []string
	for _, col := range s.Columns {
		if numericColumns[col] || isLeaveColumn(col) ||
			col == ColFirstName || col == ColDepartment {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// RecordSet is the cleaned, typed attendance table for one reporting period.
// It is immutable after construction; every derived view is a fresh value.
type RecordSet struct {
	Period  string // human-readable reporting period, e.g. "November 2024"
	Schema  Schema
	Records []Record // read-only; ordered as in the source file
}

// Len returns the number of employees.
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// Totals holds the whole-set aggregates used by the summary and insights.
type Totals struct {
	TotalEmployees   int
	AvgWorkingHours  float64
	TotalRegular     float64
	TotalLateMinutes float64
	TotalOvertime    float64 // normal OT only, matching the monthly summary
	TotalAbsence     float64
}

// MonthlyTotals computes the whole-set aggregates. Absent metric families
// contribute their neutral zero value.
func (rs *RecordSet) MonthlyTotals() Totals {
	t := Totals{TotalEmployees: len(rs.Records)}
	for _, r := range rs.Records {
		t.TotalRegular += r.Regular
		t.TotalLateMinutes += r.LateIn
		t.TotalOvertime += r.NormalOT
		t.TotalAbsence += r.Absence
	}
	if len(rs.Records) > 0 && rs.Schema.HasWorkingHours {
		t.AvgWorkingHours = t.TotalRegular / float64(len(rs.Records))
	}
	return t
}

// MetricsAvailable reports per-family availability the way the data summary
// endpoint exposes it.
func (rs *RecordSet) MetricsAvailable() map[string]bool {
	return map[string]bool{
		"working_hours":    rs.Schema.HasWorkingHours,
		"late_arrivals":    rs.Schema.HasLateArrivals,
		"early_departures": rs.Schema.HasEarlyDepartures,
		"overtime":         rs.Schema.HasNormalOT,
		"leaves":           rs.Schema.HasLeave(),
		"absences":         rs.Schema.HasAbsence,
	}
}

// isLeaveColumn reports whether a header names a leave-type metric.
func isLeaveColumn(name string) bool {
	return strings.Contains(name, "Leave")
}
