package attendance

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Section kinds. A renderer switches on the kind to decide which payload
// field carries the content.
type SectionKind string

const (
	KindKeyValue SectionKind = "key_value"
	KindTable    SectionKind = "table"
	KindActions  SectionKind = "actions"
)

// Status grades a single executive-summary line.
type Status string

const (
	StatusInfo    Status = "Info"
	StatusOK      Status = "OK"
	StatusWarning Status = "Warning"
)

// Executive-summary thresholds on the whole-company totals.
const (
	healthyAvgHours    = 160
	warnTotalLateMin   = 500
	warnTotalOvertime  = 200
	warnTotalAbsenceHr = 100
)

// KeyValue is one metric line of the executive summary.
type KeyValue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Status Status `json:"status"`
}

// BulletList is a titled list of narrative lines (concerns, recommendations).
type BulletList struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Table is a rendered metric view: a header row plus data rows, all stringified
// so exporters never re-derive formatting.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Section is one ordered report section. Exactly one payload field is set,
// according to Kind, except the executive summary which carries both key-values
// and bullet lists.
type Section struct {
	Title   string       `json:"title"`
	Kind    SectionKind  `json:"kind"`
	Pairs   []KeyValue   `json:"pairs,omitempty"`
	Bullets []BulletList `json:"bullets,omitempty"`
	Table   *Table       `json:"table,omitempty"`
	Actions []ActionItem `json:"actions,omitempty"`
}

// Report is the format-agnostic assembly that every exporter (Excel, CSV,
// JSON) renders from. Sections appear in a fixed order; sections whose metric
// family is absent from the source file are omitted entirely, while a present
// family with no qualifying rows still yields its (empty-bodied) section.
type Report struct {
	Period   string    `json:"period"`
	Summary  Summary   `json:"summary"`
	Sections []Section `json:"sections"`
}

// AssembleReport materializes the full report model from a record set and its
// derived insights. The metric views are independent pure functions, so they
// are computed concurrently; assembly order is fixed regardless.
func AssembleReport(ctx context.Context, rs *RecordSet, ins *Insights) (*Report, error) {
	var (
		late  []LateArrival
		ot    []OvertimeRow
		leave []LeaveRow
		depts []DepartmentRollup
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { late = rs.LateArrivals(1); return nil })
	g.Go(func() error { ot = rs.Overtime(); return nil })
	g.Go(func() error { leave = rs.LeaveUsage(); return nil })
	g.Go(func() error { depts = rs.DepartmentRollups(); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Period:  rs.Period,
		Summary: ins.Summary,
	}

	rep.Sections = append(rep.Sections, executiveSummary(rs, ins))
	rep.Sections = append(rep.Sections, employeeDetails(rs, ins))
	if rs.Schema.HasLateArrivals {
		rep.Sections = append(rep.Sections, lateArrivalsSection(late))
	}
	if rs.Schema.HasOvertime() {
		rep.Sections = append(rep.Sections, overtimeSection(ot))
	}
	if rs.Schema.HasLeave() {
		rep.Sections = append(rep.Sections, leaveSection(rs, leave))
	}
	if rs.Schema.HasDepartment {
		rep.Sections = append(rep.Sections, departmentSection(rs, depts))
	}
	rep.Sections = append(rep.Sections, Section{
		Title:   "Action Items",
		Kind:    KindActions,
		Actions: ins.ActionItems,
	})
	return rep, nil
}

func executiveSummary(rs *RecordSet, ins *Insights) Section {
	s := ins.Summary
	pairs := []KeyValue{
		{Key: "Report Period", Value: rs.Period, Status: StatusInfo},
		{Key: "Total Employees", Value: strconv.Itoa(s.TotalEmployees), Status: StatusInfo},
	}
	if rs.Schema.HasWorkingHours {
		st := StatusWarning
		if s.AvgWorkingHours >= healthyAvgHours {
			st = StatusOK
		}
		pairs = append(pairs, KeyValue{
			Key: "Average Working Hours", Value: fmt.Sprintf("%.1f", s.AvgWorkingHours), Status: st,
		})
	}
	if rs.Schema.HasLateArrivals {
		pairs = append(pairs, KeyValue{
			Key:    "Total Late Minutes",
			Value:  fmt.Sprintf("%.0f", s.TotalLateMinutes),
			Status: warnAbove(s.TotalLateMinutes, warnTotalLateMin),
		})
	}
	if rs.Schema.HasNormalOT {
		pairs = append(pairs, KeyValue{
			Key:    "Total Overtime Hours",
			Value:  fmt.Sprintf("%.1f", s.TotalOvertime),
			Status: warnAbove(s.TotalOvertime, warnTotalOvertime),
		})
	}
	if rs.Schema.HasAbsence {
		pairs = append(pairs, KeyValue{
			Key:    "Total Absence Hours",
			Value:  fmt.Sprintf("%.1f", s.TotalAbsence),
			Status: warnAbove(s.TotalAbsence, warnTotalAbsenceHr),
		})
	}
	if n := len(ins.Concerns); n > 0 {
		pairs = append(pairs, KeyValue{
			Key: "Open Concerns", Value: strconv.Itoa(n), Status: StatusWarning,
		})
	}

	var bullets []BulletList
	if len(ins.Concerns) > 0 {
		bullets = append(bullets, BulletList{Title: "KEY CONCERNS", Items: ins.Concerns})
	}
	if len(ins.Recommendations) > 0 {
		bullets = append(bullets, BulletList{Title: "RECOMMENDATIONS", Items: ins.Recommendations})
	}
	if len(ins.Highlights) > 0 {
		bullets = append(bullets, BulletList{Title: "HIGHLIGHTS", Items: ins.Highlights})
	}

	return Section{
		Title:   "Executive Summary",
		Kind:    KindKeyValue,
		Pairs:   pairs,
		Bullets: bullets,
	}
}

// employeeDetails lists every employee with each metric column the file
// carried, plus the derived HR note and follow-up priority.
func employeeDetails(rs *RecordSet, ins *Insights) Section {
	metricCols := rs.Schema.MetricColumns()
	extraCols := rs.Schema.ExtraColumns()

	headers := []string{ColEmployeeID, ColFirstName}
	if rs.Schema.HasDepartment {
		headers = append(headers, ColDepartment)
	}
	headers = append(headers, metricCols...)
	headers = append(headers, extraCols...)
	headers = append(headers, "HR Notes", "Priority")

	rows := make([][]string, 0, len(rs.Records))
	for _, r := range rs.Records {
		ann := ins.Annotations[r.EmployeeID]
		row := []string{strconv.FormatInt(r.EmployeeID, 10), r.FirstName}
		if rs.Schema.HasDepartment {
			row = append(row, r.Department)
		}
		for _, col := range metricCols {
			get, _ := rs.Schema.Accessor(col)
			row = append(row, formatHours(get(r)))
		}
		for _, col := range extraCols {
			row = append(row, r.Extra[col])
		}
		row = append(row, ann.Note, string(ann.Priority))
		rows = append(rows, row)
	}

	return Section{
		Title: "Employee Details",
		Kind:  KindTable,
		Table: &Table{Headers: headers, Rows: rows},
	}
}

func lateArrivalsSection(late []LateArrival) Section {
	t := &Table{Headers: []string{
		ColEmployeeID, ColFirstName, ColDepartment,
		"Late Minutes", "Est. Occurrences", "Severity", "Follow-up",
	}}
	for _, l := range late {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(l.EmployeeID, 10),
			l.FirstName,
			l.Department,
			fmt.Sprintf("%.0f", l.LateMinutes),
			strconv.Itoa(l.Occurrences),
			string(LateSeverity(l.LateMinutes)),
			LateFollowUp(l.LateMinutes),
		})
	}
	return Section{Title: "Late Arrivals", Kind: KindTable, Table: t}
}

// overtimeSection lists only employees who logged any overtime; the full
// unfiltered view stays available through the HTTP surface.
func overtimeSection(ot []OvertimeRow) Section {
	t := &Table{Headers: []string{
		ColEmployeeID, ColFirstName, ColDepartment,
		"Normal OT", "Weekend OT", "Holiday OT", "Total OT", "Level", "Action",
	}}
	for _, o := range ot {
		if o.TotalOT <= 0 {
			continue
		}
		level, action := OvertimeLevel(o.TotalOT)
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(o.EmployeeID, 10),
			o.FirstName,
			o.Department,
			formatHours(o.NormalOT),
			formatHours(o.WeekendOT),
			formatHours(o.HolidayOT),
			formatHours(o.TotalOT),
			level,
			action,
		})
	}
	return Section{Title: "Overtime Analysis", Kind: KindTable, Table: t}
}

func leaveSection(rs *RecordSet, leave []LeaveRow) Section {
	headers := []string{ColEmployeeID, ColFirstName, ColDepartment}
	headers = append(headers, rs.Schema.LeaveColumns...)
	headers = append(headers, "Total Leave")

	t := &Table{Headers: headers}
	for _, l := range leave {
		row := []string{strconv.FormatInt(l.EmployeeID, 10), l.FirstName, l.Department}
		for _, col := range rs.Schema.LeaveColumns {
			row = append(row, formatHours(l.ByType[col]))
		}
		row = append(row, formatHours(l.TotalLeave))
		t.Rows = append(t.Rows, row)
	}
	return Section{Title: "Leave Analysis", Kind: KindTable, Table: t}
}

// departmentSection emits only the sum columns whose metric family the file
// carried; the rollup struct keeps zeros for the rest.
func departmentSection(rs *RecordSet, depts []DepartmentRollup) Section {
	headers := []string{"Department", "Employees"}
	if rs.Schema.HasWorkingHours {
		headers = append(headers, "Total Hours")
	}
	if rs.Schema.HasLateArrivals {
		headers = append(headers, "Late Minutes")
	}
	if rs.Schema.HasEarlyDepartures {
		headers = append(headers, "Early Out Minutes")
	}
	if rs.Schema.HasNormalOT {
		headers = append(headers, "Normal OT")
	}
	if rs.Schema.HasAbsence {
		headers = append(headers, "Absence Hours")
	}

	t := &Table{Headers: headers}
	for _, d := range depts {
		row := []string{d.Department, strconv.Itoa(d.EmployeeCount)}
		if rs.Schema.HasWorkingHours {
			row = append(row, formatHours(d.Regular))
		}
		if rs.Schema.HasLateArrivals {
			row = append(row, fmt.Sprintf("%.0f", d.LateMinutes))
		}
		if rs.Schema.HasEarlyDepartures {
			row = append(row, fmt.Sprintf("%.0f", d.EarlyOut))
		}
		if rs.Schema.HasNormalOT {
			row = append(row, formatHours(d.NormalOT))
		}
		if rs.Schema.HasAbsence {
			row = append(row, formatHours(d.Absence))
		}
		t.Rows = append(t.Rows, row)
	}
	return Section{Title: "Department Summary", Kind: KindTable, Table: t}
}

func warnAbove(v, threshold float64) Status {
	if v > threshold {
		return StatusWarning
	}
	return StatusOK
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
