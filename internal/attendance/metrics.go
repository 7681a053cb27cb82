package attendance

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Every view in this file is a pure function of the RecordSet: no shared
// state, no mutation, identical output on repeated calls. Ties always keep
// the original row order (stable sort).

// LateArrival is one row of the late-arrivals view.
type LateArrival struct {
	EmployeeID  int64   `json:"employee_id"`
	FirstName   string  `json:"first_name"`
	Department  string  `json:"department"`
	LateMinutes float64 `json:"late_minutes"`
	// Occurrences estimates how many times the employee was late by dividing
	// the monthly minute total by 30 and rounding up. The source data only
	// carries aggregate minutes, not per-day events, so this is an
	// approximation, not a count.
	Occurrences int `json:"occurrences"`
}

// LateArrivals returns employees with any late minutes, most-late first,
// keeping only those whose estimated occurrence count is at least
// minOccurrences. Empty when the file had no late-arrival column.
func (rs *RecordSet) LateArrivals(minOccurrences int) []LateArrival {
	if !rs.Schema.HasLateArrivals {
		return nil
	}
	var out []LateArrival
	for _, r := range rs.Records {
		if r.LateIn <= 0 {
			continue
		}
		occ := int(math.Ceil(r.LateIn / 30))
		if occ < minOccurrences {
			continue
		}
		out = append(out, LateArrival{
			EmployeeID:  r.EmployeeID,
			FirstName:   r.FirstName,
			Department:  r.Department,
			LateMinutes: r.LateIn,
			Occurrences: occ,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LateMinutes > out[j].LateMinutes
	})
	return out
}

// OvertimeRow is one row of the overtime view.
type OvertimeRow struct {
	EmployeeID int64   `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	Department string  `json:"department"`
	NormalOT   float64 `json:"normal_ot"`
	WeekendOT  float64 `json:"weekend_ot"`
	HolidayOT  float64 `json:"holiday_ot"`
	TotalOT    float64 `json:"total_ot"`
}

// Overtime totals whichever overtime columns exist and ranks employees by the
// total, highest first. Empty when no overtime column exists.
func (rs *RecordSet) Overtime() []OvertimeRow {
	if !rs.Schema.HasOvertime() {
		return nil
	}
	out := make([]OvertimeRow, 0, len(rs.Records))
	for _, r := range rs.Records {
		out = append(out, OvertimeRow{
			EmployeeID: r.EmployeeID,
			FirstName:  r.FirstName,
			Department: r.Department,
			NormalOT:   r.NormalOT,
			WeekendOT:  r.WeekendOT,
			HolidayOT:  r.HolidayOT,
			TotalOT:    r.TotalOT(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalOT > out[j].TotalOT
	})
	return out
}

// HoursRow is one row of the working-hours view.
type HoursRow struct {
	EmployeeID int64   `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	Department string  `json:"department"`
	Regular    float64 `json:"regular_hours"`
}

// WorkingHours ranks employees by regular hours, highest first.
func (rs *RecordSet) WorkingHours() []HoursRow {
	if !rs.Schema.HasWorkingHours {
		return nil
	}
	out := make([]HoursRow, 0, len(rs.Records))
	for _, r := range rs.Records {
		out = append(out, HoursRow{
			EmployeeID: r.EmployeeID,
			FirstName:  r.FirstName,
			Department: r.Department,
			Regular:    r.Regular,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Regular > out[j].Regular
	})
	return out
}

// LeaveRow is one row of the leave view.
type LeaveRow struct {
	EmployeeID int64              `json:"employee_id"`
	FirstName  string             `json:"first_name"`
	Department string             `json:"department"`
	ByType     map[string]float64 `json:"by_type"`
	TotalLeave float64            `json:"total_leave"`
}

// LeaveUsage totals every leave-type column, keeps employees with any leave,
// and ranks by the total. Empty when the file carried no Leave-named column.
func (rs *RecordSet) LeaveUsage() []LeaveRow {
	if !rs.Schema.HasLeave() {
		return nil
	}
	var out []LeaveRow
	for _, r := range rs.Records {
		total := r.TotalLeave()
		if total <= 0 {
			continue
		}
		byType := make(map[string]float64, len(r.Leave))
		for k, v := range r.Leave {
			byType[k] = v
		}
		out = append(out, LeaveRow{
			EmployeeID: r.EmployeeID,
			FirstName:  r.FirstName,
			Department: r.Department,
			ByType:     byType,
			TotalLeave: total,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalLeave > out[j].TotalLeave
	})
	return out
}

// AbsenceRow is one row of the absence view.
type AbsenceRow struct {
	EmployeeID   int64   `json:"employee_id"`
	FirstName    string  `json:"first_name"`
	Department   string  `json:"department"`
	AbsenceHours float64 `json:"absence_hours"`
}

// Absences returns employees with any absence hours, highest first.
func (rs *RecordSet) Absences() []AbsenceRow {
	if !rs.Schema.HasAbsence {
		return nil
	}
	var out []AbsenceRow
	for _, r := range rs.Records {
		if r.Absence <= 0 {
			continue
		}
		out = append(out, AbsenceRow{
			EmployeeID:   r.EmployeeID,
			FirstName:    r.FirstName,
			Department:   r.Department,
			AbsenceHours: r.Absence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AbsenceHours > out[j].AbsenceHours
	})
	return out
}

// DepartmentRollup aggregates one department. Sum fields for metric families
// absent from the record set stay zero; renderers consult the Schema to know
// which columns to emit rather than fabricating zeros.
type DepartmentRollup struct {
	Department    string  `json:"department"`
	EmployeeCount int     `json:"employee_count"`
	Regular       float64 `json:"regular_hours"`
	LateMinutes   float64 `json:"late_minutes"`
	EarlyOut      float64 `json:"early_out_minutes"`
	NormalOT      float64 `json:"normal_ot"`
	Absence       float64 `json:"absence_hours"`
}

// DepartmentRollups groups employees by department, in first-seen order.
// Empty when the file had no department column.
func (rs *RecordSet) DepartmentRollups() []DepartmentRollup {
	if !rs.Schema.HasDepartment {
		return nil
	}
	byDept := make(map[string]*DepartmentRollup, len(rs.Schema.Departments))
	out := make([]DepartmentRollup, 0, len(rs.Schema.Departments))
	order := make([]string, 0, len(rs.Schema.Departments))
	for _, r := range rs.Records {
		agg, ok := byDept[r.Department]
		if !ok {
			agg = &DepartmentRollup{Department: r.Department}
			byDept[r.Department] = agg
			order = append(order, r.Department)
		}
		agg.EmployeeCount++
		agg.Regular += r.Regular
		agg.LateMinutes += r.LateIn
		agg.EarlyOut += r.EarlyOut
		agg.NormalOT += r.NormalOT
		agg.Absence += r.Absence
	}
	for _, dept := range order {
		out = append(out, *byDept[dept])
	}
	return out
}

// RankedRow is one row of a generic Top-N ranking.
type RankedRow struct {
	EmployeeID int64   `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	Department string  `json:"department"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
}

// TopN ranks employees by any single metric column, highest first. Asking for
// a column absent from the record set is the one per-operation failure mode:
// it returns an UnknownMetricError instead of degrading to an empty view.
func (rs *RecordSet) TopN(metric string, n int) ([]RankedRow, error) {
	get, ok := rs.Schema.Accessor(metric)
	if !ok {
		return nil, &UnknownMetricError{Metric: metric}
	}
	out := make([]RankedRow, 0, len(rs.Records))
	for _, r := range rs.Records {
		out = append(out, RankedRow{
			EmployeeID: r.EmployeeID,
			FirstName:  r.FirstName,
			Department: r.Department,
			Metric:     metric,
			Value:      get(r),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// WeeklyRow is one row of the weekly-hours estimate.
type WeeklyRow struct {
	EmployeeID  int64   `json:"employee_id"`
	FirstName   string  `json:"first_name"`
	Department  string  `json:"department"`
	Regular     float64 `json:"regular_hours"`
	WeeklyHours float64 `json:"weekly_hours"`
}

// WeeklyEstimate divides monthly regular hours by the average 4.33 weeks per
// month, rounded to 2 decimals. The source schema has no per-week breakdown,
// so this is an estimate. Rows keep the original file order.
func (rs *RecordSet) WeeklyEstimate() []WeeklyRow {
	if !rs.Schema.HasWorkingHours {
		return nil
	}
	out := make([]WeeklyRow, 0, len(rs.Records))
	for _, r := range rs.Records {
		out = append(out, WeeklyRow{
			EmployeeID:  r.EmployeeID,
			FirstName:   r.FirstName,
			Department:  r.Department,
			Regular:     r.Regular,
			WeeklyHours: round2(r.Regular / 4.33),
		})
	}
	return out
}

// PunctualityRow is one row of the punctuality scoring.
type PunctualityRow struct {
	EmployeeID int64   `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	Department string  `json:"department"`
	Score      float64 `json:"score"`
}

// PunctualityScores scores each employee 100 − (late + early-out minutes)/10,
// clamped to [0,100]. With only late minutes available the score uses that
// alone; with neither column present there is no penalty signal and every
// employee scores 100. Sorted best-first.
func (rs *RecordSet) PunctualityScores() []PunctualityRow {
	out := make([]PunctualityRow, 0, len(rs.Records))
	for _, r := range rs.Records {
		score := 100.0
		switch {
		case rs.Schema.HasLateArrivals && rs.Schema.HasEarlyDepartures:
			score = 100 - (r.LateIn+r.EarlyOut)/10
		case rs.Schema.HasLateArrivals:
			score = 100 - r.LateIn/10
		}
		score = round2(clamp(score, 0, 100))
		out = append(out, PunctualityRow{
			EmployeeID: r.EmployeeID,
			FirstName:  r.FirstName,
			Department: r.Department,
			Score:      score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Search returns every employee whose first name, id, or department contains
// the query, case-insensitively. No ranking is applied.
func (rs *RecordSet) Search(query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Record
	for _, r := range rs.Records {
		if strings.Contains(strings.ToLower(r.FirstName), q) ||
			strings.Contains(strconv.FormatInt(r.EmployeeID, 10), q) ||
			(rs.Schema.HasDepartment && strings.Contains(strings.ToLower(r.Department), q)) {
			out = append(out, r)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
