package attendance

import "strings"

// HoursStats accompanies the working-hours trigger with whole-set statistics.
type HoursStats struct {
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
}

// QueryResult is the structured bundle a free-text question resolves to. Each
// field is populated only when its trigger fired; Triggers records which ones,
// in evaluation order. Triggers are independent, so one question can populate
// several analyses.
type QueryResult struct {
	Query    string   `json:"query"`
	Triggers []string `json:"triggers"`

	LateTop     []LateArrival      `json:"late_top,omitempty"`
	OvertimeTop []OvertimeRow      `json:"overtime_top,omitempty"`
	HoursTop    []HoursRow         `json:"hours_top,omitempty"`
	HoursStats  *HoursStats        `json:"hours_stats,omitempty"`
	LeaveTop    []LeaveRow         `json:"leave_top,omitempty"`
	Departments []DepartmentRollup `json:"departments,omitempty"`
	WeeklyEst   []WeeklyRow        `json:"weekly_estimate,omitempty"`
}

// Matched reports whether any trigger fired.
func (q *QueryResult) Matched() bool {
	return len(q.Triggers) > 0
}

const queryTopN = 10

// Dispatch resolves a free-text question against the fixed trigger table.
// Matching is case-insensitive substring containment, evaluated in a fixed
// order. Note "ot" also matches words like "total"; the vocabulary is blunt
// on purpose, a false extra analysis is cheaper than a missed one.
func Dispatch(rs *RecordSet, query string) *QueryResult {
	q := strings.ToLower(query)
	res := &QueryResult{Query: query}

	contains := func(keys ...string) bool {
		for _, k := range keys {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
	fire := func(name string) { res.Triggers = append(res.Triggers, name) }

	if contains("late", "tardy") {
		fire("late")
		res.LateTop = head(rs.LateArrivals(1), queryTopN)
	}
	if contains("overtime", "ot") {
		fire("overtime")
		res.OvertimeTop = head(rs.Overtime(), queryTopN)
	}
	if contains("working hours", "total hours") {
		fire("working_hours")
		hours := rs.WorkingHours()
		res.HoursTop = head(hours, queryTopN)
		if len(hours) > 0 {
			var sum float64
			for _, h := range hours {
				sum += h.Regular
			}
			res.HoursStats = &HoursStats{
				Average: round2(sum / float64(len(hours))),
				Total:   round2(sum),
			}
		}
	}
	if contains("leave", "absence") {
		fire("leave")
		res.LeaveTop = head(rs.LeaveUsage(), queryTopN)
	}
	if contains("department", "dept") {
		fire("departments")
		res.Departments = rs.DepartmentRollups()
	}
	if contains("weekly", "week") {
		fire("weekly")
		res.WeeklyEst = head(rs.WeeklyEstimate(), queryTopN)
	}
	return res
}

// head returns the first n elements without copying.
func head[T any](v []T, n int) []T {
	if len(v) > n {
		return v[:n]
	}
	return v
}
