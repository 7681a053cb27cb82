package attendance

import (
	"fmt"
	"sort"
	"strings"
)

// Fixed rule thresholds. These are contractual values shared with the HR
// follow-up process, not tuning knobs.
const (
	concernLateMinutes  = 60  // per-employee late minutes counted as excessive
	concernOvertimeHrs  = 30  // per-employee normal OT hours counted as burnout risk
	concernAbsenceHrs   = 16  // per-employee absence hours (two working days)
	recommendAvgLate    = 20  // mean late minutes prompting a policy review
	recommendAvgOT      = 10  // mean normal OT hours prompting a staffing review
	criticalLateMinutes = 100 // late minutes triggering an immediate action item
)

// Summary holds the aggregate figures shown at the top of every report.
type Summary struct {
	TotalEmployees   int     `json:"total_employees"`
	AvgWorkingHours  float64 `json:"avg_working_hours"`
	TotalLateMinutes float64 `json:"total_late_minutes"`
	TotalOvertime    float64 `json:"total_overtime"`
	TotalAbsence     float64 `json:"total_absence"`
}

// Annotation carries the per-employee classifications attached to report rows.
type Annotation struct {
	Severity Severity `json:"severity"`
	Priority Priority `json:"priority"`
	Note     string   `json:"note"`
}

// ActionItem is one HR follow-up record. An employee triggers one item per
// critical condition, so a single employee can appear several times.
type ActionItem struct {
	Priority          Priority `json:"priority"`
	Employee          string   `json:"employee"`
	Issue             string   `json:"issue"`
	Details           string   `json:"details"`
	RecommendedAction string   `json:"recommended_action"`
	Timeline          string   `json:"timeline"`
}

// noActionItemsMessage is the placeholder row emitted when nothing triggers.
// Report renderers rely on the action list never being empty.
const noActionItemsMessage = "No critical action items - all metrics within acceptable ranges"

// Insights is the full derived bundle: aggregates, rule-generated narrative
// lines in evaluation order, per-employee annotations, and follow-up items.
type Insights struct {
	Summary         Summary              `json:"summary"`
	Concerns        []string             `json:"concerns"`
	Recommendations []string             `json:"recommendations"`
	Highlights      []string             `json:"highlights"`
	Annotations     map[int64]Annotation `json:"annotations"`
	ActionItems     []ActionItem         `json:"action_items"`
}

// DeriveInsights evaluates the fixed rule set over a record set. It is a pure
// function: same record set, same bundle.
func DeriveInsights(rs *RecordSet) *Insights {
	totals := rs.MonthlyTotals()
	ins := &Insights{
		Summary: Summary{
			TotalEmployees:   totals.TotalEmployees,
			AvgWorkingHours:  totals.AvgWorkingHours,
			TotalLateMinutes: totals.TotalLateMinutes,
			TotalOvertime:    totals.TotalOvertime,
			TotalAbsence:     totals.TotalAbsence,
		},
		Annotations: make(map[int64]Annotation, len(rs.Records)),
	}

	if rs.Schema.HasLateArrivals {
		if n := countRecords(rs, func(r Record) bool { return r.LateIn > concernLateMinutes }); n > 0 {
			ins.Concerns = append(ins.Concerns,
				fmt.Sprintf("%d employees have excessive late arrivals (>60 min)", n))
		}
	}
	if rs.Schema.HasNormalOT {
		if n := countRecords(rs, func(r Record) bool { return r.NormalOT > concernOvertimeHrs }); n > 0 {
			ins.Concerns = append(ins.Concerns,
				fmt.Sprintf("%d employees have high overtime (>30 hours) - potential burnout risk", n))
		}
	}
	if rs.Schema.HasAbsence {
		if n := countRecords(rs, func(r Record) bool { return r.Absence > concernAbsenceHrs }); n > 0 {
			ins.Concerns = append(ins.Concerns,
				fmt.Sprintf("%d employees have significant absences (>2 days)", n))
		}
	}

	if mean(rs, func(r Record) float64 { return r.LateIn }) > recommendAvgLate {
		ins.Recommendations = append(ins.Recommendations,
			"Consider reviewing start time policies or flexible work arrangements")
	}
	if mean(rs, func(r Record) float64 { return r.NormalOT }) > recommendAvgOT {
		ins.Recommendations = append(ins.Recommendations,
			"High average overtime detected - review workload distribution and consider additional staffing")
	}

	if rs.Schema.HasWorkingHours && len(rs.Records) > 0 {
		top := rs.Records[0]
		for _, r := range rs.Records[1:] {
			if r.Regular > top.Regular {
				top = r
			}
		}
		ins.Highlights = append(ins.Highlights,
			fmt.Sprintf("Top performer: %s with %.1f working hours", top.FirstName, top.Regular))
	}

	for _, r := range rs.Records {
		ins.Annotations[r.EmployeeID] = Annotation{
			Severity: LateSeverity(r.LateIn),
			Priority: PriorityFor(r),
			Note:     HRNote(r),
		}
	}

	ins.ActionItems = deriveActionItems(rs)
	return ins
}

// LateSeverity grades a monthly late-minute total.
func LateSeverity(lateMinutes float64) Severity {
	switch {
	case lateMinutes > criticalLateMinutes:
		return SeverityHigh
	case lateMinutes > 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// LateFollowUp labels the follow-up urgency shown on the late-arrivals sheet.
func LateFollowUp(lateMinutes float64) string {
	switch {
	case lateMinutes > criticalLateMinutes:
		return "Yes - Immediate"
	case lateMinutes > 50:
		return "Yes"
	default:
		return "Monitor"
	}
}

// OvertimeLevel buckets a total-overtime figure and names the required action.
func OvertimeLevel(totalOT float64) (level, action string) {
	switch {
	case totalOT > 30:
		return "Excessive (>30h)", "Review workload & consider support"
	case totalOT > 20:
		return "High (20-30h)", "Monitor"
	case totalOT > 10:
		return "Moderate (10-20h)", "None"
	default:
		return "Normal (<10h)", "None"
	}
}

// PriorityFor scores an employee across the three critical dimensions:
// +3 late >100 min (else +1 >50), +3 normal OT >30h (else +1 >20h),
// +2 absence >16h. Scores of 5+ are High, 2+ Medium, otherwise Low.
func PriorityFor(r Record) Priority {
	score := 0
	switch {
	case r.LateIn > criticalLateMinutes:
		score += 3
	case r.LateIn > 50:
		score++
	}
	switch {
	case r.NormalOT > concernOvertimeHrs:
		score += 3
	case r.NormalOT > 20:
		score++
	}
	if r.Absence > concernAbsenceHrs {
		score += 2
	}
	switch {
	case score >= 5:
		return PriorityHigh
	case score >= 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// HRNote concatenates the triggered per-metric flags for the detailed sheet,
// pipe-separated, or the "No issues" literal when nothing triggers.
func HRNote(r Record) string {
	var notes []string
	if r.LateIn > concernLateMinutes {
		notes = append(notes, fmt.Sprintf("Late arrivals: %.0fmin", r.LateIn))
	}
	if r.NormalOT > 20 {
		notes = append(notes, fmt.Sprintf("High OT: %.1fh", r.NormalOT))
	}
	if r.Absence > concernAbsenceHrs {
		notes = append(notes, fmt.Sprintf("High absence: %.1fh", r.Absence))
	}
	if len(notes) == 0 {
		return "No issues"
	}
	return strings.Join(notes, " | ")
}

func deriveActionItems(rs *RecordSet) []ActionItem {
	var items []ActionItem

	if rs.Schema.HasLateArrivals {
		for _, r := range rs.Records {
			if r.LateIn > criticalLateMinutes {
				items = append(items, ActionItem{
					Priority:          PriorityHigh,
					Employee:          employeeLabel(r),
					Issue:             "Excessive Late Arrivals",
					Details:           fmt.Sprintf("%.0f minutes total", r.LateIn),
					RecommendedAction: "Schedule counseling meeting",
					Timeline:          "This week",
				})
			}
		}
	}
	if rs.Schema.HasNormalOT {
		for _, r := range rs.Records {
			if r.NormalOT > concernOvertimeHrs {
				items = append(items, ActionItem{
					Priority:          PriorityHigh,
					Employee:          employeeLabel(r),
					Issue:             "Excessive Overtime",
					Details:           fmt.Sprintf("%.1f hours", r.NormalOT),
					RecommendedAction: "Review workload, check burnout risk",
					Timeline:          "This week",
				})
			}
		}
	}
	if rs.Schema.HasAbsence {
		for _, r := range rs.Records {
			if r.Absence > concernAbsenceHrs {
				items = append(items, ActionItem{
					Priority:          PriorityMedium,
					Employee:          employeeLabel(r),
					Issue:             "High Absence Rate",
					Details:           fmt.Sprintf("%.1f hours", r.Absence),
					RecommendedAction: "Wellness check, review circumstances",
					Timeline:          "Within 2 weeks",
				})
			}
		}
	}

	if len(items) == 0 {
		return []ActionItem{{
			Priority: PriorityLow,
			Employee: "-",
			Issue:    "None",
			Details:  noActionItemsMessage,
			Timeline: "-",
		}}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank(items[i].Priority) < priorityRank(items[j].Priority)
	})
	return items
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func employeeLabel(r Record) string {
	return fmt.Sprintf("%s (ID: %d)", r.FirstName, r.EmployeeID)
}

func countRecords(rs *RecordSet, pred func(Record) bool) int {
	n := 0
	for _, r := range rs.Records {
		if pred(r) {
			n++
		}
	}
	return n
}

func mean(rs *RecordSet, get func(Record) float64) float64 {
	if len(rs.Records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs.Records {
		sum += get(r)
	}
	return sum / float64(len(rs.Records))
}
