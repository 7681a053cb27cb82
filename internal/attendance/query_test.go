package attendance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchSingleTrigger(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "168", "95", "10", "0", "12", "0", "0", "8", "0"},
		[]string{"2", "Bob", "Sales", "160", "0", "0", "8", "0", "0", "0", "0", "4"},
	))

	res := Dispatch(rs, "Show me employees who came late more than 5 times")

	require.True(t, res.Matched())
	assert.Equal(t, []string{"late"}, res.Triggers)
	require.Len(t, res.LateTop, 1)
	assert.Equal(t, "Alice", res.LateTop[0].FirstName)
	assert.Nil(t, res.OvertimeTop)
	assert.Nil(t, res.HoursTop)
	assert.Nil(t, res.HoursStats)
}

func TestDispatchTriggersCompose(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "168", "40", "10", "0", "12", "0", "0", "8", "0"},
	))

	res := Dispatch(rs, "compare late arrivals with leave by department")

	assert.Equal(t, []string{"late", "leave", "departments"}, res.Triggers)
	assert.NotEmpty(t, res.LateTop)
	assert.NotEmpty(t, res.LeaveTop)
	assert.NotEmpty(t, res.Departments)
}

func TestDispatchTotalFiresOvertime(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "168", "0", "0", "0", "12", "0", "0", "0", "0"},
	))

	// "total hours" carries the "ot" substring, so the overtime analysis
	// fires alongside working hours.
	res := Dispatch(rs, "what are the total hours this month?")

	assert.Equal(t, []string{"overtime", "working_hours"}, res.Triggers)
	require.NotNil(t, res.HoursStats)
	assert.InDelta(t, 168.0, res.HoursStats.Average, 0.001)
	assert.InDelta(t, 168.0, res.HoursStats.Total, 0.001)
}

func TestDispatchHoursStatsAveragesAllEmployees(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "170", "0", "0", "0", "0", "0", "0", "0", "0"},
		[]string{"2", "Bob", "Eng", "150", "0", "0", "0", "0", "0", "0", "0", "0"},
		[]string{"3", "Carol", "Eng", "160", "0", "0", "0", "0", "0", "0", "0", "0"},
	))

	res := Dispatch(rs, "working hours summary")

	require.NotNil(t, res.HoursStats)
	assert.InDelta(t, 160.0, res.HoursStats.Average, 0.001)
	assert.InDelta(t, 480.0, res.HoursStats.Total, 0.001)
	require.Len(t, res.HoursTop, 3)
	assert.Equal(t, "Alice", res.HoursTop[0].FirstName)
}

func TestDispatchNoMatch(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "168", "0", "0", "0", "0", "0", "0", "0", "0"},
	))

	res := Dispatch(rs, "what is the meaning of life?")

	assert.False(t, res.Matched())
	assert.Empty(t, res.Triggers)
	assert.Equal(t, "what is the meaning of life?", res.Query)
}

func TestDispatchCaseInsensitive(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "168", "45", "0", "0", "0", "0", "0", "0", "0"},
	))

	res := Dispatch(rs, "LATE ARRIVALS?")
	assert.Equal(t, []string{"late"}, res.Triggers)
}

func TestDispatchCapsRankedAnalyses(t *testing.T) {
	rows := make([][]string, 0, 15)
	for i := 1; i <= 15; i++ {
		rows = append(rows, []string{
			fmt.Sprint(i), fmt.Sprintf("Emp%d", i), "Eng",
			"160", fmt.Sprint(i * 10), "0", "0", "0", "0", "0", "0", "0",
		})
	}
	rs := mustRecordSet(t, fullRows(rows...))

	res := Dispatch(rs, "who is late?")

	require.Len(t, res.LateTop, 10)
	// Highest minutes first even after capping.
	assert.Equal(t, "Emp15", res.LateTop[0].FirstName)
}

func TestDispatchWeeklyTrigger(t *testing.T) {
	rs := mustRecordSet(t, fullRows(
		[]string{"1", "Alice", "Eng", "173.2", "0", "0", "0", "0", "0", "0", "0", "0"},
	))

	res := Dispatch(rs, "estimate weekly hours")

	assert.Contains(t, res.Triggers, "weekly")
	require.Len(t, res.WeeklyEst, 1)
	assert.InDelta(t, 40.0, res.WeeklyEst[0].WeeklyHours, 0.001)
}
