package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendpulse/internal/attendance"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// buildWorkbook writes an xlsx with the standard two header rows plus data.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func sampleWorkbook(t *testing.T) *bytes.Buffer {
	return buildWorkbook(t, [][]interface{}{
		{"Monthly Attendance Export"},
		{"Employee ID", "First Name", "Department", "Regular(H)", "Late In(M)", "Normal OT(H)", "Absence(H)", "Annual Leave(H)"},
		{101, "Alice", "Engineering", 168, 15, 12, 0, 8},
		{102, "Bob", "Sales", 160, 0, 0, 8, 0},
	})
}

func loadedService(t *testing.T) *AttendanceService {
	t.Helper()
	svc := NewAttendanceService(discardLogger())
	_, err := svc.Ingest(context.Background(), sampleWorkbook(t))
	require.NoError(t, err)
	return svc
}

func TestAttendanceServiceIngest(t *testing.T) {
	t.Run("no data before first upload", func(t *testing.T) {
		svc := NewAttendanceService(discardLogger())
		_, err := svc.Current()
		assert.ErrorIs(t, err, ErrNoData)
		_, err = svc.Summary()
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("parses an uploaded workbook", func(t *testing.T) {
		svc := loadedService(t)
		rs, err := svc.Current()
		require.NoError(t, err)
		assert.Equal(t, 2, rs.Len())
		assert.Equal(t, []string{"Engineering", "Sales"}, rs.Schema.Departments)
	})

	t.Run("rejects non-spreadsheet input and keeps previous data", func(t *testing.T) {
		svc := loadedService(t)
		_, err := svc.Ingest(context.Background(), strings.NewReader("this is not a workbook"))
		assert.ErrorIs(t, err, attendance.ErrInputFormat)

		rs, err := svc.Current()
		require.NoError(t, err)
		assert.Equal(t, 2, rs.Len())
	})

	t.Run("new upload replaces the previous record set", func(t *testing.T) {
		svc := loadedService(t)
		_, err := svc.Ingest(context.Background(), buildWorkbook(t, [][]interface{}{
			{"band"},
			{"Employee ID", "First Name", "Regular(H)"},
			{201, "Carol", 150},
		}))
		require.NoError(t, err)

		rs, err := svc.Current()
		require.NoError(t, err)
		require.Equal(t, 1, rs.Len())
		assert.Equal(t, "Carol", rs.Records[0].FirstName)
	})
}

func TestAttendanceServiceSummary(t *testing.T) {
	svc := loadedService(t)
	sum, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalEmployees)
	assert.Equal(t, []string{"Engineering", "Sales"}, sum.Departments)
	assert.True(t, sum.MetricsAvailable["working_hours"])
	assert.True(t, sum.MetricsAvailable["leaves"])
	assert.False(t, sum.MetricsAvailable["early_departures"])
	assert.False(t, sum.LoadedAt.IsZero())
}

func TestAttendanceServiceView(t *testing.T) {
	svc := loadedService(t)

	t.Run("named views resolve", func(t *testing.T) {
		for _, name := range []string{"late", "overtime", "hours", "leave", "absence", "departments", "weekly", "punctuality"} {
			got, err := svc.View(context.Background(), name, 0)
			require.NoError(t, err, "view %s", name)
			assert.NotNil(t, got, "view %s", name)
		}
	})

	t.Run("top bounds ranked views", func(t *testing.T) {
		got, err := svc.View(context.Background(), "hours", 1)
		require.NoError(t, err)
		rows, ok := got.([]attendance.HoursRow)
		require.True(t, ok)
		assert.Len(t, rows, 1)
	})

	t.Run("unknown view errors", func(t *testing.T) {
		_, err := svc.View(context.Background(), "astrology", 0)
		var umErr *attendance.UnknownMetricError
		assert.ErrorAs(t, err, &umErr)
	})
}

func TestAttendanceServiceSearch(t *testing.T) {
	svc := loadedService(t)
	got, err := svc.Search("alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].FirstName)
}

func TestAttendanceServiceTopN(t *testing.T) {
	svc := loadedService(t)
	got, err := svc.TopN("Late In(M)", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].FirstName)
}

func TestAttendanceServiceInsights(t *testing.T) {
	svc := loadedService(t)
	ins, err := svc.Insights()
	require.NoError(t, err)
	assert.Equal(t, 2, ins.Summary.TotalEmployees)
	require.Len(t, ins.ActionItems, 1) // nothing critical in the sample
}
