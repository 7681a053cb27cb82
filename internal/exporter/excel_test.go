package exporter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendpulse/internal/attendance"
)

func testReport(t *testing.T) *attendance.Report {
	t.Helper()
	rs, err := attendance.NewRecordSet([][]string{
		{"Monthly Attendance Export"},
		{"Employee ID", "First Name", "Department", "Regular(H)", "Late In(M)",
			"Normal OT(H)", "Absence(H)", "Annual Leave(H)"},
		{"1", "Alice", "Engineering", "168", "120", "35", "0", "8"},
		{"2", "Bob", "Sales", "150", "0", "5", "20", "0"},
	})
	require.NoError(t, err)

	report, err := attendance.AssembleReport(context.Background(), rs, attendance.DeriveInsights(rs))
	require.NoError(t, err)
	return report
}

func TestExcelRendererRender(t *testing.T) {
	report := testReport(t)
	body, err := NewExcelRenderer().Render(context.Background(), report)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	t.Run("one sheet per section in order", func(t *testing.T) {
		var want []string
		for _, s := range report.Sections {
			want = append(want, s.Title)
		}
		assert.Equal(t, want, f.GetSheetList())
	})

	t.Run("executive summary carries metric triples", func(t *testing.T) {
		rows, err := f.GetRows("Executive Summary")
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, []string{"Metric", "Value", "Status"}, rows[0])
		assert.Equal(t, "Report Period", rows[1][0])
	})

	t.Run("table sheets carry the section headers", func(t *testing.T) {
		rows, err := f.GetRows("Late Arrivals")
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, "Employee ID", rows[0][0])
		assert.Contains(t, rows[0], "Severity")
		require.Len(t, rows, 2) // header plus the one late employee
	})

	t.Run("action items sheet", func(t *testing.T) {
		rows, err := f.GetRows("Action Items")
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, actionHeaders, rows[0])
		require.Greater(t, len(rows), 1)
		assert.Contains(t, rows[1][1], "Alice")
	})
}

func TestExcelRendererExtension(t *testing.T) {
	assert.Equal(t, ".xlsx", NewExcelRenderer().Extension())
}

func TestExcelRendererCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExcelRenderer().Render(ctx, testReport(t))
	assert.ErrorIs(t, err, context.Canceled)
}
