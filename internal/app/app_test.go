package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendpulse/internal/config"
)

// newTestApplication builds one fully wired application. The OTel prometheus
// exporter registers on the process-wide registry, so tests share a single
// application instance.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Logging.Output = "console"
	cfg.Reports.Dir = t.TempDir()
	// Rate limiting off so rapid-fire subtests do not trip 429s.
	cfg.Security.RateLimit.Enabled = false

	a, err := NewWithConfig(cfg, Options{})
	require.NoError(t, err)
	return a
}

func sampleWorkbookUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Monthly Attendance Export"},
		{"Employee ID", "First Name", "Department", "Regular(H)", "Late In(M)", "Normal OT(H)"},
		{1, "Alice", "Engineering", 168, 45, 12},
		{2, "Bob", "Sales", 160, 0, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	wb, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "attendance.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(wb.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestApplication(t *testing.T) {
	a := newTestApplication(t)

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("health endpoint", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})

	t.Run("unknown route renders a problem", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	})

	t.Run("summary before upload is a 404 problem", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/api/attendance/summary", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NO_DATA")
	})

	t.Run("upload, query, report round trip", func(t *testing.T) {
		body, contentType := sampleWorkbookUpload(t)
		req := httptest.NewRequest(http.MethodPost, "/api/attendance", body)
		req.Header.Set("Content-Type", contentType)
		rec := do(req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(httptest.NewRequest(http.MethodGet, "/api/attendance/summary", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		qreq := httptest.NewRequest(http.MethodPost, "/api/query",
			bytes.NewBufferString(`{"question": "who came in late?"}`))
		qreq.Header.Set("Content-Type", "application/json")
		rec = do(qreq)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Alice")

		rec = do(httptest.NewRequest(http.MethodPost, "/api/reports", nil))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.Data.ID)

		rec = do(httptest.NewRequest(http.MethodGet, "/api/reports/"+created.Data.ID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	})

	t.Run("request id header is set", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("security headers applied", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("metrics endpoint is wired", func(t *testing.T) {
		rec := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
