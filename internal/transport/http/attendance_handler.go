package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"attendpulse/internal/attendance"
	apierrors "attendpulse/internal/errors"
	"attendpulse/internal/infrastructure"
	"attendpulse/internal/middleware"
	"attendpulse/internal/services"
	"attendpulse/internal/validation"
)

// uploadFormField is the multipart form field carrying the workbook.
const uploadFormField = "file"

// AttendanceHandler exposes the attendance data surface: upload, summary,
// metric views, ranking, and search.
type AttendanceHandler struct {
	service      *services.AttendanceService
	validator    *validation.UploadValidator
	maxUploadLen int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(service *services.AttendanceService, maxUploadLen int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AttendanceHandler {
	return &AttendanceHandler{
		service:      service,
		validator:    validation.NewUploadValidator(maxUploadLen, logger),
		maxUploadLen: maxUploadLen,
		logger:       logger.With(slog.String("component", "attendance_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the attendance routes.
func (h *AttendanceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/summary", h.GetSummary)
	r.Get("/views/{view}", h.GetView)
	r.Get("/top", h.GetTopN)
	r.Get("/search", h.SearchEmployees)
	r.Get("/insights", h.GetInsights)

	return r
}

// Upload handles POST /api/attendance: a multipart workbook upload that
// replaces the session data.
func (h *AttendanceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadLen)
	if err := r.ParseMultipartForm(h.maxUploadLen); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFormField, "A workbook file is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateName(header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFormField, err.Error()))
		return
	}
	if err := h.validator.ValidateSize(header.Size); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFormField, err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "workbook upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	rs, err := h.service.Ingest(r.Context(), file)
	bm := middleware.GetBusinessMetricsFromContext(r.Context())
	if err != nil {
		infrastructure.RecordUpload(r.Context(), bm, 0, err)
		if errors.Is(err, attendance.ErrInputFormat) {
			h.errorHandler.HandleError(w, r, apierrors.UploadFormatError(err))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	infrastructure.RecordUpload(r.Context(), bm, rs.Len(), nil)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"employees": rs.Len(),
		"period":    rs.Period,
		"columns":   rs.Schema.Columns,
	})
}

// GetSummary handles GET /api/attendance/summary.
func (h *AttendanceHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetView handles GET /api/attendance/views/{view} with an optional top
// query parameter bounding ranked views.
func (h *AttendanceHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")

	top, ok := h.parseBoundedInt(w, r, "top", 0, 1000)
	if !ok {
		return
	}

	data, err := h.service.View(r.Context(), view, top)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"view":   view,
		"data":   data,
	})
}

// GetTopN handles GET /api/attendance/top?metric=...&n=...
func (h *AttendanceHandler) GetTopN(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", "A metric column is required"))
		return
	}

	n, ok := h.parseBoundedInt(w, r, "n", 10, 1000)
	if !ok {
		return
	}

	rows, err := h.service.TopN(metric, n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"metric": metric,
		"data":   rows,
		"count":  len(rows),
	})
}

// SearchEmployees handles GET /api/attendance/search?q=...
func (h *AttendanceHandler) SearchEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("q", "A search query is required"))
		return
	}

	matches, err := h.service.Search(q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"query":  q,
		"data":   matches,
		"count":  len(matches),
	})
}

// GetInsights handles GET /api/attendance/insights.
func (h *AttendanceHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.Insights()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   insights,
	})
}

// handleServiceError maps service sentinels to API errors before falling back
// to the generic problem mapping.
func (h *AttendanceHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoData) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoData)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// parseBoundedInt reads an optional integer query parameter, rejecting
// malformed or out-of-range values. The bool result reports success.
func (h *AttendanceHandler) parseBoundedInt(w http.ResponseWriter, r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > max {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(name,
			"Must be a number between 1 and "+strconv.Itoa(max)))
		return 0, false
	}
	return v, true
}
