package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "attendpulse/internal/errors"
	"attendpulse/internal/infrastructure"
	"attendpulse/internal/middleware"
	"attendpulse/internal/services"
)

// ReportHandler generates report files and serves them back for download.
type ReportHandler struct {
	service      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/", h.Generate)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.List)
	r.Get("/{id}", h.Download)
	return r
}

// Generate handles POST /api/reports.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	meta, err := h.service.Generate(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoData)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	bm := middleware.GetBusinessMetricsFromContext(r.Context())
	infrastructure.RecordReport(r.Context(), bm, time.Since(start))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// List handles GET /api/reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports := h.service.List()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   reports,
		"count":  len(reports),
	})
}

// Download handles GET /api/reports/{id}, streaming the rendered file as an
// attachment.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report download",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("report_id", id),
	)

	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, meta.Path)
}
