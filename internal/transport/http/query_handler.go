package http

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "attendpulse/internal/errors"
	"attendpulse/internal/infrastructure"
	"attendpulse/internal/middleware"
	"attendpulse/internal/services"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
}

// QueryHandler answers free-text questions over the session data.
type QueryHandler struct {
	service      *services.QueryService
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(service *services.QueryService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QueryHandler{
		service:      service,
		validator:    v,
		logger:       logger.With(slog.String("component", "query_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the query routes.
func (h *QueryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Ask)
	return r
}

// Ask handles POST /api/query.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationToAPIError(err))
		return
	}

	resp, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoData)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	bm := middleware.GetBusinessMetricsFromContext(r.Context())
	infrastructure.RecordQuery(r.Context(), bm, resp.Result.Triggers)

	h.logger.InfoContext(r.Context(), "query answered",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Int("triggers", len(resp.Result.Triggers)),
	)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   resp,
	})
}

// validationToAPIError converts validator field errors into the structured
// validation error payload.
func validationToAPIError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Failed validation: " + fe.Tag()
	}
}
