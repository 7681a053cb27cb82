package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"attendpulse/internal/config"
	apierrors "attendpulse/internal/errors"
	"attendpulse/internal/exporter"
	"attendpulse/internal/infrastructure"
	custommw "attendpulse/internal/middleware"
	"attendpulse/internal/services"
	transport "attendpulse/internal/transport/http"
)

// reportSweepInterval is how often expired report files are cleaned up.
const reportSweepInterval = time.Hour

// Application wires configuration, observability, services, and the HTTP
// router into one runnable unit.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router chi.Router

	OTelProviders *infrastructure.OTelProviders

	attendanceService *services.AttendanceService
	queryService      *services.QueryService
	reportService     *services.ReportService

	errorHandler *apierrors.ErrorHandler
	server       *http.Server
}

// Options customizes application construction.
type Options struct {
	// Answerer generates prose answers for the query endpoint. Nil keeps
	// the built-in static summarizer.
	Answerer services.Answerer
	// Renderer produces report files. Nil uses the Excel renderer.
	Renderer services.ReportRenderer
}

// New loads configuration and builds a fully wired application.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig builds an application around an already loaded configuration.
func NewWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize otel: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	a.initializeServices(opts)
	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()

	logger.Info("application initialized",
		slog.Int("port", cfg.Server.Port),
		slog.String("reports_dir", cfg.Reports.Dir))
	return a, nil
}

func (a *Application) initializeServices(opts Options) {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = exporter.NewExcelRenderer()
	}

	a.attendanceService = services.NewAttendanceService(a.Logger)
	a.queryService = services.NewQueryService(a.attendanceService, opts.Answerer, a.Logger)
	a.reportService = services.NewReportService(a.attendanceService, renderer, a.Config.Reports.Dir, a.Logger)
}

func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StripSlashes)

	otelMW, err := custommw.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("create otel middleware: %w", err)
	}
	r.Use(otelMW.Handler)
	r.Use(custommw.BusinessMetricsMiddleware(otelMW.BusinessMetrics()))

	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(a.corsConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := transport.NewHealthHandler(a.attendanceService)
	attendanceHandler := transport.NewAttendanceHandler(
		a.attendanceService, a.Config.Upload.MaxSizeBytes, a.Logger, a.errorHandler)
	queryHandler := transport.NewQueryHandler(a.queryService, a.Logger, a.errorHandler)
	reportHandler := transport.NewReportHandler(a.reportService, a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/attendance", attendanceHandler.Routes())
		r.Mount("/query", queryHandler.Routes())
		r.Mount("/reports", reportHandler.Routes())
	})
}

func (a *Application) corsConfig() custommw.CORSConfig {
	return custommw.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		Logger:         a.Logger,
	}
}

func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the HTTP server and the report retention sweeper until the
// context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go a.sweepReports(ctx)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		return a.Stop()
	}
}

// sweepReports periodically removes report files past the retention window.
func (a *Application) sweepReports(ctx context.Context) {
	ticker := time.NewTicker(reportSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.reportService.Sweep(ctx, a.Config.Reports.Retention)
		}
	}
}

// Stop gracefully shuts down the server and observability providers.
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
	}
	infrastructure.CloseLogFile()
	return errors.Join(errs...)
}

// Run starts the application and blocks until an interrupt or terminate
// signal arrives.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Start(ctx)
}
