package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendpulse/internal/attendance"
)

// ReportRenderer turns the assembled report model into a file body.
type ReportRenderer interface {
	Render(ctx context.Context, report *attendance.Report) ([]byte, error)
	Extension() string
}

// ReportMeta describes one generated report on disk.
type ReportMeta struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// ReportService generates report files and serves them back by ID.
type ReportService struct {
	data     *AttendanceService
	renderer ReportRenderer
	dir      string
	logger   *slog.Logger

	mu      sync.RWMutex
	reports map[string]ReportMeta
}

// NewReportService creates a new report service writing into dir.
func NewReportService(data *AttendanceService, renderer ReportRenderer, dir string, logger *slog.Logger) *ReportService {
	return &ReportService{
		data:     data,
		renderer: renderer,
		dir:      dir,
		logger:   logger.With(slog.String("service", "reports")),
		reports:  make(map[string]ReportMeta),
	}
}

// Generate assembles the report model from the session data, renders it, and
// stores the file under a fresh UUID.
func (s *ReportService) Generate(ctx context.Context) (*ReportMeta, error) {
	rs, err := s.data.Current()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	report, err := attendance.AssembleReport(ctx, rs, attendance.DeriveInsights(rs))
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	body, err := s.renderer.Render(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	id := uuid.New().String()
	filename := fmt.Sprintf("attendance_report_%s%s", time.Now().Format("20060102_150405"), s.renderer.Extension())
	path := filepath.Join(s.dir, id+s.renderer.Extension())

	if err := os.WriteFile(path, body, 0644); err != nil {
		return nil, fmt.Errorf("write report file: %w", err)
	}

	meta := ReportMeta{
		ID:        id,
		Filename:  filename,
		Path:      path,
		CreatedAt: time.Now(),
		SizeBytes: int64(len(body)),
	}

	s.mu.Lock()
	s.reports[id] = meta
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "report generated",
		slog.String("report_id", id),
		slog.Int("sections", len(report.Sections)),
		slog.Int64("bytes", meta.SizeBytes),
		slog.Duration("duration", time.Since(start)))

	return &meta, nil
}

// List returns metadata for every retained report, newest first.
func (s *ReportService) List() []ReportMeta {
	s.mu.RLock()
	out := make([]ReportMeta, 0, len(s.reports))
	for _, meta := range s.reports {
		out = append(out, meta)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns the metadata for a generated report, or ErrReportNotFound.
func (s *ReportService) Get(id string) (*ReportMeta, error) {
	s.mu.RLock()
	meta, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrReportNotFound
	}
	return &meta, nil
}

// Sweep removes report files older than the retention window. It is safe to
// call periodically from a background goroutine.
func (s *ReportService) Sweep(ctx context.Context, retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	var expired []ReportMeta
	for id, meta := range s.reports {
		if meta.CreatedAt.Before(cutoff) {
			expired = append(expired, meta)
			delete(s.reports, id)
		}
	}
	s.mu.Unlock()

	for _, meta := range expired {
		if err := os.Remove(meta.Path); err != nil && !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "failed to remove expired report",
				slog.String("report_id", meta.ID),
				slog.String("error", err.Error()))
		}
	}

	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "expired reports removed", slog.Int("count", len(expired)))
	}
	return len(expired)
}
