package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"attendpulse/internal/attendance"
)

// AttendanceService owns the session record set. One monthly workbook is
// loaded at a time; a new upload replaces the previous one wholesale. All
// methods are safe for concurrent use.
type AttendanceService struct {
	mu       sync.RWMutex
	current  *attendance.RecordSet
	loadedAt time.Time

	logger *slog.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(logger *slog.Logger) *AttendanceService {
	return &AttendanceService{
		logger: logger.With(slog.String("service", "attendance")),
	}
}

// Ingest parses an uploaded workbook and replaces the session record set.
// On a parse failure the previous record set is kept untouched.
func (s *AttendanceService) Ingest(ctx context.Context, r io.Reader) (*attendance.RecordSet, error) {
	rs, err := attendance.ParseReader(r)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook rejected", slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	s.current = rs
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "attendance data loaded",
		slog.Int("employees", rs.Len()),
		slog.Int("columns", len(rs.Schema.Columns)),
		slog.String("period", rs.Period))

	return rs, nil
}

// Current returns the session record set, or ErrNoData before the first upload.
func (s *AttendanceService) Current() (*attendance.RecordSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoData
	}
	return s.current, nil
}

// DataSummary describes the loaded record set for the summary endpoint.
type DataSummary struct {
	Period           string          `json:"period"`
	LoadedAt         time.Time       `json:"loaded_at"`
	TotalEmployees   int             `json:"total_employees"`
	Departments      []string        `json:"departments"`
	Columns          []string        `json:"columns"`
	MetricsAvailable map[string]bool `json:"metrics_available"`
}

// Summary returns the data summary, or ErrNoData before the first upload.
func (s *AttendanceService) Summary() (*DataSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoData
	}
	return &DataSummary{
		Period:           s.current.Period,
		LoadedAt:         s.loadedAt,
		TotalEmployees:   s.current.Len(),
		Departments:      s.current.Schema.Departments,
		Columns:          s.current.Schema.Columns,
		MetricsAvailable: s.current.MetricsAvailable(),
	}, nil
}

// View materializes one named metric view from the session record set.
// top bounds ranked views when positive.
func (s *AttendanceService) View(ctx context.Context, name string, top int) (interface{}, error) {
	rs, err := s.Current()
	if err != nil {
		return nil, err
	}

	switch name {
	case "late":
		return bound(rs.LateArrivals(1), top), nil
	case "overtime":
		return bound(rs.Overtime(), top), nil
	case "hours":
		return bound(rs.WorkingHours(), top), nil
	case "leave":
		return bound(rs.LeaveUsage(), top), nil
	case "absence":
		return bound(rs.Absences(), top), nil
	case "departments":
		return rs.DepartmentRollups(), nil
	case "weekly":
		return bound(rs.WeeklyEstimate(), top), nil
	case "punctuality":
		return bound(rs.PunctualityScores(), top), nil
	default:
		return nil, &attendance.UnknownMetricError{Metric: name}
	}
}

// TopN ranks employees over a single metric column from the session record set.
func (s *AttendanceService) TopN(metric string, n int) ([]attendance.RankedRow, error) {
	rs, err := s.Current()
	if err != nil {
		return nil, err
	}
	return rs.TopN(metric, n)
}

// Search finds employees by free-text match on name, id, or department.
func (s *AttendanceService) Search(query string) ([]attendance.Record, error) {
	rs, err := s.Current()
	if err != nil {
		return nil, err
	}
	return rs.Search(query), nil
}

// Insights derives the fixed-rule insight bundle from the session record set.
func (s *AttendanceService) Insights() (*attendance.Insights, error) {
	rs, err := s.Current()
	if err != nil {
		return nil, err
	}
	return attendance.DeriveInsights(rs), nil
}

func bound[T any](v []T, n int) []T {
	if n > 0 && len(v) > n {
		return v[:n]
	}
	return v
}
