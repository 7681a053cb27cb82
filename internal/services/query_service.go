package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"attendpulse/internal/attendance"
)

// Answerer turns a question plus its structured analyses into a
// natural-language answer. Implementations may call an external language
// model; the engine itself never does.
type Answerer interface {
	Answer(ctx context.Context, question string, result *attendance.QueryResult) (string, error)
}

// QueryService resolves free-text questions against the session data and
// pairs the structured result with a generated answer.
type QueryService struct {
	data     *AttendanceService
	answerer Answerer
	logger   *slog.Logger
}

// NewQueryService creates a new query service. A nil answerer falls back to
// the built-in static summarizer.
func NewQueryService(data *AttendanceService, answerer Answerer, logger *slog.Logger) *QueryService {
	if answerer == nil {
		answerer = StaticAnswerer{}
	}
	return &QueryService{
		data:     data,
		answerer: answerer,
		logger:   logger.With(slog.String("service", "query")),
	}
}

// QueryResponse bundles the structured analyses with the prose answer.
type QueryResponse struct {
	Answer string                  `json:"answer"`
	Result *attendance.QueryResult `json:"result"`
}

// Ask dispatches the question and generates an answer over the fired analyses.
func (s *QueryService) Ask(ctx context.Context, question string) (*QueryResponse, error) {
	rs, err := s.data.Current()
	if err != nil {
		return nil, err
	}

	result := attendance.Dispatch(rs, question)

	s.logger.InfoContext(ctx, "query dispatched",
		slog.String("question", question),
		slog.Any("triggers", result.Triggers))

	answer, err := s.answerer.Answer(ctx, question, result)
	if err != nil {
		// The structured analyses are still valid without prose; degrade
		// to the static summarizer instead of failing the request.
		s.logger.WarnContext(ctx, "answerer failed, using static summary",
			slog.String("error", err.Error()))
		answer, _ = StaticAnswerer{}.Answer(ctx, question, result)
	}

	return &QueryResponse{Answer: answer, Result: result}, nil
}

// StaticAnswerer summarizes the fired analyses without any language model.
type StaticAnswerer struct{}

// Answer implements Answerer.
func (StaticAnswerer) Answer(_ context.Context, _ string, result *attendance.QueryResult) (string, error) {
	if !result.Matched() {
		return "I could not match the question to any attendance metric. " +
			"Try asking about late arrivals, overtime, working hours, leave, departments, or weekly hours.", nil
	}

	var parts []string
	if n := len(result.LateTop); n > 0 {
		top := result.LateTop[0]
		parts = append(parts, fmt.Sprintf("%d employees had late arrivals; %s leads with %.0f minutes.",
			n, top.FirstName, top.LateMinutes))
	}
	if n := len(result.OvertimeTop); n > 0 {
		top := result.OvertimeTop[0]
		parts = append(parts, fmt.Sprintf("%s worked the most overtime (%.1f hours).",
			top.FirstName, top.TotalOT))
	}
	if result.HoursStats != nil {
		parts = append(parts, fmt.Sprintf("Average working hours are %.1f (%.1f total).",
			result.HoursStats.Average, result.HoursStats.Total))
	}
	if n := len(result.LeaveTop); n > 0 {
		top := result.LeaveTop[0]
		parts = append(parts, fmt.Sprintf("%s used the most leave (%.1f hours).",
			top.FirstName, top.TotalLeave))
	}
	if n := len(result.Departments); n > 0 {
		parts = append(parts, fmt.Sprintf("The data covers %d departments.", n))
	}
	if n := len(result.WeeklyEst); n > 0 {
		parts = append(parts, fmt.Sprintf("Weekly-hour estimates are available for %d employees.", n))
	}

	if len(parts) == 0 {
		return "The matched analyses returned no rows for this period.", nil
	}
	return strings.Join(parts, " "), nil
}
