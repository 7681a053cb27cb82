package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendpulse/internal/attendance"
)

type failingAnswerer struct{}

func (failingAnswerer) Answer(context.Context, string, *attendance.QueryResult) (string, error) {
	return "", errors.New("model unavailable")
}

type cannedAnswerer struct{ answer string }

func (a cannedAnswerer) Answer(context.Context, string, *attendance.QueryResult) (string, error) {
	return a.answer, nil
}

func TestQueryServiceAsk(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		svc := NewQueryService(NewAttendanceService(discardLogger()), nil, discardLogger())
		_, err := svc.Ask(context.Background(), "who is late?")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("static answer over fired analyses", func(t *testing.T) {
		svc := NewQueryService(loadedService(t), nil, discardLogger())
		resp, err := svc.Ask(context.Background(), "Who came in late this month?")
		require.NoError(t, err)

		assert.Equal(t, []string{"late"}, resp.Result.Triggers)
		assert.Contains(t, resp.Answer, "Alice")
		assert.Contains(t, resp.Answer, "15 minutes")
	})

	t.Run("custom answerer is used", func(t *testing.T) {
		svc := NewQueryService(loadedService(t), cannedAnswerer{answer: "all good"}, discardLogger())
		resp, err := svc.Ask(context.Background(), "how much overtime?")
		require.NoError(t, err)
		assert.Equal(t, "all good", resp.Answer)
		assert.Equal(t, []string{"overtime"}, resp.Result.Triggers)
	})

	t.Run("answerer failure degrades to static summary", func(t *testing.T) {
		svc := NewQueryService(loadedService(t), failingAnswerer{}, discardLogger())
		resp, err := svc.Ask(context.Background(), "show overtime")
		require.NoError(t, err)
		assert.Contains(t, resp.Answer, "overtime")
		assert.NotEmpty(t, resp.Result.Triggers)
	})

	t.Run("unmatched question", func(t *testing.T) {
		svc := NewQueryService(loadedService(t), nil, discardLogger())
		resp, err := svc.Ask(context.Background(), "what is the meaning of life?")
		require.NoError(t, err)
		assert.False(t, resp.Result.Matched())
		assert.Contains(t, resp.Answer, "could not match")
	})
}

func TestStaticAnswererCombinesParts(t *testing.T) {
	svc := NewQueryService(loadedService(t), nil, discardLogger())
	resp, err := svc.Ask(context.Background(), "compare late arrivals and total hours by department")
	require.NoError(t, err)

	assert.Contains(t, resp.Result.Triggers, "late")
	assert.Contains(t, resp.Result.Triggers, "working_hours")
	assert.Contains(t, resp.Result.Triggers, "departments")
	assert.Contains(t, resp.Answer, "Average working hours")
	assert.Contains(t, resp.Answer, "departments")
}
