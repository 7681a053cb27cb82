package exporter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRendererRender(t *testing.T) {
	report := testReport(t)
	body, err := NewCSVRenderer().Render(context.Background(), report)
	require.NoError(t, err)

	t.Run("starts with a UTF-8 BOM", func(t *testing.T) {
		assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	})

	text := string(bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF}))

	t.Run("sections appear in order", func(t *testing.T) {
		last := -1
		for _, s := range report.Sections {
			idx := strings.Index(text, s.Title)
			require.GreaterOrEqual(t, idx, 0, "section %q missing", s.Title)
			assert.Greater(t, idx, last, "section %q out of order", s.Title)
			last = idx
		}
	})

	t.Run("sections are separated by blank lines", func(t *testing.T) {
		assert.Contains(t, text, "\n\n")
	})

	t.Run("table rows follow their headers", func(t *testing.T) {
		assert.Contains(t, text, "Alice")
		assert.Contains(t, text, "Severity")
	})

	t.Run("action rows are present", func(t *testing.T) {
		assert.Contains(t, text, "Recommended Action")
		assert.Contains(t, text, "Alice (ID: 1)")
	})
}

func TestCSVRendererWithoutBOM(t *testing.T) {
	r := &CSVRenderer{}
	body, err := r.Render(context.Background(), testReport(t))
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
}

func TestCSVRendererExtension(t *testing.T) {
	assert.Equal(t, ".csv", NewCSVRenderer().Extension())
}
