package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusNotFound, "NOT_FOUND", "missing", "report-1")
	assert.Equal(t, "report-1", err.Details)
}

func TestUploadFormatError(t *testing.T) {
	err := UploadFormatError(assert.AnError)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "UPLOAD_FORMAT", err.ErrorCode)
	assert.Equal(t, assert.AnError.Error(), err.Details)
}

func TestUnknownMetricAPIError(t *testing.T) {
	err := UnknownMetricAPIError("Bonus(H)")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "UNKNOWN_METRIC", err.ErrorCode)
	assert.Contains(t, err.Message, `"Bonus(H)"`)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("query", "must not be empty")
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "query", detail.Field)
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad query", "/api/query").
		WithExtension("trace_id", "t-1")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, TypeValidation, decoded["type"])
	assert.Equal(t, "bad query", decoded["detail"])
	assert.Equal(t, "t-1", decoded["trace_id"])
	assert.Equal(t, float64(http.StatusBadRequest), decoded["status"])
}
