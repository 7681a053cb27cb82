package validation

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidator() *UploadValidator {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewUploadValidator(1024, logger)
}

func TestValidateName(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateName("attendance.xlsx"))
	assert.NoError(t, v.ValidateName("ATTENDANCE.XLSX"))
	assert.NoError(t, v.ValidateName("macros.xlsm"))
	assert.Error(t, v.ValidateName("report.csv"))
	assert.Error(t, v.ValidateName("legacy.xls"))
	assert.Error(t, v.ValidateName("noextension"))
}

func TestValidateSize(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateSize(1))
	assert.NoError(t, v.ValidateSize(1024))
	assert.Error(t, v.ValidateSize(0))
	assert.Error(t, v.ValidateSize(-1))
	assert.Error(t, v.ValidateSize(1025))
}

func TestValidateMagic(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateMagic([]byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}))
	assert.Error(t, v.ValidateMagic([]byte("Employee ID,First Name")))
	assert.Error(t, v.ValidateMagic([]byte{0x50, 0x4B}))
	assert.Error(t, v.ValidateMagic(nil))
}
