// Package validation checks uploaded workbook files before they reach the
// parser, so obviously wrong uploads fail fast with a precise message.
package validation

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// xlsx files are zip containers, so a valid upload starts with the zip
// local-file-header magic.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// allowedExtensions lists the workbook extensions the parser accepts.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// UploadValidator vets workbook uploads by name, size, and content sniff.
type UploadValidator struct {
	maxSizeBytes int64
	logger       *slog.Logger
}

// NewUploadValidator creates a new upload validator.
func NewUploadValidator(maxSizeBytes int64, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		maxSizeBytes: maxSizeBytes,
		logger:       logger.With(slog.String("component", "upload_validator")),
	}
}

// ValidateName checks the filename extension.
func (v *UploadValidator) ValidateName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		v.logger.Warn("upload rejected by extension",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return fmt.Errorf("unsupported file extension %q: expected .xlsx or .xlsm", ext)
	}
	return nil
}

// ValidateSize checks the declared upload size against the configured bound.
func (v *UploadValidator) ValidateSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("uploaded file is empty")
	}
	if size > v.maxSizeBytes {
		v.logger.Warn("upload rejected by size",
			slog.Int64("size", size),
			slog.Int64("max", v.maxSizeBytes))
		return fmt.Errorf("uploaded file is %d bytes, limit is %d", size, v.maxSizeBytes)
	}
	return nil
}

// ValidateMagic sniffs the leading bytes for the zip container signature.
func (v *UploadValidator) ValidateMagic(head []byte) error {
	if len(head) < len(zipMagic) || !bytes.Equal(head[:len(zipMagic)], zipMagic) {
		v.logger.Warn("upload rejected by content sniff")
		return fmt.Errorf("file content is not a workbook")
	}
	return nil
}
