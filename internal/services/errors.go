package services

import "errors"

// ErrNoData indicates that no attendance workbook has been uploaded yet.
var ErrNoData = errors.New("no attendance data loaded")

// ErrReportNotFound indicates an unknown or expired report ID.
var ErrReportNotFound = errors.New("report not found")
