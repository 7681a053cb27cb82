// Package services holds the application service layer between the HTTP
// transport and the attendance engine.
//
// AttendanceService owns the session state: exactly one record set at a time,
// replaced wholesale on each upload and guarded by a read-write mutex.
// QueryService resolves free-text questions through the engine's trigger
// table and delegates prose generation to an Answerer implementation.
// ReportService renders assembled reports to files and serves them by ID.
//
// Services return plain errors (ErrNoData, ErrReportNotFound, or the
// engine's own error values); mapping to HTTP problem responses happens in
// the transport layer.
package services
