// Package attendance implements the core attendance analytics engine: typed
// record construction from raw spreadsheet rows, the derived metric views, the
// fixed-rule insight deriver, the report assembler, and the free-text query
// dispatcher.
//
// # Pipeline
//
// The package is a pure transformation pipeline over one monthly export:
//
//  1. ParseWorkbook / NewRecordSet: clean the raw rows into an immutable
//     RecordSet with a typed Schema describing which metric families the
//     file actually carried.
//  2. Metric views (LateArrivals, Overtime, WorkingHours, LeaveUsage,
//     Absences, DepartmentRollups, TopN, WeeklyEstimate, PunctualityScores,
//     Search): pure functions of the RecordSet with stable ordering.
//  3. DeriveInsights: fixed-threshold rules producing concerns,
//     recommendations, highlights, per-employee annotations, and HR action
//     items.
//  4. AssembleReport: the format-agnostic multi-section report model that
//     every exporter renders from.
//  5. Dispatch: keyword-trigger resolution of free-text questions into a
//     structured analysis bundle.
//
// # Degradation model
//
// Missing metric columns never fail construction: the Schema records the
// absence and dependent views return empty results, keeping every other view
// fully computable. The only per-operation error is TopN over a column the
// file never carried (UnknownMetricError). Only non-tabular input aborts
// construction entirely (ErrInputFormat).
//
// # File Organization
//
//   - types.go: Record, Schema, RecordSet, and whole-set totals
//   - parser.go: workbook reading and record-set construction
//   - metrics.go: the derived metric views
//   - insights.go: threshold rules, severities, priorities, action items
//   - report.go: the ordered section model and its assembler
//   - query.go: the keyword trigger table
//   - errors.go: package error values
//
// All exported operations are safe for concurrent use: a RecordSet is
// immutable after construction and every view returns fresh values.
package attendance
