// Package exporter renders the assembled attendance report into concrete
// file formats. Renderers are pure: they take the format-agnostic report
// model and return a byte slice, leaving file placement and retention to the
// report service.
//
// Two renderers exist: ExcelRenderer (one styled sheet per section) and
// CSVRenderer (one document, sections separated by blank lines). Both
// satisfy the same Render/Extension contract the report service consumes.
package exporter
