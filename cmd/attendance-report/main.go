// Command attendance-report renders an HR report from a monthly attendance
// workbook without running the web service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"attendpulse/internal/attendance"
	"attendpulse/internal/exporter"
	"attendpulse/internal/services"
)

func main() {
	inPath := flag.String("in", "", "path to the attendance workbook (xlsx)")
	outPath := flag.String("out", "", "output file (defaults to attendance_report_<timestamp> next to the input)")
	format := flag.String("format", "xlsx", "output format: xlsx or csv")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: attendance-report -in <workbook.xlsx> [-out <file>] [-format xlsx|csv]")
		os.Exit(2)
	}

	var renderer services.ReportRenderer
	switch *format {
	case "xlsx":
		renderer = exporter.NewExcelRenderer()
	case "csv":
		renderer = exporter.NewCSVRenderer()
	default:
		slog.Error("unknown output format", slog.String("format", *format))
		os.Exit(2)
	}

	rs, err := attendance.ParseWorkbook(*inPath)
	if err != nil {
		slog.Error("failed to parse workbook", slog.String("path", *inPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("workbook loaded",
		slog.Int("employees", rs.Len()),
		slog.String("period", rs.Period))

	ctx := context.Background()
	report, err := attendance.AssembleReport(ctx, rs, attendance.DeriveInsights(rs))
	if err != nil {
		slog.Error("failed to assemble report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	body, err := renderer.Render(ctx, report)
	if err != nil {
		slog.Error("failed to render report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	out := *outPath
	if out == "" {
		name := "attendance_report_" + time.Now().Format("20060102_150405") + renderer.Extension()
		out = filepath.Join(filepath.Dir(*inPath), name)
	}

	if err := os.WriteFile(out, body, 0644); err != nil {
		slog.Error("failed to write report", slog.String("path", out), slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("report written",
		slog.String("path", out),
		slog.Int("sections", len(report.Sections)),
		slog.Int("bytes", len(body)))
}
