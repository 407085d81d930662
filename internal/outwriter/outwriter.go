// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/parquet"
	"github.com/huangsam/fm301check/schema"
)

// WriteReport writes the report to cfg.ReportPath in the configured format.
// Text, CSV and JSON go to stdout when no path is set.
func WriteReport(report *schema.Report, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.ReportPath, func(w io.Writer) error {
			return writeReportJSON(w, report, cfg)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.ReportPath, func(w io.Writer) error {
			return writeReportCSV(w, report, cfg)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.PDFOut:
		if cfg.ReportPath == "" {
			return errors.New("pdf output requires a report path")
		}
		if err := writeWithFile(cfg.ReportPath, func(w io.Writer) error {
			return writeReportPDF(w, report, cfg)
		}, "Wrote PDF"); err != nil {
			return fmt.Errorf("error writing PDF output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.ReportPath == "" {
			return errors.New("parquet output requires a report path")
		}
		if err := writeWithFile(cfg.ReportPath, func(w io.Writer) error {
			return parquet.WriteResultRows(w, parquet.FromReport(filterReport(report, cfg.UsedOnly), 0))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.ReportPath, func(w io.Writer) error {
			return writeReportTable(w, report, cfg)
		}, "Wrote table")
	}
	return nil
}

// WriteResultsDump writes the nine report columns of every main row as a
// JSON array of string arrays.
func WriteResultsDump(path string, rows []schema.ResultRow) error {
	return writeWithFile(path, func(w io.Writer) error {
		return writeResultsDump(w, rows)
	}, "Wrote results dump")
}

func writeResultsDump(w io.Writer, rows []schema.ResultRow) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	return writeJSONIndent(w, records, "    ")
}

// FilterRows drops not_used rows when usedOnly is set.
func FilterRows(rows []schema.ResultRow, usedOnly bool) []schema.ResultRow {
	if !usedOnly {
		return rows
	}
	out := make([]schema.ResultRow, 0, len(rows))
	for _, row := range rows {
		if row.Outcome != schema.NotUsed {
			out = append(out, row)
		}
	}
	return out
}

// filterReport returns a shallow copy with filtered rows. Summaries still
// count every row.
func filterReport(report *schema.Report, usedOnly bool) *schema.Report {
	if !usedOnly {
		return report
	}
	filtered := *report
	filtered.Rows = FilterRows(report.Rows, true)
	filtered.DatasetRows = FilterRows(report.DatasetRows, true)
	return &filtered
}

// summaryHeader returns the columns of the section summary table. The
// fail_optional column is only shown when it is tallied separately.
func summaryHeader(cfg *contract.Config) []string {
	if cfg.FoldOptional {
		return []string{"Section", "Pass", "Fail Mandatory", "Not Used", "Total"}
	}
	return []string{"Section", "Pass", "Fail Mandatory", "Fail Optional", "Not Used", "Total"}
}

func summaryRecord(name string, s schema.SectionSummary, cfg *contract.Config) []string {
	rec := []string{name, strconv.Itoa(s.Pass), strconv.Itoa(s.FailMandatory)}
	if !cfg.FoldOptional {
		rec = append(rec, strconv.Itoa(s.FailOptional))
	}
	return append(rec, strconv.Itoa(s.NotUsed), strconv.Itoa(s.Total()))
}

// summaryRecords returns one record per section plus the overall row.
func summaryRecords(report *schema.Report, cfg *contract.Config) [][]string {
	out := make([][]string, 0, len(report.Summaries)+1)
	for _, s := range report.Summaries {
		out = append(out, summaryRecord(s.Section, s.Summary, cfg))
	}
	return append(out, summaryRecord("Overall", report.Overall(), cfg))
}
