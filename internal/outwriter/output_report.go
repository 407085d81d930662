package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ReportTitle is the heading of every rendered report.
func ReportTitle(dataPath string) string {
	return "WMO FM 301 NetCDF Validation Report of " + filepath.Base(dataPath)
}

// writeReportTable generates and writes the human-readable tables.
func writeReportTable(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s\n\nSection Summaries\n", ReportTitle(report.DataPath)); err != nil {
		return err
	}
	if err := writeSummaryTable(w, report, cfg); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nDetailed Results"); err != nil {
		return err
	}
	if err := writeRowsTable(w, FilterRows(report.Rows, cfg.UsedOnly), cfg); err != nil {
		return err
	}

	datasets := FilterRows(report.DatasetRows, cfg.UsedOnly)
	if len(datasets) > 0 {
		if _, err := fmt.Fprintln(w, "\nDatasets"); err != nil {
			return err
		}
		if err := writeRowsTable(w, datasets, cfg); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Validation completed in %v (run %s, sweeps: %s)\n",
		report.Duration.Round(time.Millisecond), report.RunID, report.Mode)
	return err
}

func writeSummaryTable(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header(summaryHeader(cfg))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(summaryRecords(report, cfg)); err != nil {
		return err
	}
	return table.Render()
}

// writeRowsTable writes the nine report columns of rows.
func writeRowsTable(w io.Writer, rows []schema.ResultRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header(schema.RecordHeader)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	width := GetMaxTableValueWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := row.Record()
		for _, i := range []int{0, 1, 5, 6} { // Group, Name, Expected Value, Actual Value
			rec[i] = contract.TruncateText(rec[i], width)
		}
		if cfg.UseColors {
			rec[8] = contract.GetColorLabel(row.Outcome)
		}
		data = append(data, rec)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeReportCSV writes main rows then dataset rows, tagged by table.
func writeReportCSV(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	header := append([]string{"Section", "Table"}, schema.RecordHeader...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		tables := []struct {
			name string
			rows []schema.ResultRow
		}{
			{"results", FilterRows(report.Rows, cfg.UsedOnly)},
			{"datasets", FilterRows(report.DatasetRows, cfg.UsedOnly)},
		}
		for _, t := range tables {
			for _, row := range t.rows {
				if err := cw.Write(append([]string{row.Section, t.name}, row.Record()...)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeReportJSON writes the report with its overall tally.
func writeReportJSON(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	type jsonReport struct {
		*schema.Report
		Title      string                `json:"title"`
		Overall    schema.SectionSummary `json:"overall"`
		DurationMs int64                 `json:"duration_ms"`
	}
	return writeJSON(w, jsonReport{
		Report:     filterReport(report, cfg.UsedOnly),
		Title:      ReportTitle(report.DataPath),
		Overall:    report.Overall(),
		DurationMs: report.Duration.Milliseconds(),
	})
}
