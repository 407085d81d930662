// Package parquet provides data structures and functions for exporting
// validation results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/fm301check/schema"
	"github.com/parquet-go/parquet-go"
)

// ValidationRun represents a single validation run with its overall tally.
// This struct maps to the fm301check_runs database table.
type ValidationRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the identifier printed in reports
	RunUUID string `parquet:"run_uuid,snappy"`

	// DataPath is the checked file
	DataPath string `parquet:"data_path,snappy"`

	// SchemaPath is the schema document used
	SchemaPath string `parquet:"schema_path,snappy"`

	// SweepMode is f or o
	SweepMode string `parquet:"sweep_mode,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	PassCount     int32 `parquet:"pass_count,snappy"`
	FailMandatory int32 `parquet:"fail_mandatory_count,snappy"`
	FailOptional  int32 `parquet:"fail_optional_count,snappy"`
	NotUsed       int32 `parquet:"not_used_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ResultRow represents one classified row of a run.
// This struct maps to the fm301check_result_rows database table.
type ResultRow struct {
	// RunID references the parent run; zero for a report written directly
	RunID int64 `parquet:"run_id,snappy"`

	// Seq keeps the report order within a run
	Seq int32 `parquet:"seq,snappy"`

	// Dataset is set for rows of the datasets table
	Dataset bool `parquet:"dataset"`

	Section       string `parquet:"section,snappy,dict"`
	Group         string `parquet:"group_name,snappy,dict"`
	Name          string `parquet:"item_name,snappy"`
	Available     bool   `parquet:"available"`
	ExpectedType  string `parquet:"expected_type,snappy,dict"`
	ActualType    string `parquet:"actual_type,snappy,dict"`
	ExpectedValue string `parquet:"expected_value,snappy"`
	ActualValue   string `parquet:"actual_value,snappy"`
	Requirement   string `parquet:"requirement,snappy,dict"`
	Outcome       string `parquet:"outcome,snappy,dict"`
}

// WriteValidationRunsParquet writes a slice of ValidationRun structs to a Parquet file.
func WriteValidationRunsParquet(data []ValidationRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteResultRowsParquet writes a slice of ResultRow structs to a Parquet file.
func WriteResultRowsParquet(data []ResultRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteResultRows writes result rows to w.
func WriteResultRows(w io.Writer, data []ResultRow) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

// write derives the schema from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// FromReport flattens the main rows then the dataset rows of a report.
func FromReport(report *schema.Report, runID int64) []ResultRow {
	out := make([]ResultRow, 0, len(report.Rows)+len(report.DatasetRows))
	for _, row := range report.Rows {
		out = append(out, fromRow(runID, int32(len(out)), false, row))
	}
	for _, row := range report.DatasetRows {
		out = append(out, fromRow(runID, int32(len(out)), true, row))
	}
	return out
}

func fromRow(runID int64, seq int32, dataset bool, row schema.ResultRow) ResultRow {
	return ResultRow{
		RunID:         runID,
		Seq:           seq,
		Dataset:       dataset,
		Section:       row.Section,
		Group:         row.Group,
		Name:          row.Name,
		Available:     row.Available,
		ExpectedType:  row.ExpectedType,
		ActualType:    row.ActualType,
		ExpectedValue: row.ExpectedValue,
		ActualValue:   row.ActualValue,
		Requirement:   row.Requirement,
		Outcome:       string(row.Outcome),
	}
}

// ConvertValidationRunRecords converts schema.ValidationRunRecord to ValidationRun for Parquet export.
func ConvertValidationRunRecords(records []schema.ValidationRunRecord) []ValidationRun {
	result := make([]ValidationRun, len(records))
	for i, record := range records {
		result[i] = ValidationRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			DataPath:      record.DataPath,
			SchemaPath:    record.SchemaPath,
			SweepMode:     record.SweepMode,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			PassCount:     record.PassCount,
			FailMandatory: record.FailMandatory,
			FailOptional:  record.FailOptional,
			NotUsed:       record.NotUsed,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertResultRowRecords converts schema.ResultRowRecord to ResultRow for Parquet export.
func ConvertResultRowRecords(records []schema.ResultRowRecord) []ResultRow {
	result := make([]ResultRow, len(records))
	for i, record := range records {
		result[i] = ResultRow{
			RunID:         record.RunID,
			Seq:           record.Seq,
			Dataset:       record.Dataset,
			Section:       record.Section,
			Group:         record.GroupName,
			Name:          record.ItemName,
			Available:     record.Available,
			ExpectedType:  record.ExpectedType,
			ActualType:    record.ActualType,
			ExpectedValue: record.ExpectedValue,
			ActualValue:   record.ActualValue,
			Requirement:   record.Requirement,
			Outcome:       record.Outcome,
		}
	}
	return result
}
