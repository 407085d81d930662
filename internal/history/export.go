package history

import (
	"errors"
	"fmt"

	"github.com/huangsam/fm301check/internal/parquet"
)

// ExecuteHistoryExport writes every stored run and result row to Parquet files
// named after outputFile.
func ExecuteHistoryExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run history is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no validation runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total validation runs: %d\n", status.TotalRuns)
	fmt.Printf("Total result rows: %d\n", status.TotalRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve validation runs: %w", err)
	}
	rows, err := store.GetAllRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve result rows: %w", err)
	}

	parquetRuns := parquet.ConvertValidationRunRecords(runs)
	parquetRows := parquet.ConvertResultRowRecords(rows)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteValidationRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write validation runs: %w", err)
	}
	fmt.Printf("Exported %d validation runs to: %s\n", len(parquetRuns), runsFile)

	rowsFile := outputFile + ".result_rows.parquet"
	if err := parquet.WriteResultRowsParquet(parquetRows, rowsFile); err != nil {
		return fmt.Errorf("failed to write result rows: %w", err)
	}
	fmt.Printf("Exported %d result rows to: %s\n", len(parquetRows), rowsFile)

	return nil
}
