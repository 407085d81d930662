// Package core has the validation orchestration and rule evaluation.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/outwriter"
	"github.com/huangsam/fm301check/internal/source"
	"github.com/huangsam/fm301check/schema"
	"go.uber.org/zap"
)

// GetValidationResults runs a validation and returns the report without
// writing any artifact.
func GetValidationResults(ctx context.Context, cfg *contract.Config, logger *zap.Logger) (*schema.Report, error) {
	return runValidation(NewValidationBuilder(ctx, cfg, logger))
}

func runValidation(b *ValidationBuilder) (*schema.Report, error) {
	defer b.Close()
	if _, err := b.LoadSchema(); err != nil {
		return nil, err
	}
	if _, err := b.OpenSource(); err != nil {
		return nil, err
	}
	b.RunChecks().BuildReport()
	return b.GetReport(), nil
}

// ExecuteValidation runs the validate command: it evaluates the file, writes
// the results dump and the report, and records the run in history.
func ExecuteValidation(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, logger *zap.Logger) (*schema.Report, error) {
	if !shouldSuppressHeader(ctx) {
		printValidationHeader(cfg)
	}

	report, err := GetValidationResults(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.ResultsJSON != "" {
		if err := outwriter.WriteResultsDump(cfg.ResultsJSON, report.Rows); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", cfg.ResultsJSON, err)
		}
	}

	RecordHistory(ctx, cfg, mgr, report)

	if err := outwriter.WriteReport(report, cfg); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	if !shouldSuppressHeader(ctx) && cfg.ReportPath != "" {
		printRunSummary(report)
		fmt.Printf("✅ Validation complete. Report saved to %s\n", cfg.ReportPath)
	}
	return report, nil
}

// ExecuteInspect lists the structure of the data file.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, logger *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := source.Open(cfg.DataPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil && logger != nil {
			logger.Warn("failed to close data source", zap.Error(err))
		}
	}()
	return outwriter.PrintInspect(src, cfg)
}

// RecordHistory stores the run and its rows when a history backend is configured.
func RecordHistory(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, report *schema.Report) {
	if mgr == nil {
		return
	}
	store := mgr.GetRunStore()
	if store == nil {
		return
	}

	configParams := map[string]any{
		"sweep_mode":    string(cfg.SweepMode),
		"output":        string(cfg.Output),
		"report_path":   cfg.ReportPath,
		"used_only":     cfg.UsedOnly,
		"fold_optional": cfg.FoldOptional,
	}
	runID, err := store.BeginRun(report, configParams)
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return
	}
	ctx = withRunID(ctx, runID)

	recordRows(ctx, store, report.Rows, false)
	recordRows(ctx, store, report.DatasetRows, true)

	if err := store.EndRun(runID, time.Now(), report.Overall()); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
}

func recordRows(ctx context.Context, store contract.RunStore, rows []schema.ResultRow, dataset bool) {
	runID, ok := getRunID(ctx)
	if !ok || len(rows) == 0 {
		return
	}
	if err := store.RecordRows(runID, rows, dataset); err != nil {
		contract.LogWarn(fmt.Sprintf("Run history failed to record %d rows", len(rows)), err)
	}
}

// printValidationHeader prints what is about to be checked.
func printValidationHeader(cfg *contract.Config) {
	sweeps := "first sweep only"
	if cfg.SweepMode == schema.AllSweeps {
		sweeps = "all sweeps"
	}
	fmt.Printf("🔎 Validating %s against %s (%s)\n", cfg.DataPath, cfg.SchemaPath, sweeps)
}

// printRunSummary prints the overall tally in one line.
func printRunSummary(report *schema.Report) {
	overall := report.Overall()
	fmt.Printf("Overall: pass=%d, fail_mandatory=%d, fail_optional=%d, not_used=%d (%v)\n",
		overall.Pass, overall.FailMandatory, overall.FailOptional, overall.NotUsed, report.Duration.Round(time.Millisecond))
}
