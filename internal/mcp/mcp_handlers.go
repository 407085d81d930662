package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/fm301check/core"
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/outwriter"
	"github.com/huangsam/fm301check/internal/source"
	"github.com/huangsam/fm301check/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
	logger  *zap.Logger
}

// validateResult is the JSON payload of validate_file.
type validateResult struct {
	Title     string                `json:"title"`
	DataPath  string                `json:"data_path"`
	Mode      schema.SweepMode      `json:"mode"`
	Overall   schema.SectionSummary `json:"overall"`
	Summaries []schema.NamedSummary `json:"summaries"`
	Rows      []schema.ResultRow    `json:"rows"`
	Datasets  []schema.ResultRow    `json:"dataset_rows"`
}

func (h *toolHandler) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.DataPath = request.GetString("data_path", "")
	if cfg.DataPath == "" {
		return mcp.NewToolResultError("data_path is required"), nil
	}
	if p := request.GetString("schema_path", ""); p != "" {
		cfg.SchemaPath = p
	}
	if m := request.GetString("sweeps", ""); m != "" {
		cfg.SweepMode = schema.SweepMode(strings.ToLower(strings.TrimSpace(m)))
		if _, ok := schema.ValidSweepModes[cfg.SweepMode]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sweep mode '%s'. must be f or o", m)), nil
		}
	}
	cfg.UsedOnly = request.GetBool("used_only", cfg.UsedOnly)

	ctx = core.WithSuppressHeader(ctx)
	report, err := core.GetValidationResults(ctx, cfg, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}
	core.RecordHistory(ctx, cfg, h.mgr, report)

	result := validateResult{
		Title:     outwriter.ReportTitle(report.DataPath),
		DataPath:  report.DataPath,
		Mode:      report.Mode,
		Overall:   report.Overall(),
		Summaries: report.Summaries,
		Rows:      outwriter.FilterRows(report.Rows, cfg.UsedOnly),
		Datasets:  outwriter.FilterRows(report.DatasetRows, cfg.UsedOnly),
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInspectFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataPath := request.GetString("data_path", "")
	if dataPath == "" {
		return mcp.NewToolResultError("data_path is required"), nil
	}

	src, err := source.Open(dataPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspection failed: %v", err)), nil
	}
	defer func() { _ = src.Close() }()

	jsonData, _ := json.MarshalIndent(struct {
		Path    string                   `json:"path"`
		Format  string                   `json:"format"`
		Entries []outwriter.InspectEntry `json:"entries"`
	}{src.Path(), src.Format(), outwriter.CollectInspectEntries(src)}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
