// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewMCPServer initializes and configures the FM301 MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"FM301 Compliance Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
	}

	// --- 1. Tool: validate_file ---
	s.AddTool(mcp.NewTool("validate_file",
		mcp.WithDescription("Check a CfRadial2 / WMO FM 301 radar file against the metadata schema and return the per-item results."),
		mcp.WithString("data_path", mcp.Description("Path to the netCDF file or metadata dump to check."), mcp.Required()),
		mcp.WithString("schema_path", mcp.Description("Path to the JSON schema document (defaults to the configured schema).")),
		mcp.WithString("sweeps", mcp.Description("Sweep mode: 'f' checks every sweep, 'o' only the first. Defaults to 'o'."), mcp.Enum("f", "o")),
		mcp.WithBoolean("used_only", mcp.Description("Omit not_used rows from the result.")),
	), h.handleValidateFile)

	// --- 2. Tool: inspect_file ---
	s.AddTool(mcp.NewTool("inspect_file",
		mcp.WithDescription("List the groups, variables and attributes of a radar file."),
		mcp.WithString("data_path", mcp.Description("Path to the netCDF file or metadata dump."), mcp.Required()),
	), h.handleInspectFile)

	return s
}

// StartMCPServer starts the FM301 MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, logger *zap.Logger) error {
	s := NewMCPServer(baseCfg, mgr, logger)
	return server.ServeStdio(s)
}
