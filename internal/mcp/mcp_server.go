// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names exposed by the server.
const (
	LoadPlotWindowsTool  = "load_plot_windows"
	SummarizeWindowsTool = "summarize_windows"
	ListMeasurementsTool = "list_measurements"
)

// NewMCPServer initializes and configures the co2plot MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"co2plot Measurement Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: load_plot_windows ---
	s.AddTool(mcp.NewTool(LoadPlotWindowsTool,
		mcp.WithDescription("Validate a detailed plot configuration and return the normalized plot windows in order."),
		mcp.WithString("config", mcp.Description("Configuration text, either a JSON document with a detailed_plots key or a File,Start,Duration CSV."), mcp.Required()),
		mcp.WithString("format", mcp.Description("Format of the configuration text. Defaults to 'json'."), mcp.Enum("json", "csv")),
	), h.handleLoadPlotWindows)

	// --- 2. Tool: summarize_windows ---
	s.AddTool(mcp.NewTool(SummarizeWindowsTool,
		mcp.WithDescription("Compute CO2 statistics and an air quality label for every configured plot window."),
		mcp.WithString("config_path", mcp.Description("Path to the JSON plot configuration (defaults to the configured one).")),
		mcp.WithString("converted_dir", mcp.Description("Directory holding converted measurement files.")),
		mcp.WithBoolean("render", mcp.Description("Also render the detailed plots. Defaults to false.")),
	), h.handleSummarizeWindows)

	// --- 3. Tool: list_measurements ---
	s.AddTool(mcp.NewTool(ListMeasurementsTool,
		mcp.WithDescription("List the converted measurement files available for plotting."),
		mcp.WithString("converted_dir", mcp.Description("Directory holding converted measurement files.")),
	), h.handleListMeasurements)

	return s
}

// StartMCPServer starts the co2plot MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
