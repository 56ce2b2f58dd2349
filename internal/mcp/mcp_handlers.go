package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/co2plot/core"
	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/internal/plotcfg"
	"github.com/huangsam/co2plot/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleLoadPlotWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("config", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("config is required"), nil
	}

	var reqs []schema.PlotWindowRequest
	var err error
	switch format := request.GetString("format", "json"); format {
	case "json":
		reqs, err = plotcfg.LoadPlotWindows(strings.NewReader(text))
	case "csv":
		reqs, err = plotcfg.LoadPlotWindowsCSV(strings.NewReader(text))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q. must be json or csv", format)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid plot configuration: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(reqs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSummarizeWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("config_path", ""); p != "" {
		cfg.PlotConfig = p
	}
	if d := request.GetString("converted_dir", ""); d != "" {
		cfg.ConvertedDir = d
	}
	kind := schema.WindowsRun
	if request.GetBool("render", false) {
		kind = schema.DetailRun
	}

	summaries, err := core.GetWindowSummaries(core.WithSuppressHeader(ctx), cfg, h.mgr, kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	if summaries == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no plot configuration found at %s or %s", cfg.PlotConfig, cfg.PlotConfigCSV)), nil
	}

	jsonData, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListMeasurements(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := h.baseCfg.ConvertedDir
	if d := request.GetString("converted_dir", ""); d != "" {
		dir = d
	}

	files, err := measure.ListCSV(dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list measurements: %v", err)), nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimPrefix(f, measure.ConvertedPrefix))
	}

	jsonData, _ := json.MarshalIndent(names, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
