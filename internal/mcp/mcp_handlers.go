package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	auditor *core.Auditor
}

func (h *toolHandler) user() schema.User {
	return schema.User{ID: h.baseCfg.User}
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleTriggerAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := schema.AuditRequest{
		SiteID:   request.GetString("site_id", ""),
		URL:      request.GetString("url", ""),
		Strategy: request.GetString("strategy", string(schema.MobileStrategy)),
	}

	run, err := h.auditor.Trigger(ctx, h.user(), req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit failed (%s): %v", schema.KindOf(err), err)), nil
	}
	return jsonResult(run), nil
}

func (h *toolHandler) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := schema.RunQuery{
		Strategy:  schema.Strategy(request.GetString("strategy", "")),
		Limit:     request.GetInt("limit", h.baseCfg.Limit),
		Offset:    request.GetInt("offset", 0),
		Ascending: request.GetString("order", "desc") == "asc",
	}
	if id := request.GetString("site_id", ""); id != "" {
		query.SiteIDs = []string{id}
	}

	runs, err := h.auditor.History(ctx, h.user(), query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}

	sites, err := h.auditor.Sites(ctx, h.user())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichRuns(runs, sites)), nil
}

func (h *toolHandler) handleGetDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.auditor.Dashboard(ctx, h.user())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dashboard failed: %v", err)), nil
	}
	return jsonResult(summary), nil
}

func (h *toolHandler) handleGetBusinessImpact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	run, impact, err := h.auditor.Impact(ctx, h.user(), runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("impact failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"run_id": run.ID, "lcp_ms": run.Metrics.LCPMs, "impact": impact}), nil
}

func (h *toolHandler) handleListSites(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sites, err := h.auditor.Sites(ctx, h.user())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list sites failed: %v", err)), nil
	}
	return jsonResult(sites), nil
}
