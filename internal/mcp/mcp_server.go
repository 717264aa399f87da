// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the PagePulse MCP server without starting it.
// Every tool acts on behalf of baseCfg.User.
func NewMCPServer(baseCfg *contract.Config, auditor *core.Auditor) *server.MCPServer {
	s := server.NewMCPServer(
		"PagePulse Audit Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		auditor: auditor,
	}

	// --- 1. Tool: trigger_audit ---
	s.AddTool(mcp.NewTool("trigger_audit",
		mcp.WithDescription("Run a PageSpeed audit for a tracked site and store the normalized result."),
		mcp.WithString("site_id", mcp.Description("ID of the tracked site."), mcp.Required()),
		mcp.WithString("url", mcp.Description("URL to audit; a missing scheme defaults to https."), mcp.Required()),
		mcp.WithString("strategy", mcp.Description("Device emulation. Defaults to 'mobile'."), mcp.Enum("mobile", "desktop")),
	), h.handleTriggerAudit)

	// --- 2. Tool: get_history ---
	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List stored audit runs, newest first unless order is 'asc'."),
		mcp.WithString("site_id", mcp.Description("Only runs of this site.")),
		mcp.WithString("strategy", mcp.Description("Only runs of this strategy."), mcp.Enum("mobile", "desktop")),
		mcp.WithNumber("limit", mcp.Description("Page size (1-200, default 20).")),
		mcp.WithNumber("offset", mcp.Description("Rows to skip.")),
		mcp.WithString("order", mcp.Description("Sort by creation time."), mcp.Enum("asc", "desc")),
	), h.handleGetHistory)

	// --- 3. Tool: get_dashboard ---
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Summarize tracked sites: averages over the last 7 days, worst site and latest runs."),
	), h.handleGetDashboard)

	// --- 4. Tool: get_business_impact ---
	s.AddTool(mcp.NewTool("get_business_impact",
		mcp.WithDescription("Estimate bounce rate, revenue risk and SEO penalty from a run's LCP."),
		mcp.WithString("run_id", mcp.Description("ID of the stored run."), mcp.Required()),
	), h.handleGetBusinessImpact)

	// --- 5. Tool: list_sites ---
	s.AddTool(mcp.NewTool("list_sites",
		mcp.WithDescription("List the tracked sites."),
	), h.handleListSites)

	return s
}

// StartMCPServer starts the PagePulse MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, auditor *core.Auditor) error {
	s := NewMCPServer(baseCfg, auditor)
	return server.ServeStdio(s)
}
