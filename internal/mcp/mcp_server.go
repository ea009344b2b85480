// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the tsfeat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Time Series Feature Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: extract_features ---
	s.AddTool(mcp.NewTool("extract_features",
		mcp.WithDescription("Extract per-id time series features from a CSV or Parquet table in long format."),
		mcp.WithString("path", mcp.Description("Path to the CSV or Parquet input table."), mcp.Required()),
		mcp.WithString("id_column", mcp.Description("Column identifying each series. Defaults to 'id'.")),
		mcp.WithString("sort_column", mcp.Description("Column ordering rows within a series. Defaults to 'time'.")),
		mcp.WithString("catalog", mcp.Description("Feature catalog (minimal, extended). Defaults to 'minimal'."), mcp.Enum("minimal", "extended")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ids returned.")),
	), h.handleExtractFeatures)

	// --- 2. Tool: extract_series ---
	s.AddTool(mcp.NewTool("extract_series",
		mcp.WithDescription("Extract features from independent records, each mapping column names to numeric series."),
		mcp.WithString("records", mcp.Description(`JSON array of records, e.g. [{"x": [1, 2, 3]}].`), mcp.Required()),
		mcp.WithString("catalog", mcp.Description("Feature catalog (minimal, extended)."), mcp.Enum("minimal", "extended")),
	), h.handleExtractSeries)

	// --- 3. Tool: list_features ---
	s.AddTool(mcp.NewTool("list_features",
		mcp.WithDescription("List the features computed by a catalog for every numeric column."),
		mcp.WithString("catalog", mcp.Description("Feature catalog (minimal, extended)."), mcp.Enum("minimal", "extended")),
	), h.handleListFeatures)

	return s
}

// StartMCPServer starts the tsfeat MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
