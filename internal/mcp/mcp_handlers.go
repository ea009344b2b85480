package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/tsfeat/core"
	"github.com/huangsam/tsfeat/core/features"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/tableio"
	"github.com/huangsam/tsfeat/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// catalogListing is the JSON payload of list_features.
type catalogListing struct {
	Catalog  string               `json:"catalog"`
	Features []schema.FeatureInfo `json:"features"`
}

func (h *toolHandler) handleExtractFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("path", "")
	cfg.InputFormat = schema.AutoInput
	if cfg.InputPath == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	err := contract.RevalidateExtraction(cfg,
		request.GetString("id_column", ""),
		request.GetString("sort_column", ""),
		request.GetString("catalog", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid extraction parameters: %v", err)), nil
	}

	out, _, err := core.GetExtractionResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(out.Head(cfg.ResultLimit), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExtractSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateExtraction(cfg, "", "", request.GetString("catalog", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid extraction parameters: %v", err)), nil
	}

	records, err := tableio.DecodeRecords(strings.NewReader(request.GetString("records", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid records: %v", err)), nil
	}

	results, err := core.GetBatchResults(ctx, cfg, records)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListFeatures(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateExtraction(cfg, "", "", request.GetString("catalog", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid catalog: %v", err)), nil
	}

	catalog, err := features.Lookup(cfg.Catalog)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, _ := json.MarshalIndent(catalogListing{Catalog: catalog.Name(), Features: catalog.Describe()}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
