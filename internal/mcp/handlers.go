// ABOUTME: MCP tool handler implementations for the catmatch server
// ABOUTME: Each handler answers from the loaded report and catalogs without network calls
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Dataset is the frozen data the tools answer from. Catalogs are optional;
// tools that need one return an error result when it is missing.
type Dataset struct {
	Report     *models.MatchReport
	Sources    []models.CatalogItem
	Targets    []models.CatalogItem
	Thresholds models.Thresholds
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	data *Dataset
}

// NewHandlers creates handlers without registering them
func NewHandlers(dataset *Dataset) *Handlers {
	return &Handlers{data: dataset}
}

// minConfidence reads the optional cutoff, defaulting to the configured match threshold
func (h *Handlers) minConfidence(request mcp.CallToolRequest) (float64, error) {
	threshold := request.GetFloat("min_confidence", h.data.Thresholds.Match)
	if !(threshold >= 0 && threshold <= 100) {
		return 0, fmt.Errorf("min_confidence must be between 0 and 100, got %g", threshold)
	}
	return threshold, nil
}

func jsonResult(response interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetMatches handles the get_matches tool
func (h *Handlers) GetMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold, err := h.minConfidence(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if sourceID := request.GetString("source_id", ""); sourceID != "" {
		entry, err := h.data.Report.Entry(sourceID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{
			"min_confidence": threshold,
			"sources": []analysis.SourceMatches{{
				SourceID: sourceID,
				Source:   entry.Source,
				Matches:  analysis.Label(analysis.FilterMatches(entry, threshold), h.data.Thresholds),
			}},
		})
	}

	return jsonResult(map[string]interface{}{
		"min_confidence": threshold,
		"sources":        analysis.Matched(h.data.Report, threshold, h.data.Thresholds),
	})
}

// ListUnmatched handles the list_unmatched tool
func (h *Handlers) ListUnmatched(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.data.Targets == nil {
		return mcp.NewToolResultError("target catalog not loaded; start the server with --target"), nil
	}
	threshold, err := h.minConfidence(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := request.GetString("category", "")

	unmatched := analysis.Unmatched(h.data.Report, h.data.Targets, threshold)
	names, groups := analysis.UnmatchedByCategory(unmatched)

	type product struct {
		ID    string `json:"licious_id"`
		Title string `json:"title"`
		Type  string `json:"type,omitempty"`
	}
	byCategory := make(map[string][]product)
	total := 0
	for _, name := range names {
		if category != "" && name != category {
			continue
		}
		for _, item := range groups[name] {
			byCategory[name] = append(byCategory[name], product{ID: item.ID, Title: item.Title, Type: item.Type})
			total++
		}
	}

	return jsonResult(map[string]interface{}{
		"min_confidence": threshold,
		"total":          total,
		"categories":     byCategory,
	})
}

// MatchDistribution handles the match_distribution tool
func (h *Handlers) MatchDistribution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold, err := h.minConfidence(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matched, unmatched := analysis.Partition(h.data.Report, threshold)

	return jsonResult(map[string]interface{}{
		"min_confidence":    threshold,
		"distribution":      analysis.Distribution(h.data.Report, threshold),
		"matched_sources":   len(matched),
		"unmatched_sources": len(unmatched),
	})
}

// ComparePrices handles the compare_prices tool
func (h *Handlers) ComparePrices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.data.Sources == nil || h.data.Targets == nil {
		return mcp.NewToolResultError("both catalogs are required; start the server with --source and --target"), nil
	}
	threshold, err := h.minConfidence(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows := analysis.ComparePrices(h.data.Report, h.data.Sources, h.data.Targets, threshold, h.data.Thresholds)

	if sourceID := request.GetString("source_id", ""); sourceID != "" {
		filtered := make([]analysis.PriceRow, 0, len(rows))
		for _, row := range rows {
			if row.Source.ID == sourceID {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	return jsonResult(map[string]interface{}{
		"min_confidence": threshold,
		"comparisons":    rows,
	})
}

// RecommendPrices handles the recommend_prices tool
func (h *Handlers) RecommendPrices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.data.Sources == nil || h.data.Targets == nil {
		return mcp.NewToolResultError("both catalogs are required; start the server with --source and --target"), nil
	}
	threshold, err := h.minConfidence(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	margin := request.GetFloat("margin", analysis.DefaultMarginFactor)
	if !(margin > 0 && margin <= 2) {
		return mcp.NewToolResultError(fmt.Sprintf("margin must be in (0, 2], got %g", margin)), nil
	}
	band := request.GetFloat("band", analysis.DefaultOpportunityBand)
	if !(band >= 0 && band <= 100) {
		return mcp.NewToolResultError(fmt.Sprintf("band must be between 0 and 100, got %g", band)), nil
	}

	recs := analysis.RecommendPrices(h.data.Report, h.data.Sources, h.data.Targets, threshold, margin)
	if sourceID := request.GetString("source_id", ""); sourceID != "" {
		filtered := make([]analysis.PriceRecommendation, 0, 1)
		for _, rec := range recs {
			if rec.Source.ID == sourceID {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	return jsonResult(map[string]interface{}{
		"min_confidence":  threshold,
		"margin":          margin,
		"recommendations": recs,
		"opportunities":   analysis.GroupOpportunities(recs, band),
	})
}

// VerifyReport handles the verify_report tool
func (h *Handlers) VerifyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var err error
	if h.data.Targets == nil {
		err = h.data.Report.Validate()
	} else {
		err = analysis.VerifyReport(h.data.Report, h.data.Targets)
	}

	response := map[string]interface{}{
		"valid":          err == nil,
		"sources":        len(h.data.Report.WeightedMatches),
		"targets_loaded": h.data.Targets != nil,
	}
	if err != nil {
		response["error"] = err.Error()
	}
	return jsonResult(response)
}
