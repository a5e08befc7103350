// ABOUTME: MCP tool definitions and registration for the catmatch server
// ABOUTME: Exposes read-only analytics over one frozen match report
package mcp

import (
	"github.com/harper/catmatch/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName is advertised to MCP clients
const ServerName = "catmatch"

func minConfidenceProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Minimum confidence percentage a match must reach (default: the configured match threshold)",
	}
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, dataset *Dataset) *Handlers {
	handlers := NewHandlers(dataset)

	// 1. get_matches - accepted matches with confidence labels
	server.AddTool(mcp.Tool{
		Name:        "get_matches",
		Description: "List target products matched to source products at or above a confidence threshold, with Exact/Best/Similar labels.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Only return matches for this " + models.SourceIDField,
				},
				"min_confidence": minConfidenceProperty(),
			},
		},
	}, handlers.GetMatches)

	// 2. list_unmatched - target products nobody matched
	server.AddTool(mcp.Tool{
		Name:        "list_unmatched",
		Description: "List target catalog products that no source product matched at or above the threshold, grouped by category.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"min_confidence": minConfidenceProperty(),
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Only return products in this category",
				},
			},
		},
	}, handlers.ListUnmatched)

	// 3. match_distribution - how many matches each source got
	server.AddTool(mcp.Tool{
		Name:        "match_distribution",
		Description: "Count source products by how many matches reach the threshold, bucketed as 0, 1, 2, and 3+.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"min_confidence": minConfidenceProperty(),
			},
		},
	}, handlers.MatchDistribution)

	// 4. compare_prices - normalized prices for matched pairs
	server.AddTool(mcp.Tool{
		Name:        "compare_prices",
		Description: "Compare listed prices of matched pairs per 500 g or per piece and report which side is cheaper.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Only compare pairs for this " + models.SourceIDField,
				},
				"min_confidence": minConfidenceProperty(),
			},
		},
	}, handlers.ComparePrices)

	// 5. recommend_prices - price suggestions against the best match
	server.AddTool(mcp.Tool{
		Name:        "recommend_prices",
		Description: "Recommend a new source price from each product's best matched competitor listing, and list pairs whose per-unit gap exceeds the band as premium opportunities or adjustments.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Only recommend for this " + models.SourceIDField,
				},
				"min_confidence": minConfidenceProperty(),
				"margin": map[string]interface{}{
					"type":        "number",
					"description": "Fraction of the competitor's per-unit price to aim for (default 0.95)",
				},
				"band": map[string]interface{}{
					"type":        "number",
					"description": "Per-unit gap percent that flags an opportunity (default 10)",
				},
			},
		},
	}, handlers.RecommendPrices)

	// 6. verify_report - integrity check against the target catalog
	server.AddTool(mcp.Tool{
		Name:        "verify_report",
		Description: "Check that every match in the report points at a product in the target catalog and that confidences are well formed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.VerifyReport)

	return handlers
}
