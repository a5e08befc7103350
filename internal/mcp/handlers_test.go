// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Calls handlers directly with in-memory reports and catalogs
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harper/catmatch/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func testDataset() *Dataset {
	report := models.NewMatchReport()
	report.WeightedMatches["J1"] = models.ReportEntry{
		Source: models.ProductSummary{Title: "Chicken Curry Cut", Category: "Chicken", Type: "chicken"},
		Matches: []models.Match{
			{TargetID: "L1", Title: "Chicken Curry Cut Small", Confidence: "96.50%"},
			{TargetID: "L2", Title: "Chicken Drumsticks", Confidence: "74.00%"},
		},
	}
	report.WeightedMatches["J2"] = models.ReportEntry{
		Source:  models.ProductSummary{Title: "Farm Eggs", Type: "eggs"},
		Matches: []models.Match{{TargetID: "L3", Title: "Brown Eggs", Confidence: "50.00%"}},
	}

	return &Dataset{
		Report: report,
		Sources: []models.CatalogItem{
			{ID: "J1", Title: "Chicken Curry Cut", Weight: "Net: 500g • 10-12 pcs", DiscountedPrice: "₹220"},
			{ID: "J2", Title: "Farm Eggs", Weight: "6 pcs", RegularPrice: "₹60"},
		},
		Targets: []models.CatalogItem{
			{ID: "L1", Title: "Chicken Curry Cut Small", Category: "Poultry", Weight: "450 g", DiscountedPrice: "₹198"},
			{ID: "L2", Title: "Chicken Drumsticks", Category: "Poultry", Weight: "6 Pieces", RegularPrice: "₹300"},
			{ID: "L3", Title: "Brown Eggs", Category: "Eggs", Weight: "6 Pieces", RegularPrice: "₹90"},
			{ID: "L4", Title: "Prawns", Category: "Seafood", Weight: "250 g", RegularPrice: "₹350"},
		},
		Thresholds: models.DefaultThresholds(),
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", result.Content[0])
	}
	if result.IsError {
		t.Fatalf("tool error: %s", text.Text)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", text.Text, err)
	}
	return out
}

func TestGetMatches_DefaultThreshold(t *testing.T) {
	h := NewHandlers(testDataset())
	result, err := h.GetMatches(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("GetMatches() error = %v", err)
	}
	out := resultJSON(t, result)

	sources := out["sources"].([]any)
	if len(sources) != 1 {
		t.Fatalf("sources = %d, want 1 (J2 is below 70%%)", len(sources))
	}
	first := sources[0].(map[string]any)
	matches := first["matches"].([]any)
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if label := matches[0].(map[string]any)["label"]; label != models.LabelExact {
		t.Errorf("label = %v, want %s", label, models.LabelExact)
	}
	if id := matches[0].(map[string]any)["licious_id"]; id != "L1" {
		t.Errorf("licious_id = %v, want L1", id)
	}
}

func TestGetMatches_SingleSource(t *testing.T) {
	h := NewHandlers(testDataset())
	result, _ := h.GetMatches(context.Background(), callRequest(map[string]any{"source_id": "J2", "min_confidence": 0.0}))
	out := resultJSON(t, result)

	sources := out["sources"].([]any)
	matches := sources[0].(map[string]any)["matches"].([]any)
	if len(matches) != 1 {
		t.Errorf("matches = %d, want 1", len(matches))
	}

	result, _ = h.GetMatches(context.Background(), callRequest(map[string]any{"source_id": "J9"}))
	if !result.IsError {
		t.Error("unknown source should be a tool error")
	}
}

func TestMinConfidenceOutOfRange(t *testing.T) {
	h := NewHandlers(testDataset())
	tools := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_matches":        h.GetMatches,
		"list_unmatched":     h.ListUnmatched,
		"match_distribution": h.MatchDistribution,
		"compare_prices":     h.ComparePrices,
		"recommend_prices":   h.RecommendPrices,
	}

	for name, handler := range tools {
		for _, value := range []float64{-5, 150} {
			result, err := handler(context.Background(), callRequest(map[string]any{"min_confidence": value}))
			if err != nil {
				t.Fatalf("%s(%v) error = %v", name, value, err)
			}
			if !result.IsError {
				t.Errorf("%s with min_confidence %v should be a tool error", name, value)
				continue
			}
			text := result.Content[0].(mcp.TextContent).Text
			if !strings.Contains(text, "between 0 and 100") {
				t.Errorf("%s error = %q, want range message", name, text)
			}
		}
	}

	result, _ := h.MatchDistribution(context.Background(), callRequest(map[string]any{"min_confidence": 100.0}))
	out := resultJSON(t, result)
	if out["matched_sources"].(float64) != 0 {
		t.Errorf("matched_sources at 100 = %v, want 0", out["matched_sources"])
	}
}

func TestListUnmatched(t *testing.T) {
	h := NewHandlers(testDataset())
	result, _ := h.ListUnmatched(context.Background(), callRequest(map[string]any{}))
	out := resultJSON(t, result)

	if total := out["total"].(float64); total != 2 {
		t.Errorf("total = %v, want 2 (L3, L4)", total)
	}
	categories := out["categories"].(map[string]any)
	if _, ok := categories["Seafood"]; !ok {
		t.Error("Seafood category missing")
	}

	result, _ = h.ListUnmatched(context.Background(), callRequest(map[string]any{"category": "Eggs"}))
	out = resultJSON(t, result)
	if total := out["total"].(float64); total != 1 {
		t.Errorf("filtered total = %v, want 1", total)
	}
}

func TestListUnmatched_NeedsTargets(t *testing.T) {
	ds := testDataset()
	ds.Targets = nil
	result, _ := NewHandlers(ds).ListUnmatched(context.Background(), callRequest(nil))
	if !result.IsError {
		t.Error("missing target catalog should be a tool error")
	}
}

func TestMatchDistribution(t *testing.T) {
	h := NewHandlers(testDataset())
	result, _ := h.MatchDistribution(context.Background(), callRequest(map[string]any{"min_confidence": 0.0}))
	out := resultJSON(t, result)

	dist := out["distribution"].(map[string]any)
	if dist["1"].(float64) != 1 || dist["2"].(float64) != 1 || dist["0"].(float64) != 0 {
		t.Errorf("distribution = %v", dist)
	}
	if out["matched_sources"].(float64) != 2 {
		t.Errorf("matched_sources = %v, want 2", out["matched_sources"])
	}
}

func TestComparePrices(t *testing.T) {
	h := NewHandlers(testDataset())
	result, _ := h.ComparePrices(context.Background(), callRequest(map[string]any{"source_id": "J1"}))
	out := resultJSON(t, result)

	rows := out["comparisons"].([]any)
	if len(rows) != 2 {
		t.Fatalf("comparisons = %d, want 2", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["verdict"] != "same_price" {
		t.Errorf("verdict = %v, want same_price", first["verdict"])
	}
}

func TestRecommendPrices(t *testing.T) {
	h := NewHandlers(testDataset())
	result, err := h.RecommendPrices(context.Background(), callRequest(map[string]any{"min_confidence": 0.0}))
	if err != nil {
		t.Fatalf("RecommendPrices() error = %v", err)
	}
	out := resultJSON(t, result)

	recs := out["recommendations"].([]any)
	if len(recs) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(recs))
	}
	// J1 has no regular price listed, so its price is held
	if action := recs[0].(map[string]any)["action"]; action != "maintain" {
		t.Errorf("J1 action = %v, want maintain", action)
	}
	eggs := recs[1].(map[string]any)
	if eggs["action"] != "increase" || eggs["new_price"].(float64) != 60 {
		t.Errorf("J2 = %v %v, want increase capped at the regular price 60", eggs["action"], eggs["new_price"])
	}

	opps := out["opportunities"].(map[string]any)
	if premium := opps["premium"].([]any); len(premium) != 1 {
		t.Errorf("premium = %d, want 1", len(premium))
	}
}

func TestRecommendPrices_Validation(t *testing.T) {
	h := NewHandlers(testDataset())
	for _, args := range []map[string]any{{"margin": 0.0}, {"margin": 5.0}, {"band": -1.0}} {
		result, _ := h.RecommendPrices(context.Background(), callRequest(args))
		if !result.IsError {
			t.Errorf("args %v should be a tool error", args)
		}
	}

	ds := testDataset()
	ds.Sources = nil
	result, _ := NewHandlers(ds).RecommendPrices(context.Background(), callRequest(nil))
	if !result.IsError {
		t.Error("missing source catalog should be a tool error")
	}
}

func TestVerifyReport(t *testing.T) {
	ds := testDataset()
	result, _ := NewHandlers(ds).VerifyReport(context.Background(), callRequest(nil))
	out := resultJSON(t, result)
	if out["valid"] != true {
		t.Errorf("valid = %v, want true", out["valid"])
	}

	ds.Targets = ds.Targets[:2]
	result, _ = NewHandlers(ds).VerifyReport(context.Background(), callRequest(nil))
	out = resultJSON(t, result)
	if out["valid"] != false {
		t.Error("report pointing at a missing target should be invalid")
	}
	if !strings.Contains(out["error"].(string), "L3") {
		t.Errorf("error = %v, want mention of L3", out["error"])
	}
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer(ServerName, "test")
	if h := RegisterTools(server, testDataset()); h == nil {
		t.Fatal("RegisterTools() returned nil handlers")
	}
}
