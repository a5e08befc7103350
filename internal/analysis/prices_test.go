// ABOUTME: Tests for price normalization and comparison
// ABOUTME: Table-driven cases for weight and piece parsing

package analysis

import (
	"testing"

	"github.com/harper/catmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWeightAndPieces(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Quantity
	}{
		{"net with piece range", "Net: 450g • 10-16 pcs", Quantity{Grams: 450, Pieces: 10}},
		{"net single piece count", "Net: 500g • 6 pcs", Quantity{Grams: 500, Pieces: 6}},
		{"net kilograms", "Net: 1kg", Quantity{Grams: 1000}},
		{"net decimal", "Net: 0.5 kg", Quantity{Grams: 500}},
		{"grams", "200 g", Quantity{Grams: 200}},
		{"grams word", "500 Grams", Quantity{Grams: 500}},
		{"kilograms", "1 kg", Quantity{Grams: 1000}},
		{"pieces", "4 Pieces", Quantity{Pieces: 4}},
		{"single unit", "1 unit", Quantity{Pieces: 1}},
		{"pcs", "5 pcs", Quantity{Pieces: 5}},
		{"empty", "", Quantity{}},
		{"no quantity", "Serves 2", Quantity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractWeightAndPieces(tt.text))
		})
	}
}

func TestNormalizedPrices(t *testing.T) {
	n := NormalizedPrices(300, Quantity{Grams: 250, Pieces: 6})
	require.NotNil(t, n.Per500g)
	require.NotNil(t, n.PerPiece)
	assert.InDelta(t, 600, *n.Per500g, 1e-9)
	assert.InDelta(t, 50, *n.PerPiece, 1e-9)

	n = NormalizedPrices(300, Quantity{})
	assert.Nil(t, n.Per500g)
	assert.Nil(t, n.PerPiece)
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"₹249":     249,
		" ₹1,299 ": 1299,
		"199.50":   199.5,
		"":         0,
		"₹":        0,
		"free":     0,
	}
	for in, want := range tests {
		assert.InDelta(t, want, ParsePrice(in), 1e-9, "input %q", in)
	}
}

func TestProductPrice(t *testing.T) {
	assert.InDelta(t, 199, ProductPrice(models.CatalogItem{RegularPrice: "₹249", DiscountedPrice: "₹199"}), 1e-9)
	assert.InDelta(t, 249, ProductPrice(models.CatalogItem{RegularPrice: "₹249", DiscountedPrice: "₹0"}), 1e-9)
	assert.InDelta(t, 249, ProductPrice(models.CatalogItem{RegularPrice: "₹249"}), 1e-9)
	assert.Zero(t, ProductPrice(models.CatalogItem{}))
}

func ptr(v float64) *float64 { return &v }

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		source      Normalized
		target      Normalized
		wantBasis   string
		wantDiff    *float64
		wantVerdict string
	}{
		{"target dearer by weight", Normalized{Per500g: ptr(200)}, Normalized{Per500g: ptr(250)}, BasisWeight, ptr(25), VerdictSourceCheaper},
		{"target cheaper by weight", Normalized{Per500g: ptr(200)}, Normalized{Per500g: ptr(150)}, BasisWeight, ptr(-25), VerdictTargetCheaper},
		{"same", Normalized{Per500g: ptr(200)}, Normalized{Per500g: ptr(200)}, BasisWeight, ptr(0), VerdictSamePrice},
		{"weight preferred", Normalized{Per500g: ptr(200), PerPiece: ptr(10)}, Normalized{Per500g: ptr(100), PerPiece: ptr(20)}, BasisWeight, ptr(-50), VerdictTargetCheaper},
		{"by piece", Normalized{PerPiece: ptr(10)}, Normalized{PerPiece: ptr(12)}, BasisPiece, ptr(20), VerdictSourceCheaper},
		{"different units", Normalized{Per500g: ptr(200)}, Normalized{PerPiece: ptr(12)}, "", nil, VerdictDifferentUnits},
		{"source price missing", Normalized{Per500g: ptr(0)}, Normalized{Per500g: ptr(150)}, BasisWeight, nil, VerdictSourcePriceMissing},
		{"both zero", Normalized{Per500g: ptr(0)}, Normalized{Per500g: ptr(0)}, BasisWeight, nil, VerdictNotComparable},
		{"unknown quantity", Normalized{}, Normalized{Per500g: ptr(150)}, "", nil, VerdictNotComparable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			basis, diff, verdict := Compare(tt.source, tt.target)
			assert.Equal(t, tt.wantBasis, basis)
			assert.Equal(t, tt.wantVerdict, verdict)
			if tt.wantDiff == nil {
				assert.Nil(t, diff)
			} else {
				require.NotNil(t, diff)
				assert.InDelta(t, *tt.wantDiff, *diff, 1e-9)
			}
		})
	}
}

func TestComparePrices(t *testing.T) {
	report := models.NewMatchReport()
	report.WeightedMatches["J1"] = models.ReportEntry{
		Matches: []models.Match{match("L1", "96.00%"), match("L2", "75.00%"), match("L9", "74.00%"), match("L3", "50.00%")},
	}
	report.WeightedMatches["J-gone"] = models.ReportEntry{Matches: []models.Match{match("L1", "99.00%")}}

	sources := []models.CatalogItem{
		{ID: "J1", Title: "Chicken Curry Cut", Weight: "Net: 500g • 10-12 pcs", RegularPrice: "₹260", DiscountedPrice: "₹220"},
	}
	targets := []models.CatalogItem{
		{ID: "L1", Title: "Chicken Curry Cut Small", Weight: "450 g", DiscountedPrice: "₹198"},
		{ID: "L2", Title: "Chicken Drumsticks", Weight: "6 Pieces", RegularPrice: "₹300"},
		{ID: "L3", Title: "Chicken Wings", Weight: "250 g", RegularPrice: "₹150"},
	}

	rows := ComparePrices(report, sources, targets, 70, models.DefaultThresholds())
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "L1", first.Target.ID)
	assert.Equal(t, models.LabelExact, first.Label)
	assert.Equal(t, BasisWeight, first.Basis)
	assert.InDelta(t, 220, *first.Source.Normalized.Per500g, 1e-9)
	assert.InDelta(t, 22, *first.Source.Normalized.PerPiece, 1e-9)
	assert.InDelta(t, 220, *first.Target.Normalized.Per500g, 1e-9)
	assert.Equal(t, VerdictSamePrice, first.Verdict)

	second := rows[1]
	assert.Equal(t, "L2", second.Target.ID)
	assert.Equal(t, BasisPiece, second.Basis)
	assert.InDelta(t, 127.2727, *second.DiffPercent, 1e-3)
	assert.Equal(t, VerdictSourceCheaper, second.Verdict)
}

func TestRecommendPrice(t *testing.T) {
	tests := []struct {
		name         string
		source       models.CatalogItem
		target       models.CatalogItem
		margin       float64
		wantAction   string
		wantBasis    string
		wantOptimal  *float64
		wantNewPrice float64
		wantGap      *float64
	}{
		{
			name:        "discounted below optimum raises to regular",
			source:      models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹200", DiscountedPrice: "₹150"},
			target:      models.CatalogItem{Weight: "500 g", RegularPrice: "₹250"},
			margin:      0.95,
			wantAction:  ActionIncrease,
			wantBasis:   BasisWeight,
			wantOptimal: ptr(237.5), wantNewPrice: 200, wantGap: ptr(-40),
		},
		{
			name:        "zero margin uses default",
			source:      models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹200", DiscountedPrice: "₹150"},
			target:      models.CatalogItem{Weight: "500 g", RegularPrice: "₹250"},
			wantAction:  ActionIncrease,
			wantBasis:   BasisWeight,
			wantOptimal: ptr(237.5), wantNewPrice: 200, wantGap: ptr(-40),
		},
		{
			name:        "larger pack scales optimum",
			source:      models.CatalogItem{Weight: "Net: 1kg", RegularPrice: "₹800"},
			target:      models.CatalogItem{Weight: "500 g", RegularPrice: "₹300"},
			margin:      0.95,
			wantAction:  ActionDecrease,
			wantBasis:   BasisWeight,
			wantOptimal: ptr(570), wantNewPrice: 570, wantGap: ptr(33.3333),
		},
		{
			name:        "decrease floors at half the regular price",
			source:      models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹1000"},
			target:      models.CatalogItem{Weight: "500 g", RegularPrice: "₹300"},
			margin:      0.95,
			wantAction:  ActionDecrease,
			wantBasis:   BasisWeight,
			wantOptimal: ptr(285), wantNewPrice: 500, wantGap: ptr(233.3333),
		},
		{
			name:        "within band maintains",
			source:      models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹240"},
			target:      models.CatalogItem{Weight: "500 g", RegularPrice: "₹250"},
			margin:      0.95,
			wantAction:  ActionMaintain,
			wantBasis:   BasisWeight,
			wantOptimal: ptr(237.5), wantNewPrice: 240, wantGap: ptr(-4),
		},
		{
			name:        "pieces",
			source:      models.CatalogItem{Weight: "6 pcs", RegularPrice: "₹100", DiscountedPrice: "₹60"},
			target:      models.CatalogItem{Weight: "6 Pieces", RegularPrice: "₹90"},
			margin:      0.95,
			wantAction:  ActionIncrease,
			wantBasis:   BasisPiece,
			wantOptimal: ptr(85.5), wantNewPrice: 85.5, wantGap: ptr(-33.3333),
		},
		{
			name:        "no quantities compares raw prices",
			source:      models.CatalogItem{RegularPrice: "₹100"},
			target:      models.CatalogItem{RegularPrice: "₹200"},
			margin:      0.95,
			wantAction:  ActionIncrease,
			wantOptimal: ptr(190), wantNewPrice: 100, wantGap: ptr(-50),
		},
		{
			name:         "different units",
			source:       models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹200"},
			target:       models.CatalogItem{Weight: "6 Pieces", RegularPrice: "₹90"},
			margin:       0.95,
			wantAction:   ActionMaintain,
			wantNewPrice: 200,
		},
		{
			name:         "missing regular price",
			source:       models.CatalogItem{Weight: "Net: 500g", DiscountedPrice: "₹150"},
			target:       models.CatalogItem{Weight: "500 g", RegularPrice: "₹250"},
			margin:       0.95,
			wantAction:   ActionMaintain,
			wantNewPrice: 150,
		},
		{
			name:         "missing competitor price",
			source:       models.CatalogItem{Weight: "Net: 500g", RegularPrice: "₹200"},
			target:       models.CatalogItem{Weight: "500 g"},
			margin:       0.95,
			wantAction:   ActionMaintain,
			wantNewPrice: 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecommendPrice(tt.source, tt.target, tt.margin)
			assert.Equal(t, tt.wantAction, rec.Action)
			assert.Equal(t, tt.wantBasis, rec.Basis)
			assert.InDelta(t, tt.wantNewPrice, rec.NewPrice, 1e-9)
			assert.NotEmpty(t, rec.Reason)
			if tt.wantOptimal == nil {
				assert.Nil(t, rec.OptimalPrice)
			} else {
				require.NotNil(t, rec.OptimalPrice)
				assert.InDelta(t, *tt.wantOptimal, *rec.OptimalPrice, 1e-9)
			}
			if tt.wantGap == nil {
				assert.Nil(t, rec.GapPercent)
			} else {
				require.NotNil(t, rec.GapPercent)
				assert.InDelta(t, *tt.wantGap, *rec.GapPercent, 1e-3)
			}
		})
	}
}

func TestRecommendPrice_Discounts(t *testing.T) {
	rec := RecommendPrice(
		models.CatalogItem{Weight: "Net: 1kg", RegularPrice: "₹800"},
		models.CatalogItem{Weight: "500 g", RegularPrice: "₹300"},
		DefaultMarginFactor,
	)
	assert.Equal(t, 0.0, rec.CurrentDiscount)
	assert.InDelta(t, 28.75, rec.NewDiscount, 1e-9)
	assert.Equal(t, 300.0, rec.CompetitorPrice)
	assert.Equal(t, 800.0, rec.RegularPrice)
}

func TestRecommendPrices_UsesBestAcceptedMatch(t *testing.T) {
	report := models.NewMatchReport()
	report.WeightedMatches["J1"] = models.ReportEntry{
		Matches: []models.Match{match("L1", "96.00%"), match("L2", "80.00%")},
	}
	report.WeightedMatches["J2"] = models.ReportEntry{
		Matches: []models.Match{match("L9", "91.00%"), match("L2", "80.00%")},
	}
	report.WeightedMatches["J3"] = models.ReportEntry{Matches: []models.Match{match("L1", "40.00%")}}
	report.WeightedMatches["J-gone"] = models.ReportEntry{Matches: []models.Match{match("L1", "99.00%")}}

	sources := []models.CatalogItem{
		{ID: "J1", Weight: "Net: 500g", RegularPrice: "₹200", DiscountedPrice: "₹150"},
		{ID: "J2", Weight: "Net: 1kg", RegularPrice: "₹800"},
		{ID: "J3", Weight: "Net: 500g", RegularPrice: "₹200"},
	}
	targets := []models.CatalogItem{
		{ID: "L1", Weight: "500 g", RegularPrice: "₹250"},
		{ID: "L2", Weight: "500 g", RegularPrice: "₹300"},
	}

	recs := RecommendPrices(report, sources, targets, 70, DefaultMarginFactor)
	require.Len(t, recs, 2)
	assert.Equal(t, "J1", recs[0].Source.ID)
	assert.Equal(t, "L1", recs[0].Target.ID)
	assert.Equal(t, "96.00%", recs[0].Confidence)
	assert.Equal(t, "J2", recs[1].Source.ID)
	assert.Equal(t, "L2", recs[1].Target.ID, "missing L9 falls through to the next accepted match")

	opps := GroupOpportunities(recs, DefaultOpportunityBand)
	require.Len(t, opps.Premium, 1)
	assert.Equal(t, "J1", opps.Premium[0].Source.ID)
	require.Len(t, opps.Adjust, 1)
	assert.Equal(t, "J2", opps.Adjust[0].Source.ID)
}

func TestGroupOpportunities_BandIsExclusive(t *testing.T) {
	recs := []PriceRecommendation{
		{Source: PriceSide{ID: "edge"}, GapPercent: ptr(-10)},
		{Source: PriceSide{ID: "none"}},
		{Source: PriceSide{ID: "up"}, GapPercent: ptr(10.5)},
	}
	opps := GroupOpportunities(recs, 10)
	assert.Empty(t, opps.Premium)
	require.Len(t, opps.Adjust, 1)
	assert.Equal(t, "up", opps.Adjust[0].Source.ID)
}
