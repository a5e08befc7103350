// ABOUTME: Listing price parsing and per-unit normalization
// ABOUTME: Compares matched products per 500 g or per piece and recommends source prices
package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/harper/catmatch/internal/models"
)

var (
	// Source listings: "Net: 450g • 10-16 pcs"; a piece range keeps its lower bound
	netPattern = regexp.MustCompile(`Net:\s*(\d+(?:\.\d+)?)\s*([a-zA-Z]+)(?:\s*•\s*(\d+)(?:-\d+)?\s*pcs)?`)
	// Target listings: "200 g", "1 kg", "500 grams"
	weightPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([gk](?:rams?)?)`)
	// Target listings: "4 Pieces", "1 unit"
	unitPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:Pieces?|units?)`)
	pcsPattern  = regexp.MustCompile(`(\d+)\s*pcs`)
)

// Quantity is the parsed pack size of a listing; zero fields are unknown
type Quantity struct {
	Grams  float64 `json:"grams,omitempty" yaml:"grams,omitempty"`
	Pieces int     `json:"pieces,omitempty" yaml:"pieces,omitempty"`
}

// ExtractWeightAndPieces parses a listing's weight text. Kilograms are converted to grams.
func ExtractWeightAndPieces(text string) Quantity {
	if strings.TrimSpace(text) == "" {
		return Quantity{}
	}

	if m := netPattern.FindStringSubmatch(text); m != nil {
		q := Quantity{Grams: parseAmount(m[1], m[2])}
		if m[3] != "" {
			q.Pieces, _ = strconv.Atoi(m[3])
		}
		return q
	}

	if m := weightPattern.FindStringSubmatch(text); m != nil {
		return Quantity{Grams: parseAmount(m[1], m[2])}
	}

	if m := unitPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Quantity{Pieces: n}
	}

	if m := pcsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Quantity{Pieces: n}
	}

	return Quantity{}
}

func parseAmount(value, unit string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if strings.Contains(strings.ToLower(unit), "k") {
		v *= 1000
	}
	return v
}

// Normalized holds per-unit prices; nil means the unit is unknown
type Normalized struct {
	Per500g  *float64 `json:"per_500g,omitempty" yaml:"per_500g,omitempty"`
	PerPiece *float64 `json:"per_piece,omitempty" yaml:"per_piece,omitempty"`
}

// NormalizedPrices scales price to 500 g and to one piece where the quantity allows
func NormalizedPrices(price float64, q Quantity) Normalized {
	var n Normalized
	if q.Grams > 0 {
		v := price / q.Grams * 500
		n.Per500g = &v
	}
	if q.Pieces > 0 {
		v := price / float64(q.Pieces)
		n.PerPiece = &v
	}
	return n
}

// ParsePrice reads a listed price such as "₹1,299"; anything unparseable is 0
func ParsePrice(s string) float64 {
	cleaned := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ProductPrice is the discounted price, or the regular price when no discount is listed
func ProductPrice(item models.CatalogItem) float64 {
	if p := ParsePrice(item.DiscountedPrice); p != 0 {
		return p
	}
	return ParsePrice(item.RegularPrice)
}

// Price comparison outcomes
const (
	VerdictSourceCheaper      = "source_cheaper"
	VerdictTargetCheaper      = "target_cheaper"
	VerdictSamePrice          = "same_price"
	VerdictDifferentUnits     = "different_units"
	VerdictSourcePriceMissing = "source_price_missing"
	VerdictNotComparable      = "not_comparable"
)

// Comparison bases
const (
	BasisWeight = "per_500g"
	BasisPiece  = "per_piece"
)

// PriceSide is one product's price details in a comparison
type PriceSide struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	Weight     string     `json:"weight,omitempty" yaml:"weight,omitempty"`
	Price      float64    `json:"price" yaml:"price"`
	Quantity   Quantity   `json:"quantity" yaml:"quantity"`
	Normalized Normalized `json:"normalized" yaml:"normalized"`
}

// PriceRow compares one accepted match pair
type PriceRow struct {
	Source      PriceSide `json:"source" yaml:"source"`
	Target      PriceSide `json:"target" yaml:"target"`
	Confidence  string    `json:"confidence" yaml:"confidence"`
	Label       string    `json:"label" yaml:"label"`
	Basis       string    `json:"basis,omitempty" yaml:"basis,omitempty"`
	DiffPercent *float64  `json:"diff_percent,omitempty" yaml:"diff_percent,omitempty"`
	Verdict     string    `json:"verdict" yaml:"verdict"`
}

func priceSide(item models.CatalogItem) PriceSide {
	price := ProductPrice(item)
	q := ExtractWeightAndPieces(item.Weight)
	return PriceSide{
		ID:         item.ID,
		Title:      item.Title,
		Weight:     item.Weight,
		Price:      price,
		Quantity:   q,
		Normalized: NormalizedPrices(price, q),
	}
}

// Compare decides which listing is cheaper. Weight is preferred over pieces;
// the difference is the target's premium over the source in percent.
func Compare(source, target Normalized) (basis string, diff *float64, verdict string) {
	var s, t *float64
	switch {
	case source.Per500g != nil && target.Per500g != nil:
		basis, s, t = BasisWeight, source.Per500g, target.Per500g
	case source.PerPiece != nil && target.PerPiece != nil:
		basis, s, t = BasisPiece, source.PerPiece, target.PerPiece
	case (source.Per500g != nil || source.PerPiece != nil) && (target.Per500g != nil || target.PerPiece != nil):
		return "", nil, VerdictDifferentUnits
	default:
		return "", nil, VerdictNotComparable
	}

	if *s <= 0 {
		if *t > 0 {
			return basis, nil, VerdictSourcePriceMissing
		}
		return basis, nil, VerdictNotComparable
	}

	d := (*t - *s) / *s * 100
	switch {
	case d > 0:
		verdict = VerdictSourceCheaper
	case d < 0:
		verdict = VerdictTargetCheaper
	default:
		verdict = VerdictSamePrice
	}
	return basis, &d, verdict
}

// ComparePrices builds one row per match pair at or above min, ordered by source id then rank.
// Pairs whose items are missing from either catalog are left out.
func ComparePrices(report *models.MatchReport, sources, targets []models.CatalogItem, min float64, th models.Thresholds) []PriceRow {
	sourceByID, targetByID := indexByID(sources), indexByID(targets)

	rows := []PriceRow{}
	for _, id := range report.SourceIDs() {
		src, ok := sourceByID[id]
		if !ok {
			continue
		}
		srcSide := priceSide(src)
		for _, m := range FilterMatches(report.WeightedMatches[id], min) {
			tgt, ok := targetByID[m.TargetID]
			if !ok {
				continue
			}
			tgtSide := priceSide(tgt)
			basis, diff, verdict := Compare(srcSide.Normalized, tgtSide.Normalized)
			rows = append(rows, PriceRow{
				Source:      srcSide,
				Target:      tgtSide,
				Confidence:  m.Confidence,
				Label:       th.Label(m.ConfidenceValue()),
				Basis:       basis,
				DiffPercent: diff,
				Verdict:     verdict,
			})
		}
	}
	return rows
}

func indexByID(items []models.CatalogItem) map[string]models.CatalogItem {
	idx := make(map[string]models.CatalogItem, len(items))
	for _, item := range items {
		idx[item.ID] = item
	}
	return idx
}

// Price recommendation actions
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionMaintain = "maintain"
)

const (
	// DefaultMarginFactor prices the source this far below the competitor per unit
	DefaultMarginFactor = 0.95
	// DefaultOpportunityBand is the per-unit gap, in percent, that flags a pair for review
	DefaultOpportunityBand = 10.0

	maintainBand  = 0.05
	decreaseFloor = 0.5
)

// PriceRecommendation suggests a new source price from the best matched competitor listing
type PriceRecommendation struct {
	Source          PriceSide `json:"source" yaml:"source"`
	Target          PriceSide `json:"target" yaml:"target"`
	Confidence      string    `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	RegularPrice    float64   `json:"regular_price" yaml:"regular_price"`
	CompetitorPrice float64   `json:"competitor_price" yaml:"competitor_price"`
	// Basis is empty when neither listing has a parseable quantity and raw prices are compared
	Basis        string   `json:"basis,omitempty" yaml:"basis,omitempty"`
	GapPercent   *float64 `json:"gap_percent,omitempty" yaml:"gap_percent,omitempty"`
	OptimalPrice *float64 `json:"optimal_price,omitempty" yaml:"optimal_price,omitempty"`
	NewPrice     float64  `json:"new_price" yaml:"new_price"`
	// Discounts are percentages off RegularPrice
	CurrentDiscount float64 `json:"current_discount" yaml:"current_discount"`
	NewDiscount     float64 `json:"new_discount" yaml:"new_discount"`
	Action          string  `json:"action" yaml:"action"`
	Reason          string  `json:"reason" yaml:"reason"`
}

// RecommendPrice targets margin times the competitor's per-unit price, scaled back to the
// source pack size. Prices more than 5% off that optimum move toward it: increases are
// capped at the regular price and decreases never go below half of it. A non-positive
// margin uses DefaultMarginFactor.
func RecommendPrice(source, target models.CatalogItem, margin float64) PriceRecommendation {
	if margin <= 0 {
		margin = DefaultMarginFactor
	}
	src, tgt := priceSide(source), priceSide(target)
	rec := PriceRecommendation{
		Source:          src,
		Target:          tgt,
		RegularPrice:    ParsePrice(source.RegularPrice),
		CompetitorPrice: tgt.Price,
		NewPrice:        src.Price,
		Action:          ActionMaintain,
	}
	rec.CurrentDiscount = discountPercent(rec.RegularPrice, src.Price)
	rec.NewDiscount = rec.CurrentDiscount

	if rec.RegularPrice <= 0 || src.Price <= 0 {
		rec.Reason = "source regular price missing"
		return rec
	}
	if tgt.Price <= 0 {
		rec.Reason = "competitor price missing"
		return rec
	}

	var srcUnit, tgtUnit, scale float64
	switch {
	case src.Normalized.Per500g != nil && tgt.Normalized.Per500g != nil:
		rec.Basis = BasisWeight
		srcUnit, tgtUnit, scale = *src.Normalized.Per500g, *tgt.Normalized.Per500g, src.Quantity.Grams/500
	case src.Normalized.PerPiece != nil && tgt.Normalized.PerPiece != nil:
		rec.Basis = BasisPiece
		srcUnit, tgtUnit, scale = *src.Normalized.PerPiece, *tgt.Normalized.PerPiece, float64(src.Quantity.Pieces)
	case src.Quantity == (Quantity{}) && tgt.Quantity == (Quantity{}):
		srcUnit, tgtUnit, scale = src.Price, tgt.Price, 1
	default:
		rec.Reason = "pack sizes use different units"
		return rec
	}

	gap := (srcUnit - tgtUnit) / tgtUnit * 100
	rec.GapPercent = &gap
	optimal := roundPaise(tgtUnit * margin * scale)
	rec.OptimalPrice = &optimal

	switch {
	case src.Price < optimal*(1-maintainBand):
		rec.Action = ActionIncrease
		rec.NewPrice = math.Max(src.Price, math.Min(rec.RegularPrice, optimal))
		rec.Reason = "priced below the competitor-adjusted optimum"
	case src.Price > optimal*(1+maintainBand):
		rec.Action = ActionDecrease
		rec.NewPrice = math.Min(src.Price, math.Max(optimal, roundPaise(rec.RegularPrice*decreaseFloor)))
		rec.Reason = "priced above the competitor-adjusted optimum"
	default:
		rec.Reason = "within 5% of the competitor-adjusted optimum"
	}
	rec.NewDiscount = discountPercent(rec.RegularPrice, rec.NewPrice)
	return rec
}

func discountPercent(regular, price float64) float64 {
	if regular <= 0 || price >= regular {
		return 0
	}
	return roundPaise((regular - price) / regular * 100)
}

func roundPaise(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecommendPrices recommends a price for every report source against its best accepted match.
// Sources or targets missing from the catalogs are skipped.
func RecommendPrices(report *models.MatchReport, sources, targets []models.CatalogItem, threshold, margin float64) []PriceRecommendation {
	sourceByID, targetByID := indexByID(sources), indexByID(targets)

	recs := []PriceRecommendation{}
	for _, id := range report.SourceIDs() {
		src, ok := sourceByID[id]
		if !ok {
			continue
		}
		for _, m := range FilterMatches(report.WeightedMatches[id], threshold) {
			tgt, ok := targetByID[m.TargetID]
			if !ok {
				continue
			}
			rec := RecommendPrice(src, tgt, margin)
			rec.Confidence = m.Confidence
			recs = append(recs, rec)
			break
		}
	}
	return recs
}

// Opportunities splits recommendations whose per-unit gap exceeds the band
type Opportunities struct {
	// Premium lists sources cheaper than the competitor; there is room to raise prices
	Premium []PriceRecommendation `json:"premium" yaml:"premium"`
	// Adjust lists sources dearer than the competitor
	Adjust []PriceRecommendation `json:"adjust" yaml:"adjust"`
}

// GroupOpportunities keeps recommendations more than band percent away from the competitor
func GroupOpportunities(recs []PriceRecommendation, band float64) Opportunities {
	out := Opportunities{Premium: []PriceRecommendation{}, Adjust: []PriceRecommendation{}}
	for _, rec := range recs {
		if rec.GapPercent == nil {
			continue
		}
		switch gap := *rec.GapPercent; {
		case gap < -band:
			out.Premium = append(out.Premium, rec)
		case gap > band:
			out.Adjust = append(out.Adjust, rec)
		}
	}
	return out
}
