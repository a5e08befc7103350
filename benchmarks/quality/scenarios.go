// ABOUTME: Labeled catalog scenarios for match quality benchmarks
// ABOUTME: Each scenario pairs small source and target catalogs with the expected best match

package quality

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harper/catmatch/internal/models"
)

// Scenario is a self-contained labeled matching problem
type Scenario struct {
	ID          string
	Name        string
	Description string
	Sources     []models.CatalogItem
	Targets     []models.CatalogItem
	GroundTruth GroundTruth
}

// GroundTruth maps source id to the target id a reviewer picked as the correct match
type GroundTruth struct {
	Expected map[string]string
}

// Result is the outcome of one evaluated scenario or labeled report
type Result struct {
	ScenarioID   string                 `json:"scenario_id"`
	ScenarioName string                 `json:"scenario_name"`
	Labeled      int                    `json:"labeled"`
	PrecisionAt1 float64                `json:"precision_at_1"`
	RecallAtK    float64                `json:"recall_at_k"`
	MRR          float64                `json:"mrr"`
	Status       string                 `json:"status"`
	Details      map[string]interface{} `json:"details"`
}

// LabelFile is the on-disk format for reviewer labels
type LabelFile struct {
	Pairs []struct {
		SourceID string `json:"japfa_id"`
		TargetID string `json:"licious_id"`
	} `json:"pairs"`
}

// LoadLabels reads reviewer labels into a source id to target id map
func LoadLabels(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading labels %s: %w", path, err)
	}
	var lf LabelFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("decoding labels %s: %w", path, err)
	}
	labels := make(map[string]string, len(lf.Pairs))
	for _, p := range lf.Pairs {
		if p.SourceID == "" || p.TargetID == "" {
			return nil, fmt.Errorf("%w: label pair needs japfa_id and licious_id", models.ErrMissingField)
		}
		labels[p.SourceID] = p.TargetID
	}
	return labels, nil
}

// GetReorderedTitles checks that word order does not matter
func GetReorderedTitles() Scenario {
	return Scenario{
		ID:          "reorder",
		Name:        "Reordered titles",
		Description: "The same product listed with its title words in a different order",
		Sources: []models.CatalogItem{
			{ID: "J1", Title: "Chicken Breast Boneless", Type: "chicken", Category: "Chicken"},
			{ID: "J2", Title: "Mutton Curry Cut", Type: "mutton", Category: "Mutton"},
			{ID: "J3", Title: "Rohu Fish Steaks", Type: "seafood", Category: "Fish"},
		},
		Targets: []models.CatalogItem{
			{ID: "L1", Title: "Chicken Drumsticks", Type: "chicken", Category: "Poultry"},
			{ID: "L2", Title: "Boneless Chicken Breast", Type: "chicken", Category: "Poultry"},
			{ID: "L3", Title: "Curry Cut Mutton", Type: "mutton", Category: "Mutton"},
			{ID: "L4", Title: "Steaks Rohu Fish", Type: "seafood", Category: "Fish & Seafood"},
		},
		GroundTruth: GroundTruth{Expected: map[string]string{"J1": "L2", "J2": "L3", "J3": "L4"}},
	}
}

// GetMarketingNoise checks that marketing and packaging words are ignored
func GetMarketingNoise() Scenario {
	return Scenario{
		ID:          "noise",
		Name:        "Marketing noise",
		Description: "Source titles padded with adjectives and brand words the target omits",
		Sources: []models.CatalogItem{
			{ID: "J1", Title: "Fresh Premium Chicken Wings", Type: "chicken"},
			{ID: "J2", Title: "Tender Juicy Lamb Chops", Type: "mutton"},
			{ID: "J3", Title: "Farm Fresh Brown Eggs", Type: "eggs"},
		},
		Targets: []models.CatalogItem{
			{ID: "L1", Title: "Chicken Lollipop", Type: "chicken"},
			{ID: "L2", Title: "Chicken Wings", Type: "chicken"},
			{ID: "L3", Title: "Lamb Chops", Type: "mutton"},
			{ID: "L4", Title: "White Eggs", Type: "eggs"},
			{ID: "L5", Title: "Brown Eggs Pack of 6", Type: "eggs"},
		},
		GroundTruth: GroundTruth{Expected: map[string]string{"J1": "L2", "J2": "L3", "J3": "L5"}},
	}
}

// GetTypeTiebreak checks that the type field separates identical titles
func GetTypeTiebreak() Scenario {
	return Scenario{
		ID:          "type",
		Name:        "Type tiebreak",
		Description: "Identical titles across meats where only the product type differs",
		Sources: []models.CatalogItem{
			{ID: "J1", Title: "Curry Cut", Type: "chicken"},
			{ID: "J2", Title: "Keema", Type: "mutton"},
		},
		Targets: []models.CatalogItem{
			{ID: "L1", Title: "Curry Cut", Type: "mutton"},
			{ID: "L2", Title: "Curry Cut", Type: "chicken"},
			{ID: "L3", Title: "Keema", Type: "chicken"},
			{ID: "L4", Title: "Keema", Type: "mutton"},
		},
		GroundTruth: GroundTruth{Expected: map[string]string{"J1": "L2", "J2": "L4"}},
	}
}

// GetAllScenarios returns every built-in scenario
func GetAllScenarios() []Scenario {
	return []Scenario{
		GetReorderedTitles(),
		GetMarketingNoise(),
		GetTypeTiebreak(),
	}
}

// GetScenario looks up a built-in scenario by id
func GetScenario(id string) (Scenario, error) {
	for _, s := range GetAllScenarios() {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: scenario %q", models.ErrNotFound, id)
}
