// ABOUTME: Catalog item model and JSON snapshot loading
// ABOUTME: Each catalog names its own id field (japfa_id, licious_id) in the scraped JSON
package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default id fields for the two scraped catalogs
const (
	SourceIDField = "japfa_id"
	TargetIDField = "licious_id"
)

// ProductType is the coarse product category used as the type embedding field
type ProductType string

const (
	TypeChicken     ProductType = "chicken"
	TypeMutton      ProductType = "mutton"
	TypeSeafood     ProductType = "seafood"
	TypeEggs        ProductType = "eggs"
	TypeReadyToCook ProductType = "ready_to_cook"
)

// ParseProductType normalizes labels such as "Ready to Cook" or "ready-to-cook".
// Unknown labels are returned lower-cased with ok=false.
func ParseProductType(label string) (ProductType, bool) {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch ProductType(norm) {
	case TypeChicken, TypeMutton, TypeSeafood, TypeEggs, TypeReadyToCook:
		return ProductType(norm), true
	}
	return ProductType(norm), false
}

// Label returns the human text fed to the embedding model ("ready to cook")
func (t ProductType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// CatalogItem is one product from a single scraped snapshot
type CatalogItem struct {
	ID          string
	Title       string
	Description string
	Category    string
	Type        string

	// Optional listing details used by the price comparison
	Weight          string
	RegularPrice    string
	DiscountedPrice string
	ImageURL        string
	Servings        string
}

// ProductType parses the raw type label
func (c CatalogItem) ProductType() ProductType {
	t, _ := ParseProductType(c.Type)
	return t
}

// Validate checks mandatory fields before any embedding call is made
func (c CatalogItem) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title (item %s)", ErrMissingField, c.ID)
	}
	return nil
}

// Catalog is an ordered snapshot of items from one site
type Catalog struct {
	Name    string
	IDField string
	Items   []CatalogItem
}

// IDs returns the set of item ids in the catalog
func (c *Catalog) IDs() map[string]bool {
	ids := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		ids[item.ID] = true
	}
	return ids
}

// LoadCatalog reads a scraped JSON array and maps idField onto CatalogItem.ID
func LoadCatalog(path, idField string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(data, idField)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	cat.Name = path
	return cat, nil
}

// ParseCatalog decodes a JSON array of raw product objects
func ParseCatalog(data []byte, idField string) (*Catalog, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cat := &Catalog{IDField: idField, Items: make([]CatalogItem, 0, len(raw))}
	for _, obj := range raw {
		cat.Items = append(cat.Items, CatalogItem{
			ID:              stringField(obj, idField),
			Title:           stringField(obj, "title"),
			Description:     stringField(obj, "description"),
			Category:        stringField(obj, "category_name"),
			Type:            stringField(obj, "type"),
			Weight:          stringField(obj, "weight"),
			RegularPrice:    stringField(obj, "regular_price"),
			DiscountedPrice: stringField(obj, "discounted_price"),
			ImageURL:        stringField(obj, "image_url"),
			Servings:        stringField(obj, "servings"),
		})
	}
	return cat, nil
}

// stringField reads a JSON value as a string; scrapers emit ids and prices as numbers sometimes
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
