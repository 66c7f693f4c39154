package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flicky/aqua-storefront/internal/model"
)

// Seed returns the built-in catalog used for local mode and for seeding an
// empty remote collection. Each call returns a fresh copy.
func Seed() []model.Product {
	return []model.Product{
		{
			ID: "betta-halfmoon", SKU: "FSH-001", Name: "Halfmoon Betta", Category: "Fish",
			Price: 450, Weight: decimal.RequireFromString("0.2"), Stock: 24,
			Description: "Hand-picked halfmoon betta, bagged with oxygen for transit.",
			Image:       "https://images.mvsaqua.com/betta-halfmoon.jpg", Featured: true,
		},
		{
			ID: "guppy-trio", SKU: "FSH-014", Name: "Fancy Guppy Trio", Category: "Fish",
			Price: 300, Weight: decimal.RequireFromString("0.3"), Stock: 40,
			Description: "One male and two female fancy guppies, tank raised.",
			Image:       "https://images.mvsaqua.com/guppy-trio.jpg",
		},
		{
			ID: "anubias-nana", SKU: "PLT-003", Name: "Anubias Nana", Category: "Plants",
			Price: 250, Weight: decimal.RequireFromString("0.1"), Stock: 35,
			Description: "Hardy low-light plant tied to driftwood.",
			Image:       "https://images.mvsaqua.com/anubias-nana.jpg", Featured: true,
		},
		{
			ID: "hob-filter-600", SKU: "EQP-021", Name: "Hang-On-Back Filter 600L/h", Category: "Equipment",
			Price: 1850, Weight: decimal.RequireFromString("1.2"), Stock: 12,
			Description: "Three stage filtration for tanks up to 120 litres.",
			Image:       "https://images.mvsaqua.com/hob-filter-600.jpg",
		},
		{
			ID: "aqua-soil-5kg", SKU: "SUB-008", Name: "Aqua Soil 5kg", Category: "Substrate",
			Price: 1400, Weight: decimal.RequireFromString("5"), Stock: 18,
			Description: "Nutrient rich planted-tank substrate.",
			Image:       "https://images.mvsaqua.com/aqua-soil-5kg.jpg",
		},
		{
			ID: "flake-food-100g", SKU: "FD-002", Name: "Tropical Flake Food 100g", Category: "Food",
			Price: 220, Weight: decimal.RequireFromString("0.15"), Stock: 60,
			Description: "Daily staple for community tanks.",
			Image:       "https://images.mvsaqua.com/flake-food-100g.jpg",
		},
	}
}

// Context renders the catalog as the inventory block handed to the shop assistant.
func Context(products []model.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("Product: %s, Category: %s, Price: ₹%d, Stock: %d, SKU: %s, Desc: %s",
			p.Name, p.Category, p.Price, p.Stock, p.SKU, p.Description))
	}
	return strings.Join(lines, "\n")
}

// Search matches name or SKU case-insensitively. An empty query matches nothing.
func Search(products []model.Product, query string, limit int) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
