package potluck

import "github.com/Lixing-Zhang/potluck/internal/models"

// CategorySummary is the running total of one configured category.
type CategorySummary struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Max   int    `json:"max"`
	Total int    `json:"total"`
	// Remaining is max(0, Max-Total).
	Remaining int `json:"remaining"`
	// Count is the number of entries in the category.
	Count int `json:"count"`
	// Available is true while Total < Max.
	Available bool `json:"available"`
}

// Summarize computes per-category totals for the configured categories, in
// configuration order. Entries whose category matches no configured
// category are not counted anywhere.
func Summarize(categories []models.Category, entries []models.Entry) []CategorySummary {
	totals := make(map[string]int, len(categories))
	counts := make(map[string]int, len(categories))
	for _, e := range entries {
		name, ok := models.NormalizeCategory(categories, e.Category)
		if !ok {
			continue
		}
		totals[name] += e.Quantity
		counts[name]++
	}

	out := make([]CategorySummary, len(categories))
	for i, c := range categories {
		total := totals[c.Name]
		out[i] = CategorySummary{
			Name:      c.Name,
			Label:     c.Label,
			Max:       c.Max,
			Total:     total,
			Remaining: max(0, c.Max-total),
			Count:     counts[c.Name],
			Available: total < c.Max,
		}
	}
	return out
}

// AvailableCategories lists the names of categories that can still take
// entries, in configuration order.
func AvailableCategories(summary []CategorySummary) []string {
	var out []string
	for _, s := range summary {
		if s.Available {
			out = append(out, s.Name)
		}
	}
	return out
}

// Remaining returns the remaining capacity of the named category, or 0 when
// it is not configured.
func Remaining(summary []CategorySummary, category string) int {
	for _, s := range summary {
		if s.Name == category {
			return s.Remaining
		}
	}
	return 0
}

// QuantityBound is the largest quantity the form accepts for a category:
// the remaining capacity, but never below 1.
func QuantityBound(summary []CategorySummary, category string) int {
	return max(1, Remaining(summary, category))
}

// ClampQuantity bounds q to [1, bound].
func ClampQuantity(q, bound int) int {
	return min(max(q, 1), max(bound, 1))
}

// fallbackCategory keeps selected if it is still available, otherwise
// returns the first available category, or "" when none remain.
func fallbackCategory(available []string, selected string) string {
	for _, name := range available {
		if name == selected {
			return selected
		}
	}
	if len(available) == 0 {
		return ""
	}
	return available[0]
}
