package models

import "strings"

// Category is a configured dish category with its capacity.
type Category struct {
	Name string `json:"name"`
	// Label describes what one unit of quantity means, e.g. "1 tray (serves 10)".
	Label string `json:"label"`
	Max   int    `json:"max"`
}

// DefaultCategories is used when the environment does not provide a usable
// category configuration.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Starters", Label: "1 tray (serves ~10)", Max: 6},
		{Name: "Veg curry", Label: "1 pot (serves ~12)", Max: 2},
		{Name: "Non-veg Curry", Label: "1 pot (serves ~12)", Max: 2},
		{Name: "Chapatis/Naan/Roti (Breads)", Label: "1 pack of 10", Max: 4},
		{Name: "Rice Items", Label: "1 pot (serves ~15)", Max: 2},
		{Name: "Sweets", Label: "1 box (serves ~10)", Max: 3},
	}
}

// NormalizeCategory maps a stored entry category onto a configured category
// name. Older entries carry the serving label in parentheses after the name
// ("Starters (1 tray)"); the longest configured name that prefixes the value
// followed by " (" wins. Returns false when nothing matches.
func NormalizeCategory(categories []Category, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	best := ""
	for _, c := range categories {
		if raw == c.Name {
			return c.Name, true
		}
		if strings.HasPrefix(raw, c.Name+" (") && strings.HasSuffix(raw, ")") && len(c.Name) > len(best) {
			best = c.Name
		}
	}
	return best, best != ""
}
