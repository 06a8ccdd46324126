// Package menu turns a multi-course menu into a consolidated shopping list.
package menu

import (
	"log/slog"
	"strings"

	"github.com/larsfv/kokebok/internal/amount"
	"github.com/larsfv/kokebok/internal/model"
)

// AggregatedIngredient is one merged entry across all of a menu's recipes,
// scaled to the menu's target servings.
type AggregatedIngredient struct {
	Name         string
	Unit         string
	Category     string
	ScaledAmount float64
}

type aggregateKey struct {
	name string // lower-cased
	unit string // exact, case-sensitive
}

// Aggregate merges the ingredients of every recipe in the menu, keyed by
// (lower-cased name, unit). Each recipe's amounts are scaled by
// menuServings/recipeServings. Recipes that are missing or have a zero
// serving count are skipped, as are ingredients whose amount parses to 0
// ("salt to taste"). Output order is first-insertion order, so a given menu
// snapshot always aggregates the same way.
func Aggregate(m *model.Menu, logger *slog.Logger) []AggregatedIngredient {
	totals := make(map[aggregateKey]*AggregatedIngredient)
	var order []aggregateKey

	for _, mr := range m.Recipes {
		r := mr.Recipe
		if r == nil {
			logger.Warn("menu references missing recipe", "menu_id", m.ID, "menu_recipe_id", mr.ID)
			continue
		}
		if r.Servings <= 0 {
			logger.Warn("recipe has no serving count, skipping", "menu_id", m.ID, "recipe_id", r.ID)
			continue
		}

		scale := float64(m.Servings) / float64(r.Servings)

		for _, ing := range r.Ingredients {
			parsed := amount.Parse(ing.Amount)
			if parsed == 0 {
				continue
			}

			k := aggregateKey{name: strings.ToLower(ing.Name), unit: ing.Unit}
			if entry, ok := totals[k]; ok {
				entry.ScaledAmount += parsed * scale
				// First non-empty category wins.
				if entry.Category == "" && ing.Category != "" {
					entry.Category = ing.Category
				}
				continue
			}

			totals[k] = &AggregatedIngredient{
				Name:         ing.Name,
				Unit:         ing.Unit,
				Category:     ing.Category,
				ScaledAmount: parsed * scale,
			}
			order = append(order, k)
		}
	}

	out := make([]AggregatedIngredient, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	return out
}
