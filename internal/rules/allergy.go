package rules

import (
	"context"
	"fmt"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/plan"
)

// filterMeals resolves every meal that conflicts with the user's
// allergies. Meals are processed in input order; each accepted name
// feeds the dedup guard before the next meal is considered.
func (e *Engine) filterMeals(ctx context.Context, meals []plan.Item, allergies []string, goal string) ([]plan.Item, []plan.ReplacementRecord) {
	replacements := []plan.ReplacementRecord{}
	if len(allergies) == 0 {
		return meals, replacements
	}

	guard := newDedupGuard()
	safe := make([]plan.Item, 0, len(meals))

	for _, meal := range meals {
		allergen := e.detectAllergen(ctx, meal.Name, allergies)
		if allergen == "" {
			// Safe, unless it collides with an earlier substitute.
			if guard.Admit(meal.Name) {
				safe = append(safe, meal)
			}
			continue
		}

		substitute, resolvedBy := e.resolveSubstitute(ctx, substitutionRequest{
			unsafeName:  meal.Name,
			conflictKey: allergen,
			category:    catalog.CategoryMeal,
			goal:        goal,
			conflicts: func(ctx context.Context, item plan.Item) bool {
				return e.detectAllergen(ctx, item.Name, allergies) != ""
			},
		}, guard)

		safe = append(safe, substitute)
		replacements = append(replacements, plan.ReplacementRecord{
			ReplacedName:    meal.Name,
			ReplacementName: substitute.Name,
			Reason:          fmt.Sprintf("%s allergy (%s)", allergen, resolvedBy),
		})
	}

	return safe, replacements
}

// detectAllergen returns the first allergy the meal conflicts with, or
// "" if none. Catalog tags are tested with bidirectional substring
// matching; a catalog miss or outage degrades to matching the allergy
// against the meal name itself.
func (e *Engine) detectAllergen(ctx context.Context, mealName string, allergies []string) string {
	tags, err := e.items.LookupTags(ctx, mealName, catalog.CategoryMeal)
	if err == nil {
		for _, allergy := range allergies {
			for _, tag := range tags {
				if matchesEitherWay(allergy, tag) {
					return allergy
				}
			}
		}
	}

	for _, allergy := range allergies {
		if nameContains(mealName, allergy) {
			return allergy
		}
	}
	return ""
}
