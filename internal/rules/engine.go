package rules

import (
	"context"
	"strings"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/llm"
	"ai-plan-guard/internal/plan"
)

// Engine is the safety filtering and substitution pipeline. It detects
// unsafe items against a user's safety profile, substitutes them
// through a tiered resolution chain, and guarantees the output has no
// duplicate-named items per category.
//
// All collaborators are injected; the engine holds no global state and
// every Apply call is independent.
type Engine struct {
	items  catalog.ItemCatalog
	subs   catalog.SubstitutionCatalog
	oracle llm.AdvisoryOracle
}

// NewEngine creates a new rules engine.
func NewEngine(items catalog.ItemCatalog, subs catalog.SubstitutionCatalog, oracle llm.AdvisoryOracle) *Engine {
	return &Engine{items: items, subs: subs, oracle: oracle}
}

// Apply sanitizes a candidate plan against the profile. It never
// fails: catalog and oracle outages degrade to heuristic detection and
// deterministic fallbacks, so every call terminates in a valid plan.
func (e *Engine) Apply(ctx context.Context, p plan.Plan, profile plan.SafetyProfile) plan.SanitizedPlan {
	// Literal repeats from the generator are input noise, not a safety
	// finding; drop them before filtering so they are never audited as
	// replacements.
	meals := dedupeItems(p.Meals)
	workouts := dedupeItems(p.Workouts)

	safeMeals, mealReplacements := e.filterMeals(ctx, meals, profile.Allergies, profile.Goal)
	safeWorkouts, workoutReplacements := e.filterWorkouts(ctx, workouts, profile.Injuries, profile.Goal)

	return plan.SanitizedPlan{
		Meals:    safeMeals,
		Workouts: safeWorkouts,
		Replacements: plan.Replacements{
			Meals:    mealReplacements,
			Workouts: workoutReplacements,
		},
	}
}

// matchesEitherWay reports whether either string contains the other,
// case-insensitively. Both directions matter: a profile entry "dairy"
// must match a tag "dairy products" and vice versa.
func matchesEitherWay(a, b string) bool {
	ka, kb := plan.NameKey(a), plan.NameKey(b)
	if ka == "" || kb == "" {
		return false
	}
	return strings.Contains(ka, kb) || strings.Contains(kb, ka)
}

// nameContains reports whether an item name contains the given term,
// case-insensitively.
func nameContains(name, term string) bool {
	k := plan.NameKey(term)
	return k != "" && strings.Contains(plan.NameKey(name), k)
}
