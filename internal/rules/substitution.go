package rules

import (
	"context"
	"fmt"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/plan"
)

// tier identifies which stage of the resolution chain produced a
// substitute; it is embedded in the replacement reason text.
type tier string

const (
	tierRule     tier = "DB substitution"
	tierScan     tier = "catalog fallback"
	tierOracle   tier = "LLM substitution"
	tierFallback tier = "fallback"
)

// maxOracleAttempts bounds retries of the oracle suggestion call when
// it keeps returning names that are already accepted. Transport
// failures are never retried.
const maxOracleAttempts = 5

// substitutionRequest carries everything the chain needs to resolve
// one unsafe item.
type substitutionRequest struct {
	unsafeName  string
	conflictKey string // matched allergen or body part
	category    catalog.Category
	goal        string

	// conflicts reports whether a candidate is itself unsafe for the
	// profile. Substitutes must clear the full profile, not just the
	// key that flagged the original item.
	conflicts func(ctx context.Context, item plan.Item) bool
}

// resolveSubstitute walks the resolution chain in strict tier order
// and returns the first substitute that is safe and not already
// accepted. The winner is admitted to the guard before returning, and
// the chain always terminates: tier 4 synthesizes a name that cannot
// collide.
func (e *Engine) resolveSubstitute(ctx context.Context, req substitutionRequest, guard *dedupGuard) (plan.Item, tier) {
	// Tier 1: pre-authored substitution rule, highest priority first.
	// A catalog error here just advances the chain.
	if rules, err := e.subs.FindByTag(ctx, req.conflictKey, req.category); err == nil && len(rules) > 0 {
		candidate := rules[0].PlanItem()
		if !req.conflicts(ctx, candidate) && guard.Admit(candidate.Name) {
			return withDefaults(candidate, req.category), tierRule
		}
	}

	// Tier 2: scan the active catalog for anything that clears the
	// profile and has not been used yet.
	if items, err := e.items.ListActive(ctx, req.category); err == nil {
		for _, ci := range items {
			candidate := ci.PlanItem()
			if guard.Has(candidate.Name) {
				continue
			}
			if req.conflicts(ctx, candidate) {
				continue
			}
			guard.Admit(candidate.Name)
			return withDefaults(candidate, req.category), tierScan
		}
	}

	// Tier 3: ask the oracle. Only a colliding (or conflicting) answer
	// consumes a retry; a transport failure falls straight through.
	for attempt := 0; attempt < maxOracleAttempts; attempt++ {
		suggestion, err := e.oracle.SuggestReplacement(ctx, req.unsafeName, req.conflictKey, string(req.category), req.goal)
		if err != nil {
			break
		}
		if guard.Has(suggestion.Name) || req.conflicts(ctx, suggestion) {
			continue
		}
		guard.Admit(suggestion.Name)
		return withDefaults(suggestion, req.category), tierOracle
	}

	// Tier 4: deterministic synthetic fallback. The accepted-count
	// suffix is bumped until the guard admits, so this always resolves.
	prefix := "Alternative Meal"
	if req.category == catalog.CategoryWorkout {
		prefix = "Alternative Exercise"
	}
	for n := guard.Count() + 1; ; n++ {
		name := fmt.Sprintf("%s %d", prefix, n)
		if guard.Admit(name) {
			return withDefaults(plan.Item{Name: name}, req.category), tierFallback
		}
	}
}

// withDefaults fills in conservative values for any numeric attribute
// a substitute is missing.
func withDefaults(item plan.Item, category catalog.Category) plan.Item {
	defaults := map[string]float64{
		"calories": 300, "protein": 20, "carbs": 30, "fat": 10,
	}
	if category == catalog.CategoryWorkout {
		defaults = map[string]float64{
			"duration": 30, "estimated_calories": 150,
		}
	}

	attrs := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		attrs[k] = v
	}
	for k, v := range item.Attributes {
		attrs[k] = v
	}
	item.Attributes = attrs
	return item
}
