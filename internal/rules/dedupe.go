package rules

import "ai-plan-guard/internal/plan"

// dedupGuard enforces case-insensitive name uniqueness within one
// category of one Apply call. It is never shared across requests or
// across the meals/workouts categories.
type dedupGuard struct {
	seen map[string]struct{}
}

func newDedupGuard() *dedupGuard {
	return &dedupGuard{seen: make(map[string]struct{})}
}

// Admit records the name and returns true if it was not already
// accepted; otherwise it returns false and records nothing.
func (g *dedupGuard) Admit(name string) bool {
	key := plan.NameKey(name)
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}
	return true
}

// Has reports whether a name has already been accepted.
func (g *dedupGuard) Has(name string) bool {
	_, ok := g.seen[plan.NameKey(name)]
	return ok
}

// Count returns the number of accepted names.
func (g *dedupGuard) Count() int {
	return len(g.seen)
}

// dedupeItems drops later case-insensitive duplicates, keeping first
// occurrence and input order. This is input sanitization: it produces
// no replacement records.
func dedupeItems(items []plan.Item) []plan.Item {
	guard := newDedupGuard()
	out := make([]plan.Item, 0, len(items))
	for _, item := range items {
		if item.Key() == "" {
			continue
		}
		if guard.Admit(item.Name) {
			out = append(out, item)
		}
	}
	return out
}
