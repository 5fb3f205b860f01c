package plan

import "strings"

// Item is a single entry of a plan: one meal or one workout.
// Attributes carries the optional numeric fields (calories, protein,
// duration minutes, ...); missing fields are defaulted at the point
// of acceptance, never rejected.
type Item struct {
	Name       string             `json:"name"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// Key returns the identity of the item for deduplication and catalog
// lookups: the case-insensitive, trimmed form of its name.
func (i Item) Key() string {
	return NameKey(i.Name)
}

// NameKey normalizes a display name into its identity form.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Attr returns the named attribute, or def if it is absent.
func (i Item) Attr(name string, def float64) float64 {
	if v, ok := i.Attributes[name]; ok {
		return v
	}
	return def
}

// Plan is a candidate plan as produced by the generator. Order is
// meaningful; names are not guaranteed unique on input.
type Plan struct {
	Meals    []Item `json:"meals"`
	Workouts []Item `json:"workouts"`
}

// ReplacementRecord documents a single substitution made by the rules
// engine, naming the original item, its replacement, and why.
type ReplacementRecord struct {
	ReplacedName    string `json:"replaced"`
	ReplacementName string `json:"with"`
	Reason          string `json:"reason"`
}

// Replacements groups the substitution audit log per category.
type Replacements struct {
	Meals    []ReplacementRecord `json:"meals"`
	Workouts []ReplacementRecord `json:"workouts"`
}

// SanitizedPlan is the output of the rules engine: per category the
// items are pairwise name-unique (case-insensitive) and every
// substitution performed is recorded.
type SanitizedPlan struct {
	Meals        []Item       `json:"meals"`
	Workouts     []Item       `json:"workouts"`
	Replacements Replacements `json:"replacements"`
}
