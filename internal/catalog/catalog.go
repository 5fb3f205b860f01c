package catalog

import (
	"context"

	"ai-plan-guard/internal/plan"
)

// Category distinguishes the two halves of the catalog.
type Category string

const (
	CategoryMeal    Category = "meal"
	CategoryWorkout Category = "workout"
)

// Item is a catalog entry: a known meal or workout together with its
// safety tags (allergens for meals, contraindications for workouts).
type Item struct {
	ID         int64              `json:"id,omitempty"`
	Name       string             `json:"name"`
	Category   Category           `json:"category"`
	Tags       []string           `json:"tags"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	Active     bool               `json:"is_active"`
}

// PlanItem converts a catalog entry into a plan item.
func (i Item) PlanItem() plan.Item {
	attrs := make(map[string]float64, len(i.Attributes))
	for k, v := range i.Attributes {
		attrs[k] = v
	}
	return plan.Item{Name: i.Name, Attributes: attrs}
}

// SubstitutionRule maps a conflict tag to a pre-authored substitute.
// Lower priority values are preferred.
type SubstitutionRule struct {
	ID           int64    `json:"id,omitempty"`
	Tag          string   `json:"tag"`
	Category     Category `json:"category"`
	SubstituteID int64    `json:"substitute_id"`
	Priority     int      `json:"priority"`
}

// ItemCatalog is the read-only lookup port the rules engine detects
// against. Lookups that find nothing return nil tags and no error;
// transport errors are surfaced so the caller can fall back to
// heuristic detection.
type ItemCatalog interface {
	// LookupTags returns the safety tags of the catalog entry whose
	// name matches (substring match permitted), or nil if unknown.
	LookupTags(ctx context.Context, name string, category Category) ([]string, error)

	// ListActive returns every active catalog item in a category.
	ListActive(ctx context.Context, category Category) ([]Item, error)
}

// SubstitutionCatalog is the read-only lookup port for pre-authored
// substitution rules.
type SubstitutionCatalog interface {
	// FindByTag returns the substitute candidates for a conflict tag,
	// ordered by priority ascending.
	FindByTag(ctx context.Context, tag string, category Category) ([]Item, error)
}
