package app

import (
	"context"
	"fmt"
	"log"

	"ai-plan-guard/internal/plan"
	"ai-plan-guard/internal/storage"
)

// PlanGenerator produces the candidate plan for a profile.
type PlanGenerator interface {
	Generate(ctx context.Context, profile plan.SafetyProfile) (plan.Plan, error)
}

// Sanitizer personalizes a candidate plan to the profile.
type Sanitizer interface {
	Apply(ctx context.Context, p plan.Plan, profile plan.SafetyProfile) plan.SanitizedPlan
}

// App holds the application's dependencies.
type App struct {
	generator PlanGenerator
	sanitizer Sanitizer
	archive   *storage.PlanStore
}

// NewApp creates and initializes a new App instance. The archive may
// be nil when persistence is not wanted.
func NewApp(generator PlanGenerator, sanitizer Sanitizer, archive *storage.PlanStore) *App {
	return &App{generator: generator, sanitizer: sanitizer, archive: archive}
}

// SafePlan generates a candidate plan for the profile and runs the
// safety pass over it. Generation errors propagate; the safety pass
// itself never fails.
func (a *App) SafePlan(ctx context.Context, profile plan.SafetyProfile) (plan.SanitizedPlan, error) {
	candidate, err := a.generator.Generate(ctx, profile)
	if err != nil {
		return plan.SanitizedPlan{}, fmt.Errorf("failed to generate plan: %w", err)
	}

	sanitized := a.sanitizer.Apply(ctx, candidate, profile)

	if a.archive != nil {
		if planID, err := a.archive.Save(profile.Goal, sanitized); err != nil {
			log.Printf("Warning: failed to archive plan: %v", err)
		} else {
			log.Printf("Archived plan as %s", planID)
		}
	}

	return sanitized, nil
}

// PrintPlan writes a sanitized plan to stdout in the CLI format.
func PrintPlan(sp plan.SanitizedPlan) {
	fmt.Println("\n=== MEALS ===")
	for _, meal := range sp.Meals {
		fmt.Printf("- %s (%.0f kcal, %.0fg protein)\n",
			meal.Name, meal.Attr("calories", 0), meal.Attr("protein", 0))
	}

	fmt.Println("\n=== WORKOUTS ===")
	for _, workout := range sp.Workouts {
		fmt.Printf("- %s (%.0f min, ~%.0f kcal)\n",
			workout.Name, workout.Attr("duration", 0), workout.Attr("estimated_calories", 0))
	}

	records := make([]plan.ReplacementRecord, 0, len(sp.Replacements.Meals)+len(sp.Replacements.Workouts))
	records = append(records, sp.Replacements.Meals...)
	records = append(records, sp.Replacements.Workouts...)
	if len(records) > 0 {
		fmt.Println("\n=== REPLACEMENTS ===")
		for _, rec := range records {
			fmt.Printf("- %s -> %s: %s\n", rec.ReplacedName, rec.ReplacementName, rec.Reason)
		}
	}
}
