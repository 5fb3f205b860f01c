package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/llm"
	"ai-plan-guard/internal/plan"
	"ai-plan-guard/internal/shared"
)

// Fallback item lists used to bias the model when the catalog is empty
// or unavailable.
var (
	fallbackFoods     = []string{"Chicken Breast", "Salmon", "Tofu", "Brown Rice", "Quinoa", "Broccoli"}
	fallbackExercises = []string{"Squats", "Push-Ups", "Stationary Bike", "Planks", "Seated Row"}
)

// Generator produces the candidate (unfiltered) plan for a goal. The
// output is intentionally unsafe-by-construction: the rules engine is
// responsible for the safety pass.
type Generator struct {
	textGen  llm.TextGenerator
	items    catalog.ItemCatalog
	recorder llm.MetaRecorder
}

// NewGenerator creates a new Generator. The recorder may be nil.
func NewGenerator(textGen llm.TextGenerator, items catalog.ItemCatalog, recorder llm.MetaRecorder) *Generator {
	return &Generator{textGen: textGen, items: items, recorder: recorder}
}

// Generate asks the model for a one-day meal and workout plan for the
// profile. The raw answer is normalized: the "exercises" alias is
// accepted, per-category literal repeats are dropped keeping first
// occurrence, and missing numeric fields get defaults.
func (g *Generator) Generate(ctx context.Context, profile plan.SafetyProfile) (plan.Plan, error) {
	prompt := g.buildPrompt(ctx, profile)

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("failed to generate candidate plan: %w", err)
	}
	if g.recorder != nil {
		meta := shared.AgentMeta{AgentName: "PlanGenerator", Usage: resp.Usage, Latency: time.Since(start)}
		if recErr := g.recorder.RecordMeta(meta); recErr != nil {
			log.Printf("Warning: failed to record generator metrics: %v", recErr)
		}
	}

	var raw struct {
		Meals     []rawMeal    `json:"meals"`
		Workouts  []rawWorkout `json:"workouts"`
		Exercises []rawWorkout `json:"exercises"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Content)), &raw); err != nil {
		return plan.Plan{}, fmt.Errorf("failed to parse candidate plan JSON: %w. Response: %s", err, resp.Content)
	}
	if len(raw.Workouts) == 0 && len(raw.Exercises) > 0 {
		raw.Workouts = raw.Exercises
	}

	candidate := plan.Plan{
		Meals:    dedupeFirst(mealItems(raw.Meals)),
		Workouts: dedupeFirst(workoutItems(raw.Workouts)),
	}
	if len(candidate.Meals) == 0 && len(candidate.Workouts) == 0 {
		return plan.Plan{}, fmt.Errorf("model returned an empty plan. Response: %s", resp.Content)
	}
	return candidate, nil
}

type rawMeal struct {
	Name     string   `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

type rawWorkout struct {
	Name              string   `json:"name"`
	Duration          *float64 `json:"duration"`
	EstimatedCalories *float64 `json:"estimated_calories"`
}

func (g *Generator) buildPrompt(ctx context.Context, profile plan.SafetyProfile) string {
	foods, exercises := g.availableItems(ctx)

	allergyText := "none"
	if len(profile.Allergies) > 0 {
		allergyText = strings.Join(profile.Allergies, ", ")
	}
	injuryParts := make([]string, 0, len(profile.Injuries))
	for _, inj := range profile.Injuries {
		injuryParts = append(injuryParts, fmt.Sprintf("%s (%s)", inj.BodyPart, inj.Severity))
	}
	injuryText := "none"
	if len(injuryParts) > 0 {
		injuryText = strings.Join(injuryParts, ", ")
	}

	return fmt.Sprintf(`
You are an AI fitness and nutrition assistant.

Respond ONLY with valid JSON - no Markdown, no code fences, no explanations.

Create a one-day workout and diet plan for a user whose goal is: %q.

- User allergies: %s.
- User injuries and severities: %s.

IMPORTANT:
- Try to primarily use foods from this list: %s
- Try to primarily use exercises from this list: %s
- Avoid any foods that conflict with the allergies.
- Avoid any exercises that would be unsafe given the injuries and severities.
- Generate 4-6 meals and 4-6 workouts.
- NO TWO MEALS and NO TWO WORKOUTS may share a name.

Return JSON with this exact structure:
{
  "meals": [
    {"name": "Scrambled Eggs with Spinach", "calories": 250, "protein": 18, "carbs": 5, "fat": 15}
  ],
  "workouts": [
    {"name": "Stationary Bike", "duration": 20, "estimated_calories": 200}
  ]
}

Duration is in minutes. Provide realistic nutritional values based on
typical serving sizes. Return ONLY the JSON.
`, profile.Goal, allergyText, injuryText, strings.Join(foods, ", "), strings.Join(exercises, ", "))
}

// availableItems fetches active catalog names to bias the model toward
// items the substitution catalog actually knows about.
func (g *Generator) availableItems(ctx context.Context) ([]string, []string) {
	foods := fallbackFoods
	exercises := fallbackExercises

	if meals, err := g.items.ListActive(ctx, catalog.CategoryMeal); err != nil {
		log.Printf("Warning: failed to list catalog meals: %v", err)
	} else if len(meals) > 0 {
		foods = itemNames(meals)
	}

	if workouts, err := g.items.ListActive(ctx, catalog.CategoryWorkout); err != nil {
		log.Printf("Warning: failed to list catalog workouts: %v", err)
	} else if len(workouts) > 0 {
		exercises = itemNames(workouts)
	}

	return foods, exercises
}

func itemNames(items []catalog.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

func mealItems(raws []rawMeal) []plan.Item {
	items := make([]plan.Item, 0, len(raws))
	for _, r := range raws {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		items = append(items, plan.Item{
			Name: r.Name,
			Attributes: map[string]float64{
				"calories": deref(r.Calories, 0),
				"protein":  deref(r.Protein, 0),
				"carbs":    deref(r.Carbs, 0),
				"fat":      deref(r.Fat, 0),
			},
		})
	}
	return items
}

func workoutItems(raws []rawWorkout) []plan.Item {
	items := make([]plan.Item, 0, len(raws))
	for _, r := range raws {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		items = append(items, plan.Item{
			Name: r.Name,
			Attributes: map[string]float64{
				"duration":           deref(r.Duration, 30),
				"estimated_calories": deref(r.EstimatedCalories, 200),
			},
		})
	}
	return items
}

func dedupeFirst(items []plan.Item) []plan.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]plan.Item, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func deref(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
