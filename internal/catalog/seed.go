package catalog

import (
	"context"
	"fmt"
	"log"
)

type seedItem struct {
	name  string
	tags  []string
	attrs map[string]float64
}

type seedRule struct {
	tag      string
	target   string
	priority int
}

var seedMeals = []seedItem{
	{"Chicken Breast", nil, map[string]float64{"calories": 220, "protein": 40, "carbs": 0, "fat": 5}},
	{"Salmon", []string{"fish"}, map[string]float64{"calories": 280, "protein": 34, "carbs": 0, "fat": 15}},
	{"Tofu Stir Fry", []string{"soy"}, map[string]float64{"calories": 320, "protein": 22, "carbs": 25, "fat": 14}},
	{"Brown Rice", nil, map[string]float64{"calories": 215, "protein": 5, "carbs": 45, "fat": 2}},
	{"Quinoa Bowl", nil, map[string]float64{"calories": 300, "protein": 12, "carbs": 45, "fat": 8}},
	{"Broccoli", nil, map[string]float64{"calories": 55, "protein": 4, "carbs": 11, "fat": 0}},
	{"Greek Yogurt", []string{"dairy"}, map[string]float64{"calories": 150, "protein": 15, "carbs": 20, "fat": 2}},
	{"Almond Milk", []string{"tree nut"}, map[string]float64{"calories": 60, "protein": 1, "carbs": 8, "fat": 3}},
	{"Oat Milk", nil, map[string]float64{"calories": 90, "protein": 2, "carbs": 16, "fat": 2}},
	{"Peanut Butter Toast", []string{"peanut", "gluten"}, map[string]float64{"calories": 290, "protein": 11, "carbs": 30, "fat": 15}},
	{"Scrambled Eggs", []string{"egg"}, map[string]float64{"calories": 200, "protein": 14, "carbs": 2, "fat": 14}},
	{"Oatmeal with Berries", nil, map[string]float64{"calories": 250, "protein": 8, "carbs": 45, "fat": 5}},
	{"Grilled Chicken Salad", nil, map[string]float64{"calories": 350, "protein": 35, "carbs": 20, "fat": 12}},
	{"Shrimp Tacos", []string{"shellfish", "gluten"}, map[string]float64{"calories": 380, "protein": 24, "carbs": 38, "fat": 14}},
	{"Hummus and Veggies", []string{"sesame"}, map[string]float64{"calories": 180, "protein": 6, "carbs": 20, "fat": 9}},
}

var seedMealRules = []seedRule{
	{"dairy", "Almond Milk", 0},
	{"dairy", "Oat Milk", 1},
	{"tree nut", "Oat Milk", 0},
	{"peanut", "Hummus and Veggies", 0},
	{"gluten", "Quinoa Bowl", 0},
	{"gluten", "Brown Rice", 1},
	{"egg", "Tofu Stir Fry", 0},
	{"fish", "Chicken Breast", 0},
	{"shellfish", "Grilled Chicken Salad", 0},
	{"soy", "Scrambled Eggs", 0},
}

var seedWorkouts = []seedItem{
	{"Squats", []string{"knee"}, map[string]float64{"duration": 15, "estimated_calories": 120}},
	{"Lunges", []string{"knee"}, map[string]float64{"duration": 15, "estimated_calories": 110}},
	{"Leg Press", []string{"knee"}, map[string]float64{"duration": 15, "estimated_calories": 130}},
	{"Push-Ups", []string{"wrist", "shoulder"}, map[string]float64{"duration": 10, "estimated_calories": 100}},
	{"Bench Press", []string{"wrist", "shoulder"}, map[string]float64{"duration": 20, "estimated_calories": 140}},
	{"Deadlift", []string{"back", "knee"}, map[string]float64{"duration": 20, "estimated_calories": 160}},
	{"Plank", nil, map[string]float64{"duration": 5, "estimated_calories": 75}},
	{"Stationary Bike", nil, map[string]float64{"duration": 20, "estimated_calories": 200}},
	{"Swimming", nil, map[string]float64{"duration": 30, "estimated_calories": 250}},
	{"Seated Row", []string{"back"}, map[string]float64{"duration": 15, "estimated_calories": 110}},
	{"Glute Bridge", nil, map[string]float64{"duration": 10, "estimated_calories": 80}},
	{"Brisk Walking", nil, map[string]float64{"duration": 30, "estimated_calories": 150}},
}

var seedWorkoutRules = []seedRule{
	{"knee", "Swimming", 0},
	{"knee", "Seated Row", 1},
	{"wrist", "Stationary Bike", 0},
	{"wrist", "Glute Bridge", 1},
	{"shoulder", "Brisk Walking", 0},
	{"back", "Glute Bridge", 0},
	{"back", "Brisk Walking", 1},
}

// Seed populates the catalog with the default items and substitution
// rules. It is a no-op if the catalog already has meals, so running it
// twice does not duplicate rules.
func Seed(ctx context.Context, repo *Repository) error {
	count, err := repo.Count(ctx, CategoryMeal)
	if err != nil {
		return fmt.Errorf("failed to check existing catalog: %w", err)
	}
	if count > 0 {
		log.Println("Catalog already seeded, skipping.")
		return nil
	}

	if err := seedCategory(ctx, repo, CategoryMeal, seedMeals, seedMealRules); err != nil {
		return err
	}
	if err := seedCategory(ctx, repo, CategoryWorkout, seedWorkouts, seedWorkoutRules); err != nil {
		return err
	}

	log.Printf("Seeded %d meals and %d workouts.", len(seedMeals), len(seedWorkouts))
	return nil
}

func seedCategory(ctx context.Context, repo *Repository, category Category, items []seedItem, rules []seedRule) error {
	ids := make(map[string]int64, len(items))
	for _, si := range items {
		item := Item{
			Name:       si.name,
			Category:   category,
			Tags:       si.tags,
			Attributes: si.attrs,
			Active:     true,
		}
		if err := repo.Upsert(ctx, &item); err != nil {
			return fmt.Errorf("failed to seed %s %q: %w", category, si.name, err)
		}
		ids[si.name] = item.ID
	}

	for _, rule := range rules {
		targetID, ok := ids[rule.target]
		if !ok {
			return fmt.Errorf("substitution rule for %q targets unknown item %q", rule.tag, rule.target)
		}
		err := repo.AddSubstitution(ctx, SubstitutionRule{
			Tag:          rule.tag,
			Category:     category,
			SubstituteID: targetID,
			Priority:     rule.priority,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
