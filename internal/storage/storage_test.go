package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-plan-guard/internal/plan"
)

func TestPlanStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "storage_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}
	store.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	sp := plan.SanitizedPlan{
		Meals:    []plan.Item{{Name: "Oatmeal", Attributes: map[string]float64{"calories": 250}}},
		Workouts: []plan.Item{{Name: "Swimming", Attributes: map[string]float64{"duration": 30}}},
		Replacements: plan.Replacements{
			Workouts: []plan.ReplacementRecord{
				{ReplacedName: "Squats", ReplacementName: "Swimming", Reason: "knee contraindication (DB substitution)"},
			},
		},
	}

	var planID string

	t.Run("Save", func(t *testing.T) {
		planID, err = store.Save("Lose Weight", sp)
		if err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		if !strings.HasPrefix(planID, "lose-weight_2025-03-14") {
			t.Errorf("Unexpected plan ID '%s'", planID)
		}
		filePath := filepath.Join(tempDir, planID+".json")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			t.Errorf("Expected file '%s' to be created, but it wasn't", filePath)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		if !store.Exists(planID) {
			t.Errorf("Expected plan '%s' to exist, but it doesn't", planID)
		}
		if store.Exists("missing-plan") {
			t.Error("Expected 'missing-plan' to not exist, but it does")
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(planID)
		if err != nil {
			t.Fatalf("Failed to load plan: %v", err)
		}
		if len(loaded.Meals) != 1 || loaded.Meals[0].Name != "Oatmeal" {
			t.Errorf("Expected meal 'Oatmeal', got %+v", loaded.Meals)
		}
		if len(loaded.Replacements.Workouts) != 1 || loaded.Replacements.Workouts[0].ReplacementName != "Swimming" {
			t.Errorf("Expected one replacement record, got %+v", loaded.Replacements)
		}
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		if _, err := store.Load("missing-plan"); err == nil {
			t.Fatal("Expected an error for loading a missing plan, got nil")
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List()
		if err != nil {
			t.Fatalf("Failed to list plans: %v", err)
		}
		if len(ids) != 1 || ids[0] != planID {
			t.Errorf("Expected [%s], got %v", planID, ids)
		}
	})
}
