package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/llm"
	"ai-plan-guard/internal/plan"
)

type mockTextGenerator struct {
	response string
	err      error
	prompt   string
}

func (m *mockTextGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompt = prompt
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.response}, nil
}

type mockCatalog struct {
	meals    []catalog.Item
	workouts []catalog.Item
	err      error
}

func (m *mockCatalog) LookupTags(context.Context, string, catalog.Category) ([]string, error) {
	return nil, nil
}

func (m *mockCatalog) ListActive(_ context.Context, category catalog.Category) ([]catalog.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	if category == catalog.CategoryMeal {
		return m.meals, nil
	}
	return m.workouts, nil
}

func TestGenerate(t *testing.T) {
	textGen := &mockTextGenerator{
		response: `{
			"meals": [
				{"name": "Oatmeal", "calories": 250, "protein": 8, "carbs": 45, "fat": 5},
				{"name": "Oatmeal", "calories": 250},
				{"name": "Grilled Chicken Salad"}
			],
			"workouts": [
				{"name": "Squats", "duration": 15, "estimated_calories": 120},
				{"name": "Plank"}
			]
		}`,
	}
	gen := NewGenerator(textGen, &mockCatalog{
		meals:    []catalog.Item{{Name: "Oatmeal"}},
		workouts: []catalog.Item{{Name: "Squats"}},
	}, nil)

	candidate, err := gen.Generate(context.Background(), plan.SafetyProfile{Goal: "build muscle"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(candidate.Meals) != 2 {
		t.Errorf("Expected duplicate meal dropped, got %d meals", len(candidate.Meals))
	}
	if candidate.Meals[1].Attr("calories", -1) != 0 {
		t.Errorf("Expected missing meal calories defaulted to 0, got %v", candidate.Meals[1].Attributes)
	}
	if candidate.Workouts[1].Attr("duration", -1) != 30 {
		t.Errorf("Expected missing duration defaulted to 30, got %v", candidate.Workouts[1].Attributes)
	}
	if candidate.Workouts[1].Attr("estimated_calories", -1) != 200 {
		t.Errorf("Expected missing estimated_calories defaulted to 200, got %v", candidate.Workouts[1].Attributes)
	}
	if !strings.Contains(textGen.prompt, "build muscle") {
		t.Errorf("Expected the goal in the prompt")
	}
	if !strings.Contains(textGen.prompt, "Oatmeal") || !strings.Contains(textGen.prompt, "Squats") {
		t.Errorf("Expected catalog names to bias the prompt")
	}
}

func TestGenerateAcceptsExercisesAlias(t *testing.T) {
	textGen := &mockTextGenerator{
		response: `{"meals": [{"name": "Oatmeal"}], "exercises": [{"name": "Swimming"}]}`,
	}
	gen := NewGenerator(textGen, &mockCatalog{}, nil)

	candidate, err := gen.Generate(context.Background(), plan.SafetyProfile{Goal: "stay fit"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(candidate.Workouts) != 1 || candidate.Workouts[0].Name != "Swimming" {
		t.Errorf("Expected exercises alias accepted, got %+v", candidate.Workouts)
	}
}

func TestGenerateStripsCodeFences(t *testing.T) {
	textGen := &mockTextGenerator{
		response: "```json\n{\"meals\": [{\"name\": \"Oatmeal\"}], \"workouts\": []}\n```",
	}
	gen := NewGenerator(textGen, &mockCatalog{}, nil)

	candidate, err := gen.Generate(context.Background(), plan.SafetyProfile{Goal: "stay fit"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(candidate.Meals) != 1 {
		t.Errorf("Expected fenced JSON parsed, got %+v", candidate)
	}
}

func TestGenerateUsesFallbackListsOnCatalogError(t *testing.T) {
	textGen := &mockTextGenerator{
		response: `{"meals": [{"name": "Tofu"}], "workouts": [{"name": "Planks"}]}`,
	}
	gen := NewGenerator(textGen, &mockCatalog{err: errors.New("catalog down")}, nil)

	if _, err := gen.Generate(context.Background(), plan.SafetyProfile{Goal: "stay fit"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(textGen.prompt, "Chicken Breast") || !strings.Contains(textGen.prompt, "Stationary Bike") {
		t.Errorf("Expected fallback lists in the prompt when the catalog is down")
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("TransportFailure", func(t *testing.T) {
		gen := NewGenerator(&mockTextGenerator{err: errors.New("boom")}, &mockCatalog{}, nil)
		if _, err := gen.Generate(context.Background(), plan.SafetyProfile{}); err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		gen := NewGenerator(&mockTextGenerator{response: "not json"}, &mockCatalog{}, nil)
		if _, err := gen.Generate(context.Background(), plan.SafetyProfile{}); err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})

	t.Run("EmptyPlan", func(t *testing.T) {
		gen := NewGenerator(&mockTextGenerator{response: `{"meals": [], "workouts": []}`}, &mockCatalog{}, nil)
		if _, err := gen.Generate(context.Background(), plan.SafetyProfile{}); err == nil {
			t.Fatal("Expected an error for an empty plan, got nil")
		}
	})
}
