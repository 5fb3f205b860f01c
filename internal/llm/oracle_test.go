package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-plan-guard/internal/plan"
)

type mockTextGenerator struct {
	response string
	err      error
	prompt   string
}

func (m *mockTextGenerator) GenerateContent(_ context.Context, prompt string) (ContentResponse, error) {
	m.prompt = prompt
	if m.err != nil {
		return ContentResponse{}, m.err
	}
	return ContentResponse{Content: m.response}, nil
}

func TestJudgeSafety(t *testing.T) {
	injuries := []plan.Injury{{BodyPart: "knee", Severity: plan.SeveritySevere}}

	t.Run("Safe", func(t *testing.T) {
		textGen := &mockTextGenerator{response: "safe"}
		advisor := NewAdvisor(textGen, nil)

		ok, err := advisor.JudgeSafety(context.Background(), "Swimming", injuries, "lose weight")
		if err != nil {
			t.Fatalf("JudgeSafety failed: %v", err)
		}
		if !ok {
			t.Error("Expected 'safe' answer to clear the workout")
		}
		if !strings.Contains(textGen.prompt, "knee (severe)") {
			t.Errorf("Expected injuries in the prompt, got: %s", textGen.prompt)
		}
	})

	t.Run("Unsafe", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: "UNSAFE"}, nil)
		ok, err := advisor.JudgeSafety(context.Background(), "Squats", injuries, "")
		if err != nil {
			t.Fatalf("JudgeSafety failed: %v", err)
		}
		if ok {
			t.Error("Expected 'unsafe' answer to flag the workout")
		}
	})

	t.Run("VerboseAnswer", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: "Safe. This exercise is fine."}, nil)
		ok, err := advisor.JudgeSafety(context.Background(), "Swimming", injuries, "")
		if err != nil {
			t.Fatalf("JudgeSafety failed: %v", err)
		}
		if !ok {
			t.Error("Expected an answer starting with 'safe' to clear the workout")
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{err: errors.New("boom")}, nil)
		if _, err := advisor.JudgeSafety(context.Background(), "Squats", injuries, ""); err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})
}

func TestSuggestReplacement(t *testing.T) {
	t.Run("Meal", func(t *testing.T) {
		textGen := &mockTextGenerator{response: `{"name": "Oat Milk Smoothie", "calories": 220, "protein": 6}`}
		advisor := NewAdvisor(textGen, nil)

		item, err := advisor.SuggestReplacement(context.Background(), "Greek Yogurt", "dairy", "meal", "lose weight")
		if err != nil {
			t.Fatalf("SuggestReplacement failed: %v", err)
		}
		if item.Name != "Oat Milk Smoothie" {
			t.Errorf("Unexpected name '%s'", item.Name)
		}
		if item.Attr("calories", -1) != 220 {
			t.Errorf("Expected calories 220, got %v", item.Attributes)
		}
		if item.Attr("carbs", -1) != 30 || item.Attr("fat", -1) != 10 {
			t.Errorf("Expected missing macros defaulted, got %v", item.Attributes)
		}
		if !strings.Contains(textGen.prompt, "dairy") || !strings.Contains(textGen.prompt, "Greek Yogurt") {
			t.Errorf("Expected allergen and meal in the prompt, got: %s", textGen.prompt)
		}
	})

	t.Run("Workout", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: `{"name": "Swimming"}`}, nil)

		item, err := advisor.SuggestReplacement(context.Background(), "Squats", "knee", "workout", "")
		if err != nil {
			t.Fatalf("SuggestReplacement failed: %v", err)
		}
		if item.Attr("duration", -1) != 30 || item.Attr("estimated_calories", -1) != 150 {
			t.Errorf("Expected workout defaults, got %v", item.Attributes)
		}
	})

	t.Run("FencedAnswer", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: "```json\n{\"name\": \"Swimming\"}\n```"}, nil)

		item, err := advisor.SuggestReplacement(context.Background(), "Squats", "knee", "workout", "")
		if err != nil {
			t.Fatalf("SuggestReplacement failed: %v", err)
		}
		if item.Name != "Swimming" {
			t.Errorf("Expected fenced JSON parsed, got '%s'", item.Name)
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: `{"calories": 200}`}, nil)
		if _, err := advisor.SuggestReplacement(context.Background(), "Greek Yogurt", "dairy", "meal", ""); err == nil {
			t.Fatal("Expected an error for a nameless suggestion, got nil")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		advisor := NewAdvisor(&mockTextGenerator{response: "try swimming instead"}, nil)
		if _, err := advisor.SuggestReplacement(context.Background(), "Squats", "knee", "workout", ""); err == nil {
			t.Fatal("Expected an error for a non-JSON answer, got nil")
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", `{"a": 1}`, `{"a": 1}`},
		{"Fenced", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"FencedWithLang", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Padded", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
