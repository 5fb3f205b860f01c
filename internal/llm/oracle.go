package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-plan-guard/internal/plan"
	"ai-plan-guard/internal/shared"
)

// Advisor implements AdvisoryOracle on top of a TextGenerator. Every
// call is single-attempt; retry policy belongs to the caller.
type Advisor struct {
	textGen  TextGenerator
	recorder MetaRecorder
}

// NewAdvisor creates a new Advisor. The recorder may be nil, in which
// case call metadata is not persisted.
func NewAdvisor(textGen TextGenerator, recorder MetaRecorder) *Advisor {
	return &Advisor{textGen: textGen, recorder: recorder}
}

// JudgeSafety asks the model whether a workout is safe to perform
// given the user's injuries. Any answer that does not start with
// "safe" is treated as unsafe.
func (a *Advisor) JudgeSafety(ctx context.Context, workoutName string, injuries []plan.Injury, goal string) (bool, error) {
	goalText := ""
	if goal != "" {
		goalText = fmt.Sprintf(" The user's goal is %q.", goal)
	}

	prompt := fmt.Sprintf(`
You are a certified physical therapist AI.

The user has the following injuries: %s.%s
Determine if the exercise %q is safe to perform.

Respond ONLY with one word: "safe" or "unsafe".
`, describeInjuries(injuries), goalText, workoutName)

	resp, err := a.generate(ctx, "SafetyJudge", prompt)
	if err != nil {
		return false, fmt.Errorf("safety judgment for %q failed: %w", workoutName, err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	return strings.HasPrefix(answer, "safe"), nil
}

// SuggestReplacement asks the model for a single safe replacement for
// an unsafe item. Missing numeric fields in the answer are defaulted
// to conservative values.
func (a *Advisor) SuggestReplacement(ctx context.Context, itemName, conflictReason, category, goal string) (plan.Item, error) {
	goalText := ""
	if goal != "" {
		goalText = fmt.Sprintf(" The user's overall goal is %q.", goal)
	}

	var prompt string
	if category == "meal" {
		prompt = fmt.Sprintf(`
You are a nutrition assistant.

The user is allergic to %q. The meal %q is not safe.
Suggest a single safe replacement meal that:
- avoids the allergen
- is realistic for a normal person
- supports the user's goal.%s

Return ONLY a JSON object like:
{"name": "Safe Meal Name", "calories": 400, "protein": 25, "carbs": 30, "fat": 10}

Include realistic nutritional values (protein, carbs, fat in grams).
`, conflictReason, itemName, goalText)
	} else {
		prompt = fmt.Sprintf(`
You are a physical therapist and strength coach.

The user has an injury affecting the %s. The exercise %q is not safe.

Suggest ONE alternative exercise that:
- is safe for this injury
- still helps the user work toward their goal.%s

Return ONLY a JSON object like:
{"name": "Safe Exercise", "duration": 20, "estimated_calories": 150}

Duration is in minutes. Include estimated calories burned.
`, conflictReason, itemName, goalText)
	}

	resp, err := a.generate(ctx, "ReplacementSuggester", prompt)
	if err != nil {
		return plan.Item{}, fmt.Errorf("replacement suggestion for %q failed: %w", itemName, err)
	}

	var suggestion struct {
		Name              string   `json:"name"`
		Calories          *float64 `json:"calories"`
		Protein           *float64 `json:"protein"`
		Carbs             *float64 `json:"carbs"`
		Fat               *float64 `json:"fat"`
		Duration          *float64 `json:"duration"`
		EstimatedCalories *float64 `json:"estimated_calories"`
	}
	if err := json.Unmarshal([]byte(StripCodeFences(resp.Content)), &suggestion); err != nil {
		return plan.Item{}, fmt.Errorf("failed to parse replacement suggestion: %w. Response: %s", err, resp.Content)
	}
	if strings.TrimSpace(suggestion.Name) == "" {
		return plan.Item{}, fmt.Errorf("replacement suggestion has no name. Response: %s", resp.Content)
	}

	item := plan.Item{Name: suggestion.Name, Attributes: map[string]float64{}}
	if category == "meal" {
		item.Attributes["calories"] = orDefault(suggestion.Calories, 300)
		item.Attributes["protein"] = orDefault(suggestion.Protein, 20)
		item.Attributes["carbs"] = orDefault(suggestion.Carbs, 30)
		item.Attributes["fat"] = orDefault(suggestion.Fat, 10)
	} else {
		item.Attributes["duration"] = orDefault(suggestion.Duration, 30)
		item.Attributes["estimated_calories"] = orDefault(suggestion.EstimatedCalories, 150)
	}
	return item, nil
}

func (a *Advisor) generate(ctx context.Context, agentName, prompt string) (ContentResponse, error) {
	start := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ContentResponse{}, err
	}

	if a.recorder != nil {
		meta := shared.AgentMeta{
			AgentName: agentName,
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		}
		if recErr := a.recorder.RecordMeta(meta); recErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", agentName, recErr)
		}
	}
	return resp, nil
}

func describeInjuries(injuries []plan.Injury) string {
	parts := make([]string, 0, len(injuries))
	for _, inj := range injuries {
		parts = append(parts, fmt.Sprintf("%s (%s)", inj.BodyPart, inj.Severity))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// StripCodeFences removes markdown code fences the model may wrap a
// JSON answer in, returning the fenced body that looks like JSON.
func StripCodeFences(content string) string {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	for _, part := range strings.Split(text, "```") {
		if strings.Contains(part, "{") && strings.Contains(part, "}") {
			part = strings.TrimSpace(part)
			part = strings.TrimPrefix(part, "json")
			return strings.TrimSpace(part)
		}
	}
	return text
}
