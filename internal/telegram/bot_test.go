package telegram

import (
	"strings"
	"testing"

	"ai-plan-guard/internal/plan"
)

func TestParseProfile(t *testing.T) {
	profile := parseProfile(`lose weight
and build stamina
Allergies: dairy, peanut
Injuries: knee (severe), wrist`)

	if profile.Goal != "lose weight and build stamina" {
		t.Errorf("Unexpected goal '%s'", profile.Goal)
	}
	if len(profile.Allergies) != 2 || profile.Allergies[1] != "peanut" {
		t.Errorf("Unexpected allergies %v", profile.Allergies)
	}
	if len(profile.Injuries) != 2 {
		t.Fatalf("Expected 2 injuries, got %v", profile.Injuries)
	}
	if profile.Injuries[0].BodyPart != "knee" || profile.Injuries[0].Severity != plan.SeveritySevere {
		t.Errorf("Unexpected first injury %+v", profile.Injuries[0])
	}
	if profile.Injuries[1].BodyPart != "wrist" || profile.Injuries[1].Severity != plan.SeverityModerate {
		t.Errorf("Expected wrist to default to moderate, got %+v", profile.Injuries[1])
	}
}

func TestParseProfileGoalOnly(t *testing.T) {
	profile := parseProfile("stay fit")
	if profile.Goal != "stay fit" {
		t.Errorf("Unexpected goal '%s'", profile.Goal)
	}
	if len(profile.Allergies) != 0 || len(profile.Injuries) != 0 {
		t.Errorf("Expected an empty profile, got %+v", profile)
	}
}

func TestParseInjury(t *testing.T) {
	if _, ok := parseInjury("  "); ok {
		t.Error("Expected blank injury to be rejected")
	}
	injury, ok := parseInjury("lower back (mild)")
	if !ok || injury.BodyPart != "lower back" || injury.Severity != plan.SeverityMild {
		t.Errorf("Unexpected injury %+v", injury)
	}
}

func TestFormatPlanMarkdown(t *testing.T) {
	sp := plan.SanitizedPlan{
		Meals:    []plan.Item{{Name: "Oatmeal", Attributes: map[string]float64{"calories": 250}}},
		Workouts: []plan.Item{{Name: "Swimming", Attributes: map[string]float64{"duration": 30}}},
		Replacements: plan.Replacements{
			Workouts: []plan.ReplacementRecord{
				{ReplacedName: "Squats", ReplacementName: "Swimming", Reason: "knee contraindication (DB substitution)"},
			},
		},
	}

	out := formatPlanMarkdown("lose weight", sp)

	if !strings.Contains(out, "📋 *Your Plan*: lose weight") {
		t.Error("Missing plan header")
	}
	if !strings.Contains(out, "• Oatmeal (250 kcal)") {
		t.Error("Missing meal line")
	}
	if !strings.Contains(out, "• Swimming (30 min)") {
		t.Error("Missing workout line")
	}
	if !strings.Contains(out, "Squats → Swimming") {
		t.Error("Missing replacement line")
	}
}
