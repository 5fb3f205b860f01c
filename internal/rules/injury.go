package rules

import (
	"context"
	"fmt"

	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/plan"
)

// severityKeywords is the fixed second-pass policy for high-severity
// injuries: catalog tagging may be incomplete, so severe injuries flag
// workouts by name keyword even when no contraindication tag matched.
var severityKeywords = map[string][]string{
	"knee":  {"squat", "lunge", "leg press", "leg", "calf"},
	"wrist": {"push-up", "push up", "bench", "press"},
}

// filterWorkouts resolves every workout that is unsafe for the user's
// injuries. Safety is decided by three tiers in sequence: catalog
// contraindication match, the severity keyword policy, and finally the
// oracle's judgment. An oracle failure counts as unsafe.
func (e *Engine) filterWorkouts(ctx context.Context, workouts []plan.Item, injuries []plan.Injury, goal string) ([]plan.Item, []plan.ReplacementRecord) {
	replacements := []plan.ReplacementRecord{}
	if len(injuries) == 0 {
		return workouts, replacements
	}

	guard := newDedupGuard()
	safe := make([]plan.Item, 0, len(workouts))

	for _, workout := range workouts {
		matched, unsafe := e.detectContraindication(ctx, workout.Name, injuries)

		if !unsafe {
			matched, unsafe = matchSeverityPolicy(workout.Name, injuries)
		}

		if !unsafe {
			isSafe, err := e.oracle.JudgeSafety(ctx, workout.Name, injuries, goal)
			if err != nil || !isSafe {
				// Fail closed: an unreachable oracle never clears a
				// workout. Attribution falls to the first injury.
				unsafe = true
				matched = injuries[0]
			}
		}

		if !unsafe {
			if guard.Admit(workout.Name) {
				safe = append(safe, workout)
			}
			continue
		}

		substitute, resolvedBy := e.resolveSubstitute(ctx, substitutionRequest{
			unsafeName:  workout.Name,
			conflictKey: matched.BodyPart,
			category:    catalog.CategoryWorkout,
			goal:        goal,
			conflicts: func(ctx context.Context, item plan.Item) bool {
				if _, conflict := e.detectContraindication(ctx, item.Name, injuries); conflict {
					return true
				}
				_, conflict := matchSeverityPolicy(item.Name, injuries)
				return conflict
			},
		}, guard)

		safe = append(safe, substitute)
		replacements = append(replacements, plan.ReplacementRecord{
			ReplacedName:    workout.Name,
			ReplacementName: substitute.Name,
			Reason:          fmt.Sprintf("%s contraindication (%s)", matched.BodyPart, resolvedBy),
		})
	}

	return safe, replacements
}

// detectContraindication returns the first injury the workout's
// catalog contraindication tags conflict with. A catalog miss or
// outage degrades to matching body parts against the workout name.
func (e *Engine) detectContraindication(ctx context.Context, workoutName string, injuries []plan.Injury) (plan.Injury, bool) {
	tags, err := e.items.LookupTags(ctx, workoutName, catalog.CategoryWorkout)
	if err == nil {
		for _, injury := range injuries {
			for _, tag := range tags {
				if matchesEitherWay(injury.BodyPart, tag) {
					return injury, true
				}
			}
		}
	}

	for _, injury := range injuries {
		if nameContains(workoutName, injury.BodyPart) {
			return injury, true
		}
	}
	return plan.Injury{}, false
}

// matchSeverityPolicy applies the severe-injury keyword table.
func matchSeverityPolicy(workoutName string, injuries []plan.Injury) (plan.Injury, bool) {
	for _, injury := range injuries {
		if injury.Severity != plan.SeveritySevere {
			continue
		}
		keywords, ok := severityKeywords[plan.NameKey(injury.BodyPart)]
		if !ok {
			continue
		}
		for _, kw := range keywords {
			if nameContains(workoutName, kw) {
				return injury, true
			}
		}
	}
	return plan.Injury{}, false
}
