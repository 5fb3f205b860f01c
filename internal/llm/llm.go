package llm

import (
	"context"

	"ai-plan-guard/internal/plan"
	"ai-plan-guard/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// AdvisoryOracle is the external judgment/suggestion service the rules
// engine consults when catalog-based detection or resolution is
// inconclusive. Calls are synchronous and single-attempt; both
// operations fail on transport errors.
type AdvisoryOracle interface {
	// JudgeSafety reports whether a workout is safe to perform given
	// the user's injuries.
	JudgeSafety(ctx context.Context, workoutName string, injuries []plan.Injury, goal string) (bool, error)

	// SuggestReplacement proposes a safe replacement for an unsafe
	// item. The category is "meal" or "workout"; conflictReason names
	// the allergen or body part that made the item unsafe.
	SuggestReplacement(ctx context.Context, itemName, conflictReason, category, goal string) (plan.Item, error)
}

// MetaRecorder receives per-call metadata. Satisfied by *metrics.Store.
type MetaRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
