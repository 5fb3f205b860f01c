package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-plan-guard/internal/database"
	"ai-plan-guard/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "metrics_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	db, err := database.NewDB(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	store := newTestStore(t)

	t.Run("RecordAndDailyUsage", func(t *testing.T) {
		err := store.Record(ExecutionMetric{
			AgentName:        "SafetyJudge",
			Model:            "gpt-4o-mini",
			PromptTokens:     120,
			CompletionTokens: 5,
			LatencyMS:        340,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		if usage[0].TotalPrompt != 120 || usage[0].TotalExecution != 1 {
			t.Errorf("Unexpected usage: %+v", usage[0])
		}
	})

	t.Run("RecordMetaSkipsZeroUsage", func(t *testing.T) {
		err := store.RecordMeta(shared.AgentMeta{AgentName: "PlanGenerator"})
		if err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}

		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if usage[0].TotalExecution != 1 {
			t.Errorf("Expected zero-token meta to be skipped, got %+v", usage[0])
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		err := store.Record(ExecutionMetric{
			AgentName: "SafetyJudge",
			Model:     "gpt-4o-mini",
			Timestamp: time.Now().AddDate(0, 0, -60),
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		affected, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if affected != 1 {
			t.Errorf("Expected 1 record removed, got %d", affected)
		}
	})
}
