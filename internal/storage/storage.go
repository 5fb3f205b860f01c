package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ai-plan-guard/internal/plan"
)

// PlanStore provides a file-based archive for sanitized plans.
type PlanStore struct {
	basePath string
	now      func() time.Time
}

// NewPlanStore creates a new PlanStore and ensures the base directory exists.
func NewPlanStore(basePath string) (*PlanStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &PlanStore{basePath: basePath, now: time.Now}, nil
}

// sanitizeName makes a plan name safe for filenames.
func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, ":", "-")
	name = strings.ReplaceAll(name, "/", "-")
	return name
}

func (s *PlanStore) path(planID string) string {
	return filepath.Join(s.basePath, planID+".json")
}

// Save archives a sanitized plan and returns the plan ID it was stored
// under. The ID combines the goal and the save timestamp.
func (s *PlanStore) Save(goal string, sp plan.SanitizedPlan) (string, error) {
	data, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	goalPart := sanitizeName(goal)
	if goalPart == "" {
		goalPart = "plan"
	}
	planID := fmt.Sprintf("%s_%s", goalPart, s.now().UTC().Format("2006-01-02T15-04-05"))

	if err := os.WriteFile(s.path(planID), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	return planID, nil
}

// Load retrieves an archived plan by its ID.
func (s *PlanStore) Load(planID string) (*plan.SanitizedPlan, error) {
	data, err := os.ReadFile(s.path(planID))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var sp plan.SanitizedPlan
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &sp, nil
}

// Exists checks whether a plan with the given ID is archived.
func (s *PlanStore) Exists(planID string) bool {
	_, err := os.Stat(s.path(planID))
	return !os.IsNotExist(err)
}

// List returns the IDs of all archived plans, newest last.
func (s *PlanStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list plan files: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(match), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
