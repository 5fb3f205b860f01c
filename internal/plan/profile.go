package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity grades an injury.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// ParseSeverity normalizes a raw severity string, defaulting to
// moderate for empty or unknown values.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mild":
		return SeverityMild
	case "severe":
		return SeveritySevere
	default:
		return SeverityModerate
	}
}

// Injury is one injury of the user's profile.
type Injury struct {
	BodyPart string   `json:"name"`
	Severity Severity `json:"severity"`
}

// SafetyProfile is the normalized safety context a plan is filtered
// against. Allergies and injury body parts match case-insensitively
// but are kept verbatim for display.
type SafetyProfile struct {
	Allergies []string `json:"allergies"`
	Injuries  []Injury `json:"injuries"`
	Goal      string   `json:"goal"`
}

// NormalizeInjuries converts the heterogeneous injury shapes clients
// send (plain strings, {name, severity} objects, or a mix) into the
// single Injury form the rules engine consumes. The engine itself
// never branches on input shape.
func NormalizeInjuries(raw []json.RawMessage) ([]Injury, error) {
	var injuries []Injury
	for idx, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if strings.TrimSpace(s) == "" {
				continue
			}
			injuries = append(injuries, Injury{BodyPart: s, Severity: SeverityModerate})
			continue
		}

		var obj struct {
			Name     string `json:"name"`
			BodyPart string `json:"body_part"`
			Severity string `json:"severity"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return nil, fmt.Errorf("injury %d: unsupported shape: %w", idx, err)
		}
		name := obj.Name
		if name == "" {
			name = obj.BodyPart
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		injuries = append(injuries, Injury{BodyPart: name, Severity: ParseSeverity(obj.Severity)})
	}
	return injuries, nil
}
