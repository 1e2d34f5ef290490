// internal/models/validate.go
package models

import (
	"fmt"
	"strings"
)

// ValidationReport is the outcome of linting a scenario payload.
type ValidationReport struct {
	ID       string   `json:"id"`
	Steps    int      `json:"steps"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidatePayload checks a decoded scenario file and returns its id.
func ValidatePayload(payload interface{}) (string, error) {
	report, err := LintPayload(payload)
	if err != nil {
		return "", err
	}
	return report.ID, nil
}

// LintPayload validates payload and collects non-fatal warnings: steps
// whose actor playback will skip and steps with nothing to show.
func LintPayload(payload interface{}) (*ValidationReport, error) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("scenario content must be a JSON object")
	}

	var metadata map[string]interface{}
	if raw, present := obj["metadata"]; present && raw != nil {
		metadata, ok = raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("the 'metadata' field must be an object when provided")
		}
	}

	id := strings.TrimSpace(firstString(obj["id"], metadata["id"]))
	if id == "" {
		return nil, fmt.Errorf("a scenario must define an 'id' or metadata.id value")
	}

	rawSteps, present := obj["steps"]
	if !present || rawSteps == nil {
		return nil, fmt.Errorf("the scenario must include a 'steps' array")
	}
	steps, ok := rawSteps.([]interface{})
	if !ok {
		return nil, fmt.Errorf("the 'steps' field must be an array of step definitions")
	}

	report := &ValidationReport{ID: id, Steps: len(steps)}
	for i, raw := range steps {
		step, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("step %d must be a JSON object", i+1)
		}
		actor, _ := step["actor"].(string)
		if NormalizeActor(actor) == ActorUnknown {
			report.Warnings = append(report.Warnings, fmt.Sprintf("step %d: unknown actor %q is skipped during playback", i+1, actor))
			continue
		}
		if firstString(step["message_html"], step["message"], step["text"], step["snippet"]) == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("step %d: no message, markup or snippet", i+1))
		}
	}
	return report, nil
}
