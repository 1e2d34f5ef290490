// internal/models/scenario.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCategory groups scenarios without an explicit category.
const DefaultCategory = "Uncategorized"

// Scenario is a catalog entry. The playback engine only reads it.
type Scenario struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Order       interface{} `json:"order,omitempty"`
	Filename    string      `json:"filename"`
	Accent      string      `json:"accent,omitempty"`
}

// ScenarioGroup is one category of the catalog.
type ScenarioGroup struct {
	Category  string     `json:"category"`
	Scenarios []Scenario `json:"scenarios"`
}

// ScenarioFromPayload extracts catalog metadata from a decoded scenario
// file. stem is the file name without extension and is the id of last resort.
func ScenarioFromPayload(payload map[string]interface{}, stem, filename string) Scenario {
	metadata, _ := payload["metadata"].(map[string]interface{})
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	id := firstString(metadata["id"], payload["id"], stem)
	s := Scenario{
		ID:          id,
		Title:       firstString(metadata["title"], payload["title"], metadata["name"], id),
		Description: firstString(metadata["description"], metadata["summary"], payload["description"]),
		Category:    firstString(metadata["category"], payload["category"], DefaultCategory),
		Tags:        stringList(firstValue(metadata["tags"], payload["tags"])),
		Order:       firstValue(metadata["order"], payload["order"]),
		Filename:    filename,
		Accent:      firstString(metadata["accent"], payload["accent"]),
	}
	return s
}

// OrderKey returns the numeric sort key of the order field.
func (s Scenario) OrderKey() (float64, bool) {
	switch v := s.Order.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func firstValue(values ...interface{}) interface{} {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(values ...interface{}) string {
	for _, v := range values {
		switch t := v.(type) {
		case nil:
		case string:
			if t != "" {
				return t
			}
		default:
			return fmt.Sprint(t)
		}
	}
	return ""
}

// stringList coerces a list value to strings. Anything but a list yields
// an empty slice.
func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if ss, ok := v.([]string); ok {
			return append([]string{}, ss...)
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}
