// internal/models/catalog.go
package models

import (
	"sort"
	"strings"
)

// GroupScenarios buckets scenarios by category. Categories are sorted
// case-insensitively; within a category, ordered entries come first.
func GroupScenarios(scenarios []Scenario) []ScenarioGroup {
	byCategory := make(map[string][]Scenario)
	for _, s := range scenarios {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	groups := make([]ScenarioGroup, 0, len(byCategory))
	for category, items := range byCategory {
		SortScenarios(items)
		groups = append(groups, ScenarioGroup{Category: category, Scenarios: items})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].Category), strings.ToLower(groups[j].Category)
		if a == b {
			return groups[i].Category < groups[j].Category
		}
		return a < b
	})
	return groups
}

// SortScenarios orders entries with a numeric order first, then those with
// a textual order, then the rest; ties break on the lowercased title.
func SortScenarios(items []Scenario) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, ki, ti := sortKey(items[i])
		rj, kj, tj := sortKey(items[j])
		if ri != rj {
			return ri < rj
		}
		switch ri {
		case 0:
			if ki.(float64) != kj.(float64) {
				return ki.(float64) < kj.(float64)
			}
		case 1:
			if ki.(string) != kj.(string) {
				return ki.(string) < kj.(string)
			}
		}
		return ti < tj
	})
}

func sortKey(s Scenario) (int, interface{}, string) {
	title := strings.ToLower(s.Title)
	switch v := s.Order.(type) {
	case float64, int, int64:
		f, _ := s.OrderKey()
		return 0, f, title
	case string:
		return 1, strings.ToLower(v), title
	default:
		return 2, nil, title
	}
}
