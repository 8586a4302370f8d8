// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"strings"
)

// Diet is a dietary restriction.
type Diet string

// Diets. DietAny places no restriction.
const (
	DietAny        Diet = ""
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
)

// Preferences narrow a recommendation result for one request. Diet,
// Allergens and the budget bounds are hard constraints: an item that fails
// any of them is never returned. Cuisine is soft: it only narrows the
// catalog fallback, and only when at least one item matches.
type Preferences struct {
	Diet      Diet
	Allergens []string
	BudgetMin *float64
	BudgetMax *float64
	Cuisine   string
}

// IsZero reports whether p places no constraint at all.
func (p *Preferences) IsZero() bool {
	return p.Diet == DietAny && len(p.Allergens) == 0 &&
		p.BudgetMin == nil && p.BudgetMax == nil && p.Cuisine == ""
}

// Allows reports whether it passes every hard constraint in p.
func (p *Preferences) Allows(it *Item) bool {
	switch p.Diet {
	case DietVegan:
		if !it.Vegan {
			return false
		}
	case DietVegetarian:
		if !it.Vegetarian {
			return false
		}
	}

	if p.BudgetMax != nil && it.Price > *p.BudgetMax {
		return false
	}
	if p.BudgetMin != nil && it.Price < *p.BudgetMin {
		return false
	}

	for _, avoid := range p.Allergens {
		for _, contains := range it.Allergens {
			if strings.EqualFold(avoid, contains) {
				return false
			}
		}
	}
	return true
}

// FilterCatalog returns the items that pass Allows, in their original
// order. When Cuisine is set and some of those items match it
// (case-insensitive substring), only the matches are kept.
func (p *Preferences) FilterCatalog(items []Item) []Item {
	allowed := make([]Item, 0, len(items))
	for i := range items {
		if p.Allows(&items[i]) {
			allowed = append(allowed, items[i])
		}
	}
	if p.Cuisine == "" {
		return allowed
	}

	want := strings.ToLower(p.Cuisine)
	matches := make([]Item, 0, len(allowed))
	for i := range allowed {
		if strings.Contains(strings.ToLower(allowed[i].Cuisine), want) {
			matches = append(matches, allowed[i])
		}
	}
	if len(matches) == 0 {
		return allowed
	}
	return matches
}
