// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"fmt"
	"slices"
)

// IndexMapping is a bijection between ids and dense 0-based indices, kept
// separately for users and items. It is built from a single interaction
// batch and never extended.
type IndexMapping struct {
	userIDs   []string
	itemIDs   []int64
	userIndex map[string]int
	itemIndex map[int64]int
}

// BuildIndex assigns indices to the distinct users and items in
// interactions. Ids are sorted first (users lexically, items numerically),
// so the same batch always yields the same indices.
func BuildIndex(interactions []Interaction) (*IndexMapping, error) {
	if len(interactions) == 0 {
		return nil, ErrNoInteractions
	}

	users := make(map[string]struct{})
	items := make(map[int64]struct{})
	for i := range interactions {
		users[interactions[i].UserID] = struct{}{}
		items[interactions[i].ItemID] = struct{}{}
	}

	userIDs := make([]string, 0, len(users))
	for id := range users {
		userIDs = append(userIDs, id)
	}
	itemIDs := make([]int64, 0, len(items))
	for id := range items {
		itemIDs = append(itemIDs, id)
	}
	slices.Sort(userIDs)
	slices.Sort(itemIDs)

	return newIndexMapping(userIDs, itemIDs), nil
}

func newIndexMapping(userIDs []string, itemIDs []int64) *IndexMapping {
	m := &IndexMapping{
		userIDs:   userIDs,
		itemIDs:   itemIDs,
		userIndex: make(map[string]int, len(userIDs)),
		itemIndex: make(map[int64]int, len(itemIDs)),
	}
	for i, id := range userIDs {
		m.userIndex[id] = i
	}
	for i, id := range itemIDs {
		m.itemIndex[id] = i
	}
	return m
}

// MappingFromTables rebuilds a mapping from id->index tables, as persisted
// by the model store. Every index in [0, len) must appear exactly once.
func MappingFromTables(userIndex map[string]int, itemIndex map[int64]int) (*IndexMapping, error) {
	userIDs, err := invert(userIndex)
	if err != nil {
		return nil, fmt.Errorf("user table: %w", err)
	}
	itemIDs, err := invert(itemIndex)
	if err != nil {
		return nil, fmt.Errorf("item table: %w", err)
	}
	return newIndexMapping(userIDs, itemIDs), nil
}

func invert[K comparable](table map[K]int) ([]K, error) {
	ids := make([]K, len(table))
	seen := make([]bool, len(table))
	for id, idx := range table {
		if idx < 0 || idx >= len(table) || seen[idx] {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidMapping, idx)
		}
		seen[idx] = true
		ids[idx] = id
	}
	return ids, nil
}

// UserTable returns a copy of the user id->index table.
func (m *IndexMapping) UserTable() map[string]int {
	out := make(map[string]int, len(m.userIndex))
	for k, v := range m.userIndex {
		out[k] = v
	}
	return out
}

// ItemTable returns a copy of the item id->index table.
func (m *IndexMapping) ItemTable() map[int64]int {
	out := make(map[int64]int, len(m.itemIndex))
	for k, v := range m.itemIndex {
		out[k] = v
	}
	return out
}

// UserIndex returns the index of userID.
func (m *IndexMapping) UserIndex(userID string) (int, bool) {
	idx, ok := m.userIndex[userID]
	return idx, ok
}

// ItemIndex returns the index of itemID.
func (m *IndexMapping) ItemIndex(itemID int64) (int, bool) {
	idx, ok := m.itemIndex[itemID]
	return idx, ok
}

// UserID returns the user id at idx. It panics if idx is out of range.
func (m *IndexMapping) UserID(idx int) string {
	return m.userIDs[idx]
}

// ItemID returns the item id at idx. It panics if idx is out of range.
func (m *IndexMapping) ItemID(idx int) int64 {
	return m.itemIDs[idx]
}

// NumUsers returns the number of indexed users.
func (m *IndexMapping) NumUsers() int {
	return len(m.userIDs)
}

// NumItems returns the number of indexed items.
func (m *IndexMapping) NumItems() int {
	return len(m.itemIDs)
}
