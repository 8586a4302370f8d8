// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/platewise/internal/recommend"
)

func TestSeedCatalog(t *testing.T) {
	db := setupTestDB(t, true)
	ctx := context.Background()

	items, err := db.ListItems(ctx, false)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != len(DefaultCatalog) {
		t.Fatalf("seeded %d items, want %d", len(items), len(DefaultCatalog))
	}
	for i, it := range items {
		if it.ID != int64(i+1) {
			t.Errorf("item %d id = %d, want %d", i, it.ID, i+1)
		}
		if it.Name != DefaultCatalog[i].Name {
			t.Errorf("item %d name = %q, want %q", i, it.Name, DefaultCatalog[i].Name)
		}
		if !slices.Equal(it.Allergens, DefaultCatalog[i].Allergens) {
			t.Errorf("item %d allergens = %v, want %v", i, it.Allergens, DefaultCatalog[i].Allergens)
		}
	}

	// Second seed is a no-op.
	n, err := db.SeedCatalog(ctx)
	if err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}
	if n != 0 {
		t.Errorf("SeedCatalog() on populated table inserted %d", n)
	}
}

func TestFindByID(t *testing.T) {
	db := setupTestDB(t, true)
	ctx := context.Background()

	tests := []struct {
		name      string
		id        int64
		wantFound bool
		wantName  string
	}{
		{"first item", 1, true, "Ham Burger"},
		{"vegan item", 7, true, "French Fries"},
		{"missing", 999, false, ""},
		{"zero", 0, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, found, err := db.FindByID(ctx, tt.id)
			if err != nil {
				t.Fatalf("FindByID() error = %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("FindByID(%d) found = %v, want %v", tt.id, found, tt.wantFound)
			}
			if found && item.Name != tt.wantName {
				t.Errorf("FindByID(%d) name = %q, want %q", tt.id, item.Name, tt.wantName)
			}
		})
	}
}

func TestGetItem_NotFound(t *testing.T) {
	db := setupTestDB(t, false)

	_, err := db.GetItem(context.Background(), 42)
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("GetItem() error = %v, want ErrItemNotFound", err)
	}
}

func TestUpsertItem(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	id, err := db.UpsertItem(ctx, recommend.Item{Name: "Soup", Price: 5, Quantity: 3, Cuisine: "French"})
	if err != nil {
		t.Fatalf("UpsertItem() error = %v", err)
	}
	if id != 1 {
		t.Fatalf("first allocated id = %d, want 1", id)
	}

	id2, err := db.UpsertItem(ctx, recommend.Item{Name: "Bread", Price: 2, Quantity: 10})
	if err != nil {
		t.Fatalf("UpsertItem() error = %v", err)
	}
	if id2 != 2 {
		t.Errorf("second allocated id = %d, want 2", id2)
	}

	// Replace the first item in place.
	if _, err := db.UpsertItem(ctx, recommend.Item{ID: id, Name: "Onion Soup", Price: 6, Quantity: 0, Vegetarian: true}); err != nil {
		t.Fatalf("UpsertItem() update error = %v", err)
	}
	item, found, err := db.FindByID(ctx, id)
	if err != nil || !found {
		t.Fatalf("FindByID() = %v, %v", found, err)
	}
	if item.Name != "Onion Soup" || item.Price != 6 || !item.Vegetarian || item.Available() {
		t.Errorf("updated item = %+v", item)
	}
	if item.Allergens != nil {
		t.Errorf("Allergens = %v, want nil", item.Allergens)
	}

	all, err := db.ListItems(ctx, false)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListItems(false) = %d items, want 2", len(all))
	}
	available, err := db.ListItems(ctx, true)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(available) != 1 || available[0].ID != id2 {
		t.Errorf("ListItems(true) = %+v, want only item %d", available, id2)
	}
}
