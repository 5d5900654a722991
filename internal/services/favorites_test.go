package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-sourcing/internal/models"
)

func TestToggle_FlipsWithPeriodTwo(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFavoritesService(db, NewGormCatalog(db))
	ctx := context.Background()

	for i, want := range []string{FavoriteAdded, FavoriteRemoved, FavoriteAdded} {
		res, err := svc.Toggle(ctx, "buyer@x.io", "Steel")
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if res.Action != want {
			t.Fatalf("toggle %d: action = %q, want %q", i, res.Action, want)
		}
	}
	var count int64
	db.Model(&models.UserFavorites{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one favorites record, got %d", count)
	}
}

func TestToggle_Priority(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFavoritesService(db, NewGormCatalog(db))
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "buyer@x.io", "Steel"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Toggle(ctx, "buyer@x.io", "Copper")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Favorites.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Favorites.Entries))
	}
	if res.Favorites.Entries[1].Name != "Copper" || res.Favorites.Entries[1].Priority != 2 {
		t.Fatalf("unexpected entry %+v", res.Favorites.Entries[1])
	}
}

func TestToggle_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFavoritesService(db, NewGormCatalog(db))
	if _, err := svc.Toggle(context.Background(), "buyer@x.io", "  "); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestResolve(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFavoritesService(db, NewGormCatalog(db))
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "nobody@x.io")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	for _, p := range []models.Product{
		{Name: "Steel", IsActive: true},
		{Name: "steel", IsActive: true},
		{Name: "Copper", IsActive: true},
	} {
		p := p
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	for _, name := range []string{"Copper", "Steel", "Nickel"} {
		if _, err := svc.Toggle(ctx, "buyer@x.io", name); err != nil {
			t.Fatal(err)
		}
	}
	got, err = svc.Resolve(ctx, "buyer@x.io")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Copper" || got[1].Name != "Steel" {
		t.Fatalf("unexpected products %+v", got)
	}
}
