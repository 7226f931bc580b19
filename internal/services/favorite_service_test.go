package services

import (
	"context"
	"errors"
	"testing"
)

func TestFavorite_AddAndDuplicate(t *testing.T) {
	db := newServiceDB(t)
	svc := &FavoriteService{DB: db}
	ctx := context.Background()
	seller := mustUser(t, db, "seller")
	fan := mustUser(t, db, "fan")
	l := mustListing(t, db, seller.ID, mustModel(t, db, "Toyota", "Corolla").ID)

	if _, err := svc.Add(ctx, fan.ID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}

	f, err := svc.Add(ctx, fan.ID, l.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f.Listing.ID != l.ID {
		t.Fatalf("expected listing preloaded: %+v", f)
	}

	if _, err := svc.Add(ctx, fan.ID, l.ID); !errors.Is(err, ErrDuplicateFavorite) {
		t.Fatalf("expected ErrDuplicateFavorite, got %v", err)
	}

	_, total, err := svc.ListPage(ctx, fan.ID, 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("ListPage: total=%d err=%v", total, err)
	}
}

func TestFavorite_OwnerScoped(t *testing.T) {
	db := newServiceDB(t)
	svc := &FavoriteService{DB: db}
	ctx := context.Background()
	seller := mustUser(t, db, "seller")
	fan := mustUser(t, db, "fan")
	other := mustUser(t, db, "other")
	l := mustListing(t, db, seller.ID, mustModel(t, db, "Toyota", "Corolla").ID)

	f, err := svc.Add(ctx, fan.ID, l.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := svc.Get(ctx, f.ID, other.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound for stranger, got %v", err)
	}
	if err := svc.Remove(ctx, f.ID, other.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound on foreign remove, got %v", err)
	}
	if err := svc.Remove(ctx, f.ID, fan.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, total, _ := svc.ListPage(ctx, fan.ID, 1, 20); total != 0 {
		t.Fatalf("expected empty favorites, total=%d", total)
	}
}
