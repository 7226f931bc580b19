// Package services – FavoriteService
//
// This file implements the FavoriteService. Favorites are strictly
// owner-scoped: every read and delete is narrowed to the caller, so a
// favorite owned by someone else is indistinguishable from a missing one.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// FavoriteService implements the use-cases around saved listings.
type FavoriteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Add saves listingID for userID. The account field is always stamped from
// the caller; a duplicate (account, listing) pair is rejected and exactly
// one row exists afterwards.
func (s *FavoriteService) Add(ctx context.Context, userID, listingID string) (*domain.Favorite, error) {
	if _, err := repo.GetListing(ctx, s.DB, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	f, err := repo.CreateFavorite(ctx, s.DB, userID, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateFavorite
		}
		return nil, err
	}
	return repo.GetFavorite(ctx, s.DB, f.ID, userID)
}

// Get returns one of the caller's favorites.
func (s *FavoriteService) Get(ctx context.Context, id, userID string) (*domain.Favorite, error) {
	f, err := repo.GetFavorite(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListPage returns a page of the caller's favorites and the total count.
func (s *FavoriteService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Favorite, int64, error) {
	total, err := repo.CountFavorites(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Favorite{}, 0, nil
	}
	items, err := repo.ListFavoritesPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Remove deletes one of the caller's favorites.
func (s *FavoriteService) Remove(ctx context.Context, id, userID string) error {
	if err := repo.DeleteFavorite(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}
