// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Favorite
// model. All reads are narrowed to the owning user; a favorite that exists
// but belongs to someone else is indistinguishable from one that does not
// exist.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// CreateFavorite inserts a (user, listing) favorite pair. A duplicate pair
// maps to ErrDuplicate; exactly one row exists afterwards either way.
func CreateFavorite(ctx context.Context, db *gorm.DB, userID, listingID string) (*domain.Favorite, error) {
	f := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return f, nil
}

// GetFavorite fetches one favorite owned by userID, or ErrNotFound.
func GetFavorite(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Favorite, error) {
	var f domain.Favorite
	err := db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Seller").
		Preload("Listing.Model").
		Preload("Listing.Model.Brand").
		Preload("Listing.Images").
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFavoritesPage returns a page of the user's favorites, newest first,
// with listings eager-loaded.
func ListFavoritesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Favorite, error) {
	var out []domain.Favorite
	err := db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Seller").
		Preload("Listing.Model").
		Preload("Listing.Model.Brand").
		Preload("Listing.Images").
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountFavorites returns the total number of favorites owned by userID.
func CountFavorites(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListFavoriteOwners returns the IDs of every user who favorited listingID.
// Used to fan out sold/price-drop notifications.
func ListFavoriteOwners(ctx context.Context, db *gorm.DB, listingID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("listing_id = ?", listingID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// DeleteFavorite removes a favorite owned by userID; ErrNotFound otherwise.
func DeleteFavorite(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
