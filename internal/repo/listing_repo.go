// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Listing
// model, including the explicit query builder used by the public listing
// endpoint.
//
// Query building:
//   - ListingFilter narrows the result set (brand/model name through joins,
//     year, fuel type, transmission, price bounds, active flag, seller).
//   - Sorting is whitelisted to price, year, and mileage; anything else
//     falls back to newest-first.
//   - FindListings eager-loads the seller, images, and feature mappings via
//     Preload so that rendering a page never issues per-row queries.
//
// Error semantics follow the rest of the package: ErrNotFound on a missing
// row, ErrDuplicate on VIN collisions, raw gorm errors otherwise.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// ListingFilter narrows listing queries. Zero values mean "no constraint".
type ListingFilter struct {
	BrandName    string
	ModelName    string
	Year         int
	FuelType     string
	Transmission string
	PriceMin     int
	PriceMax     int
	SellerID     string
	ActiveOnly   bool
}

// Sort columns accepted by FindListings.
const (
	SortPrice   = "price"
	SortYear    = "year"
	SortMileage = "mileage"
)

// ListingSort describes the requested ordering.
type ListingSort struct {
	Column string // price, year, or mileage
	Desc   bool
}

// listingQuery composes the filtered base query. Brand and model name
// predicates require joining through models to brands.
func listingQuery(ctx context.Context, db *gorm.DB, f ListingFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Listing{})

	if f.BrandName != "" || f.ModelName != "" {
		q = q.Joins("JOIN models ON models.id = listings.model_id")
	}
	if f.BrandName != "" {
		q = q.Joins("JOIN brands ON brands.id = models.brand_id").
			Where("brands.name = ?", f.BrandName)
	}
	if f.ModelName != "" {
		q = q.Where("models.name = ?", f.ModelName)
	}
	if f.Year != 0 {
		q = q.Where("listings.year = ?", f.Year)
	}
	if f.FuelType != "" {
		q = q.Where("listings.fuel_type = ?", f.FuelType)
	}
	if f.Transmission != "" {
		q = q.Where("listings.transmission = ?", f.Transmission)
	}
	if f.PriceMin > 0 {
		q = q.Where("listings.price >= ?", f.PriceMin)
	}
	if f.PriceMax > 0 {
		q = q.Where("listings.price <= ?", f.PriceMax)
	}
	if f.SellerID != "" {
		q = q.Where("listings.seller_id = ?", f.SellerID)
	}
	if f.ActiveOnly {
		q = q.Where("listings.is_active = ?", true)
	}
	return q
}

// orderExpr maps a ListingSort to a safe ORDER BY expression. Unknown
// columns fall back to newest-first; the ID tiebreak keeps pages stable.
func orderExpr(s ListingSort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	switch s.Column {
	case SortPrice, SortYear, SortMileage:
		return "listings." + s.Column + " " + dir + ", listings.id ASC"
	default:
		return "listings.created_at DESC, listings.id ASC"
	}
}

// FindListings returns a page of listings matching the filter, in the
// requested order, with seller, images, and feature mappings eager-loaded.
func FindListings(ctx context.Context, db *gorm.DB, f ListingFilter, s ListingSort, offset, limit int) ([]domain.Listing, error) {
	var out []domain.Listing
	err := listingQuery(ctx, db, f).
		Preload("Seller").
		Preload("Model").
		Preload("Model.Brand").
		Preload("Images").
		Preload("Features").
		Preload("Features.Feature").
		Order(orderExpr(s)).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountListings returns how many listings match the filter.
func CountListings(ctx context.Context, db *gorm.DB, f ListingFilter) (int64, error) {
	var total int64
	err := listingQuery(ctx, db, f).Count(&total).Error
	return total, err
}

// CreateListing inserts a listing row. VIN collisions map to ErrDuplicate.
func CreateListing(ctx context.Context, db *gorm.DB, l *domain.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetListing fetches one listing by ID with associations eager-loaded, or
// ErrNotFound.
func GetListing(ctx context.Context, db *gorm.DB, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := db.WithContext(ctx).
		Preload("Seller").
		Preload("Model").
		Preload("Model.Brand").
		Preload("Images").
		Preload("Features").
		Preload("Features.Feature").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateListing applies column updates to a listing owned by sellerID. The
// ownership predicate lives in the WHERE clause so "not yours" and "does
// not exist" are indistinguishable to the caller.
func UpdateListing(ctx context.Context, db *gorm.DB, id, sellerID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Updates(updates)
	if res.Error != nil {
		if IsDuplicate(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkListingSold flips is_active from true to false for a listing owned by
// sellerID. Zero rows affected means the listing is missing, not owned, or
// already sold; callers disambiguate via GetListing.
func MarkListingSold(ctx context.Context, db *gorm.DB, id, sellerID, buyerID string) (int64, error) {
	updates := map[string]any{"is_active": false}
	if buyerID != "" {
		updates["buyer_id"] = buyerID
	}
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND seller_id = ? AND is_active = ?", id, sellerID, true).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// IncrementListingViews bumps the view counter. Best effort.
func IncrementListingViews(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// DeleteListing removes a listing owned by sellerID; images, feature
// mappings, chats, and reviews cascade with it.
func DeleteListing(ctx context.Context, db *gorm.DB, id, sellerID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Delete(&domain.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddListingImage attaches an image URL to a listing.
func AddListingImage(ctx context.Context, db *gorm.DB, listingID, url string) (*domain.ListingImage, error) {
	img := &domain.ListingImage{
		ID:        uuid.NewString(),
		ListingID: listingID,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// ListListingImages returns the images attached to a listing.
func ListListingImages(ctx context.Context, db *gorm.DB, listingID string) ([]domain.ListingImage, error) {
	var out []domain.ListingImage
	err := db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetListingImage fetches one image row, or ErrNotFound.
func GetListingImage(ctx context.Context, db *gorm.DB, id string) (*domain.ListingImage, error) {
	var img domain.ListingImage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteListingImage removes an image row; ErrNotFound when missing.
func DeleteListingImage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ListingImage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AttachFeature maps a feature to a listing. Duplicate pairs map to
// ErrDuplicate.
func AttachFeature(ctx context.Context, db *gorm.DB, listingID, featureID string) (*domain.ListingFeature, error) {
	lf := &domain.ListingFeature{
		ID:        uuid.NewString(),
		ListingID: listingID,
		FeatureID: featureID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(lf).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return lf, nil
}

// DetachFeature removes a (listing, feature) mapping; ErrNotFound when the
// pair was not attached.
func DetachFeature(ctx context.Context, db *gorm.DB, listingID, featureID string) error {
	res := db.WithContext(ctx).
		Where("listing_id = ? AND feature_id = ?", listingID, featureID).
		Delete(&domain.ListingFeature{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
