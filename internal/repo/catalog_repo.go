// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the catalog
// reference data: brands, models, and features.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// CreateBrand inserts a brand row. Duplicate names map to ErrDuplicate.
func CreateBrand(ctx context.Context, db *gorm.DB, name string) (*domain.Brand, error) {
	b := &domain.Brand{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

// GetBrand fetches a brand by ID, or ErrNotFound.
func GetBrand(ctx context.Context, db *gorm.DB, id string) (*domain.Brand, error) {
	var b domain.Brand
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBrands returns all brands ordered by name.
func ListBrands(ctx context.Context, db *gorm.DB) ([]domain.Brand, error) {
	var out []domain.Brand
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

// UpdateBrandName renames a brand; ErrNotFound when missing, ErrDuplicate on
// a name collision.
func UpdateBrandName(ctx context.Context, db *gorm.DB, id, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("id = ?", id).
		Update("name", name)
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

// DeleteBrand removes a brand; its models and their listings cascade.
func DeleteBrand(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Brand{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateModel inserts a model row under a brand.
func CreateModel(ctx context.Context, db *gorm.DB, brandID, name string) (*domain.Model, error) {
	m := &domain.Model{
		ID:        uuid.NewString(),
		BrandID:   brandID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetModel fetches a model with its brand preloaded, or ErrNotFound.
func GetModel(ctx context.Context, db *gorm.DB, id string) (*domain.Model, error) {
	var m domain.Model
	if err := db.WithContext(ctx).Preload("Brand").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListModels returns models, optionally narrowed to one brand, with brands
// preloaded, ordered by name.
func ListModels(ctx context.Context, db *gorm.DB, brandID string) ([]domain.Model, error) {
	q := db.WithContext(ctx).Preload("Brand").Order("name ASC")
	if brandID != "" {
		q = q.Where("brand_id = ?", brandID)
	}
	var out []domain.Model
	err := q.Find(&out).Error
	return out, err
}

// UpdateModelName renames a model; ErrNotFound when missing.
func UpdateModelName(ctx context.Context, db *gorm.DB, id, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.Model{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteModel removes a model; listings under it cascade.
func DeleteModel(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Model{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateFeature inserts a feature row. Duplicate names map to ErrDuplicate.
func CreateFeature(ctx context.Context, db *gorm.DB, name string) (*domain.Feature, error) {
	f := &domain.Feature{
		ID:        uuid.NewString(),
		Name:      name,
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

// GetFeature fetches a feature by ID, or ErrNotFound.
func GetFeature(ctx context.Context, db *gorm.DB, id string) (*domain.Feature, error) {
	var f domain.Feature
	if err := db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeatures returns all features ordered by name.
func ListFeatures(ctx context.Context, db *gorm.DB) ([]domain.Feature, error) {
	var out []domain.Feature
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
