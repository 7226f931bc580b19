// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model, including the ancestor walk that backs the reply-tree cycle and
// depth guards in the service layer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// CreateReview inserts a review row.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(r).Error
}

// GetReview fetches any review by ID, or ErrNotFound. Reads are not
// author-scoped: reviews are readable wherever their listing is.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Preload("Reviewer").
		Preload("ReviewedUser").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviewsPage returns a page of reviews authored by reviewerID, newest
// first.
func ListReviewsPage(ctx context.Context, db *gorm.DB, reviewerID string, offset, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Reviewer").
		Preload("ReviewedUser").
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountReviews returns the number of reviews authored by reviewerID.
func CountReviews(ctx context.Context, db *gorm.DB, reviewerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("reviewer_id = ?", reviewerID).
		Count(&total).Error
	return total, err
}

// ReviewAncestry walks parent links from reviewID upward, returning the
// chain of ancestor IDs starting with reviewID itself. The walk stops at
// the root or after maxDepth hops, whichever comes first, so a corrupted
// cycle cannot hang the caller.
func ReviewAncestry(ctx context.Context, db *gorm.DB, reviewID string, maxDepth int) ([]string, error) {
	chain := make([]string, 0, maxDepth)
	cur := reviewID
	for i := 0; i <= maxDepth; i++ {
		chain = append(chain, cur)
		var row struct {
			ParentID *string
		}
		err := db.WithContext(ctx).
			Model(&domain.Review{}).
			Select("parent_id").
			Where("id = ?", cur).
			First(&row).Error
		if err != nil {
			return nil, err
		}
		if row.ParentID == nil {
			return chain, nil
		}
		cur = *row.ParentID
	}
	return chain, nil
}

// UpdateReview applies rating/text updates to a review authored by
// reviewerID; ErrNotFound when no row matched.
func UpdateReview(ctx context.Context, db *gorm.DB, id, reviewerID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ? AND reviewer_id = ?", id, reviewerID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteReview removes a review authored by reviewerID; replies cascade.
func DeleteReview(ctx context.Context, db *gorm.DB, id, reviewerID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND reviewer_id = ?", id, reviewerID).
		Delete(&domain.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
