// Package services – ReviewService
//
// This file implements ReviewService, which owns user-to-user reviews
// scoped to a listing and their reply threads. Creation stamps the
// reviewer from the authenticated caller. Replies link to a parent review
// through a self reference; attaching a parent walks the ancestor chain to
// reject cycles and caps the thread depth, since the store alone cannot
// express an acyclicity constraint.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// MaxReviewDepth caps how deep a reply thread may grow. The root review
// sits at depth 0.
const MaxReviewDepth = 8

// ReviewService implements the use-cases around reviews and replies.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ReviewInput carries the flat review payload.
type ReviewInput struct {
	ReviewedUserID string
	ListingID      string
	ParentID       string
	Rating         int
	Text           string
}

// Create persists a review authored by reviewerID. When ParentID is set,
// the parent must belong to the same listing, must not close a cycle, and
// must leave the reply within MaxReviewDepth.
func (s *ReviewService) Create(ctx context.Context, reviewerID string, in ReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, NewValidationError("text", "required")
	}
	if _, err := repo.GetListing(ctx, s.DB, in.ListingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if _, err := repo.GetUser(ctx, s.DB, in.ReviewedUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r := &domain.Review{
		ReviewerID:     reviewerID,
		ReviewedUserID: in.ReviewedUserID,
		ListingID:      in.ListingID,
		Rating:         in.Rating,
		Text:           strings.TrimSpace(in.Text),
	}

	if in.ParentID != "" {
		parent, err := repo.GetReview(ctx, s.DB, in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReviewNotFound
			}
			return nil, err
		}
		if parent.ListingID != in.ListingID {
			return nil, ErrParentMismatch
		}
		if err := s.checkThread(ctx, in.ParentID); err != nil {
			return nil, err
		}
		r.ParentID = &in.ParentID
	}

	if err := repo.CreateReview(ctx, s.DB, r); err != nil {
		return nil, err
	}
	return repo.GetReview(ctx, s.DB, r.ID)
}

// checkThread walks ancestors from parentID. A repeated ID is a cycle; a
// chain already at MaxReviewDepth cannot take another reply.
func (s *ReviewService) checkThread(ctx context.Context, parentID string) error {
	chain, err := repo.ReviewAncestry(ctx, s.DB, parentID, MaxReviewDepth)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(chain))
	for _, id := range chain {
		if _, dup := seen[id]; dup {
			return ErrReviewCycle
		}
		seen[id] = struct{}{}
	}
	// chain includes the parent itself; the new reply would sit one below.
	if len(chain) >= MaxReviewDepth {
		return ErrReviewTooDeep
	}
	return nil
}

// Get returns one review. Reviews are readable wherever their listing is;
// the caller scoping applies to the collection and to writes.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	r, err := repo.GetReview(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListPage returns a page of the caller's authored reviews and the total
// count.
func (s *ReviewService) ListPage(ctx context.Context, reviewerID string, page, pageSize int) ([]domain.Review, int64, error) {
	total, err := repo.CountReviews(ctx, s.DB, reviewerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}
	items, err := repo.ListReviewsPage(ctx, s.DB, reviewerID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Update edits the rating and text of a review authored by reviewerID. The
// parent link and scoping references are immutable.
func (s *ReviewService) Update(ctx context.Context, id, reviewerID string, rating int, text string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("text", "required")
	}
	err := repo.UpdateReview(ctx, s.DB, id, reviewerID, map[string]any{
		"rating": rating,
		"text":   strings.TrimSpace(text),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return repo.GetReview(ctx, s.DB, id)
}

// Delete removes a review authored by reviewerID; its replies cascade.
func (s *ReviewService) Delete(ctx context.Context, id, reviewerID string) error {
	if err := repo.DeleteReview(ctx, s.DB, id, reviewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}
