// Review HTTP handlers.
//
//   - POST   /reviews        (review a user, optionally replying to a review)
//   - GET    /reviews        (list own authored reviews, paginated)
//   - GET    /reviews/{id}   (detail, public)
//   - PUT    /reviews/{id}   (update own review)
//   - DELETE /reviews/{id}   (delete own review, cascades to replies)
//
// Reviews form shallow threads: a reply names a parent review, must target
// the same reviewed user, and the chain depth is capped in the service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/services"
)

// CreateReviewRequest is the JSON payload for posting a review or reply.
type CreateReviewRequest struct {
	ReviewedUserID string `json:"reviewed_user_id" binding:"required"`
	ListingID      string `json:"listing_id"`
	ParentID       string `json:"parent_id"`
	Rating         int    `json:"rating" binding:"required"`
	Text           string `json:"text"`
}

// UpdateReviewRequest is the JSON payload for editing an authored review.
type UpdateReviewRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Text   string `json:"text"`
}

// ListReviewsResponse wraps a page of reviews and pagination information.
type ListReviewsResponse struct {
	Reviews    []ReviewView `json:"reviews"`
	Pagination Pagination   `json:"pagination"`
}

// CreateReview posts a review of another user, optionally attached to a
// listing or threaded under a parent review.
func (h *Handlers) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.reviews.Create(c.Request.Context(), userID(c), services.ReviewInput{
		ReviewedUserID: req.ReviewedUserID,
		ListingID:      req.ListingID,
		ParentID:       req.ParentID,
		Rating:         req.Rating,
		Text:           req.Text,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, NewReviewView(*r))
}

// ListMyReviews returns a page of reviews authored by the current user.
func (h *Handlers) ListMyReviews(c *gin.Context) {
	page, pageSize := h.clampPagination(c)
	items, total, err := h.reviews.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListReviewsResponse{
		Reviews:    NewReviewViews(items),
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetReview returns one review. Public.
func (h *Handlers) GetReview(c *gin.Context) {
	id, okID := pathUUID(c, "review")
	if !okID {
		return
	}
	r, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewReviewView(*r))
}

// UpdateReview edits the rating or text of a review authored by the caller.
func (h *Handlers) UpdateReview(c *gin.Context) {
	id, okID := pathUUID(c, "review")
	if !okID {
		return
	}
	var req UpdateReviewRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.reviews.Update(c.Request.Context(), id, userID(c), req.Rating, req.Text)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewReviewView(*r))
}

// DeleteReview removes a review authored by the caller along with any
// replies beneath it.
func (h *Handlers) DeleteReview(c *gin.Context) {
	id, okID := pathUUID(c, "review")
	if !okID {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
