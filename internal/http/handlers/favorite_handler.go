// Favorite HTTP handlers.
//
//   - POST   /favorites        (save a listing)
//   - GET    /favorites        (list own, paginated)
//   - GET    /favorites/{id}   (detail)
//   - DELETE /favorites/{id}   (remove)
//
// All favorite routes require authentication; favorites are scoped to
// their owner and never visible to other accounts.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddFavoriteRequest is the JSON payload for saving a listing.
type AddFavoriteRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

// ListFavoritesResponse wraps a page of favorites and pagination information.
type ListFavoritesResponse struct {
	Favorites  []FavoriteView `json:"favorites"`
	Pagination Pagination     `json:"pagination"`
}

// AddFavorite saves a listing for the current user. Saving the same listing
// twice is a conflict.
func (h *Handlers) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "listing_id required")
		return
	}
	f, err := h.favorites.Add(c.Request.Context(), userID(c), req.ListingID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, NewFavoriteView(*f))
}

// ListFavorites returns a page of the current user's favorites.
func (h *Handlers) ListFavorites(c *gin.Context) {
	page, pageSize := h.clampPagination(c)
	items, total, err := h.favorites.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListFavoritesResponse{
		Favorites:  NewFavoriteViews(items),
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetFavorite returns one of the current user's favorites.
func (h *Handlers) GetFavorite(c *gin.Context) {
	id, okID := pathUUID(c, "favorite")
	if !okID {
		return
	}
	f, err := h.favorites.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewFavoriteView(*f))
}

// RemoveFavorite deletes one of the current user's favorites.
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	id, okID := pathUUID(c, "favorite")
	if !okID {
		return
	}
	if err := h.favorites.Remove(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
