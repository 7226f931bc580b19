// Account HTTP handlers.
//
// This file exposes REST endpoints for account resources:
//   - GET    /users       (list, paginated)
//   - GET    /users/{id}  (profile card, authenticated)
//   - GET    /me          (caller's own record)
//   - PUT    /me          (partial profile update)
//   - DELETE /me          (delete own account; blocked while a buyer reference exists)
//
// Every authenticated request refreshes the caller's presence timestamp.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for PUT /me. Absent fields are
// left untouched; an explicit empty phone clears it.
type UpdateProfileRequest struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ListUsersResponse wraps a page of accounts and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// ListUsers returns a page of accounts.
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := h.clampPagination(c)
	items, total, err := h.accounts.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{
		Users:      items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetUser returns one account by id.
func (h *Handlers) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	u, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// Me returns the caller's own record and refreshes their presence.
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	u, err := h.accounts.Me(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	h.accounts.TouchLastSeen(c.Request.Context(), uid)
	ok(c, http.StatusOK, u)
}

// UpdateMe applies a partial profile update to the caller's record.
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.accounts.Update(c.Request.Context(), userID(c), services.UpdateInput{
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteMe removes the caller's account. Accounts referenced as a listing
// buyer are protected and the delete is rejected with 409.
func (h *Handlers) DeleteMe(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
