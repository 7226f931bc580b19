// Notification HTTP handlers.
//
//   - GET  /notifications       (list own, paginated, ETag support)
//   - POST /notifications/read  (mark all read)
//
// Notifications are produced by other subsystems (new chat messages, sold
// listings, price drops); this surface only reads and acknowledges them.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// ListNotificationsResponse wraps a page of notifications and pagination
// information.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Pagination    Pagination            `json:"pagination"`
}

// ListNotifications returns a page of the current user's notifications,
// newest first. Supports weak ETag via If-None-Match and may return 304;
// marking notifications read invalidates the validator.
func (h *Handlers) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := h.clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.NotificationsStats(ctx, h.db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := etagFor("notifications", uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.notifications.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListNotificationsResponse{
		Notifications: items,
		Pagination:    paginationMeta(page, pageSize, total),
	})
}

// MarkNotificationsRead flags every unread notification of the current user
// as read and reports how many rows changed.
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"marked_read": n})
}
