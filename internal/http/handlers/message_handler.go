// Message HTTP handlers.
//
//   - POST   /chats/{id}/messages  (send into a chat the caller participates in)
//   - GET    /messages             (list own sent messages, paginated)
//   - GET    /messages/{id}        (detail, sender only)
//   - DELETE /messages/{id}        (delete, sender only)
//
// Sending a message also enqueues a notification for the other participant;
// that happens inside the message service, in the same transaction.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/http/middleware"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// nlCollapseRE collapses runs of 3+ newlines down to a blank line.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes line endings and trims the payload before it
// reaches the service layer.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// SendMessageRequest is the JSON payload for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListMessagesResponse wraps a page of the caller's sent messages.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// SendMessage appends a message to a chat the current user participates in.
//
// Idempotency: if the client supplies an Idempotency-Key header and a
// previous successful call stored a record for (user, route, key), the
// stored message is returned with `Idempotency-Replayed: true`.
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	chatID, okID := pathUUID(c, "chat")
	if !okID {
		return
	}

	var req SendMessageRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	content := sanitizeContent(req.Content)
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	if max := h.messages.MaxContentRunes; max > 0 && utf8.RuneCountInString(content) > max {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", max))
		return
	}

	uid := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		scope := middleware.IdempotencyScope(c)
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, scope, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := h.messages.Get(ctx, rec.ResourceID, uid); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, prev)
				return
			}
		}
	}

	m, err := h.messages.Send(ctx, uid, chatID, content)
	if err != nil {
		failService(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, middleware.IdempotencyScope(c),
			idemKey, m.ID, http.StatusCreated, h.opts.IdempotencyTTL)
	}

	ok(c, http.StatusCreated, m)
}

// ListMyMessages returns a page of messages the current user has sent,
// newest first, across all chats.
func (h *Handlers) ListMyMessages(c *gin.Context) {
	page, pageSize := h.clampPagination(c)
	items, total, err := h.messages.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetMessage returns one of the current user's sent messages.
func (h *Handlers) GetMessage(c *gin.Context) {
	id, okID := pathUUID(c, "message")
	if !okID {
		return
	}
	m, err := h.messages.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// DeleteMessage removes one of the current user's sent messages.
func (h *Handlers) DeleteMessage(c *gin.Context) {
	id, okID := pathUUID(c, "message")
	if !okID {
		return
	}
	if err := h.messages.Delete(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
