// Chat HTTP handlers.
//
//   - POST   /chats                (open a conversation about a listing)
//   - GET    /chats                (list own, paginated)
//   - GET    /chats/{id}           (detail)
//   - GET    /chats/{id}/messages  (transcript, paginated)
//   - DELETE /chats/{id}           (delete, either participant)
//
// A chat always pairs the listing's seller with an interested buyer; both
// participants see the same conversation and either may delete it.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/http/middleware"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// CreateChatRequest is the JSON payload for opening a conversation.
type CreateChatRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

// ListChatsResponse wraps a page of chats and pagination information.
type ListChatsResponse struct {
	Chats      []ChatView `json:"chats"`
	Pagination Pagination `json:"pagination"`
}

// TranscriptResponse wraps a page of messages within a chat.
type TranscriptResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// CreateChat opens a conversation between the current user (buyer) and the
// listing's seller.
//
// Idempotency: if the client supplies an Idempotency-Key header and a
// previous successful call stored a record for (user, route, key), the
// stored chat is returned with `Idempotency-Replayed: true`.
func (h *Handlers) CreateChat(c *gin.Context) {
	ctx := c.Request.Context()
	var req CreateChatRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "listing_id required")
		return
	}
	uid := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		scope := middleware.IdempotencyScope(c)
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, scope, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := h.chats.Get(ctx, rec.ResourceID, uid); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, NewChatView(*prev))
				return
			}
		}
	}

	ch, err := h.chats.Create(ctx, uid, req.ListingID)
	if err != nil {
		failService(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, middleware.IdempotencyScope(c),
			idemKey, ch.ID, http.StatusCreated, h.opts.IdempotencyTTL)
	}

	ok(c, http.StatusCreated, NewChatView(*ch))
}

// ListChats returns a page of conversations the current user participates in.
// Supports weak ETag via If-None-Match and may return 304.
func (h *Handlers) ListChats(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := h.clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.ChatsStats(ctx, h.db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := etagFor("chats", uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.chats.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListChatsResponse{
		Chats:      NewChatViews(items),
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetChat returns one conversation the current user participates in.
func (h *Handlers) GetChat(c *gin.Context) {
	id, okID := pathUUID(c, "chat")
	if !okID {
		return
	}
	ch, err := h.chats.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewChatView(*ch))
}

// GetTranscript returns a page of messages in a chat the current user
// participates in, oldest first.
func (h *Handlers) GetTranscript(c *gin.Context) {
	id, okID := pathUUID(c, "chat")
	if !okID {
		return
	}
	page, pageSize := h.clampPagination(c)
	items, total, err := h.chats.Transcript(c.Request.Context(), id, userID(c), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, TranscriptResponse{
		Messages:   items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// DeleteChat removes a conversation. Either participant may delete it; the
// transcript goes with it.
func (h *Handlers) DeleteChat(c *gin.Context) {
	id, okID := pathUUID(c, "chat")
	if !okID {
		return
	}
	if err := h.chats.Delete(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
