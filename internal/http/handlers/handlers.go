// Handler wiring and shared request helpers.
//
// Handlers groups every endpoint of the marketplace API behind one struct so
// the router wires a single value. Handlers are transport-thin: they bind and
// normalize input, call application services, and translate results into HTTP
// responses. Identity always comes from the authentication middleware, never
// from request payloads.
package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/http/middleware"
	"github.com/motorhub/go-marketplace-backend/internal/services"
	"github.com/motorhub/go-marketplace-backend/internal/utils"
)

// Options carries the transport-level tunables shared by all handlers.
type Options struct {
	// PageSizeDefault is used when the client omits page_size.
	PageSizeDefault int
	// PageSizeMax caps the accepted page_size.
	PageSizeMax int
	// IdempotencyTTL bounds how long a stored Idempotency-Key stays valid.
	IdempotencyTTL time.Duration
}

// Handlers groups HTTP endpoints for every resource of the API. It depends
// on concrete services plus the DB handle used for ETag stat queries.
type Handlers struct {
	db *gorm.DB

	accounts      *services.AccountService
	catalog       *services.CatalogService
	listings      *services.ListingService
	favorites     *services.FavoriteService
	chats         *services.ChatService
	messages      *services.MessageService
	reviews       *services.ReviewService
	notifications *services.NotificationService

	opts Options
}

// New constructs a Handlers instance bound to the given services.
func New(
	db *gorm.DB,
	accounts *services.AccountService,
	catalog *services.CatalogService,
	listings *services.ListingService,
	favorites *services.FavoriteService,
	chats *services.ChatService,
	messages *services.MessageService,
	reviews *services.ReviewService,
	notifications *services.NotificationService,
	opts Options,
) *Handlers {
	if opts.PageSizeDefault < 1 {
		opts.PageSizeDefault = 10
	}
	if opts.PageSizeMax < opts.PageSizeDefault {
		opts.PageSizeMax = 50
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &Handlers{
		db:            db,
		accounts:      accounts,
		catalog:       catalog,
		listings:      listings,
		favorites:     favorites,
		chats:         chats,
		messages:      messages,
		reviews:       reviews,
		notifications: notifications,
		opts:          opts,
	}
}

// bindStrict decodes a JSON request body into dst, rejecting unknown keys,
// then runs the binding-tag validation. Unknown keys matter on write
// payloads: a client attaching `images` or `features` inline on a listing
// create must get a 400, not a silently stripped request.
func bindStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(dst)
}

// userID extracts the authenticated account id set by the auth middleware.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

// userRole extracts the authenticated account role set by the auth middleware.
func userRole(c *gin.Context) string {
	return middleware.Role(c)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params against
// the configured defaults and limits, returning (page, pageSize).
func (h *Handlers) clampPagination(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), h.opts.PageSizeDefault)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > h.opts.PageSizeMax {
		pageSize = h.opts.PageSizeMax
	}
	return
}

// etagFor builds a weak validator for an owner-scoped collection from its
// row count and newest-update timestamp.
func etagFor(kind, owner string, count, ts int64) string {
	return fmt.Sprintf(`W/"%s:%s:%d:%d"`, kind, owner, count, ts)
}

// paginationMeta derives the metadata block for a list response.
func paginationMeta(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
