// Listing HTTP handlers.
//
// This file exposes REST endpoints for vehicle listings:
//   - POST   /listings                          (create, seller = caller)
//   - GET    /listings                          (search, paginated, ETag support)
//   - GET    /listings/{id}                     (detail, bumps view counter)
//   - PUT    /listings/{id}                     (update, seller only)
//   - DELETE /listings/{id}                     (delete, seller only)
//   - POST   /listings/{id}/mark_sold           (mark sold, idempotent via Idempotency-Key)
//   - POST   /listings/{id}/images              (attach image URL)
//   - GET    /listings/{id}/images              (list images)
//   - DELETE /images/{id}                       (remove image)
//   - PUT    /listings/{id}/features/{featureID} (attach feature)
//   - DELETE /listings/{id}/features/{featureID} (detach feature)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motorhub/go-marketplace-backend/internal/http/middleware"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
	"github.com/motorhub/go-marketplace-backend/internal/services"
	"github.com/motorhub/go-marketplace-backend/internal/utils"
)

//
// DTOs
//

// ListingRequest is the JSON payload for creating or replacing a listing.
// Enum fields (body_type, transmission, fuel_type, condition) are validated
// against the catalog vocabulary inside the service.
type ListingRequest struct {
	ModelID      string `json:"model_id" binding:"required"`
	BodyType     string `json:"body_type" binding:"required"`
	Transmission string `json:"transmission" binding:"required"`
	FuelType     string `json:"fuel_type" binding:"required"`
	Condition    string `json:"condition" binding:"required"`
	Mileage      int    `json:"mileage"`
	Price        int    `json:"price" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	Color        string `json:"color"`
	VIN          string `json:"vin"`
	Cylinders    int    `json:"cylinders"`
	EngineSize   int    `json:"engine_size"`
	Doors        int    `json:"doors"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	History      string `json:"history"`
}

func (r ListingRequest) input() services.ListingInput {
	return services.ListingInput{
		ModelID:      r.ModelID,
		BodyType:     r.BodyType,
		Transmission: r.Transmission,
		FuelType:     r.FuelType,
		Condition:    r.Condition,
		Mileage:      r.Mileage,
		Price:        r.Price,
		Year:         r.Year,
		Color:        r.Color,
		VIN:          r.VIN,
		Cylinders:    r.Cylinders,
		EngineSize:   r.EngineSize,
		Doors:        r.Doors,
		Description:  r.Description,
		Location:     r.Location,
		History:      r.History,
	}
}

// MarkSoldRequest optionally names the buyer when a listing is sold.
type MarkSoldRequest struct {
	BuyerID string `json:"buyer_id"`
}

// AddImageRequest is the JSON payload for attaching an image URL.
type AddImageRequest struct {
	URL string `json:"url" binding:"required,max=500"`
}

// ListListingsResponse wraps a page of listings and pagination information.
type ListListingsResponse struct {
	Listings   []ListingView `json:"listings"`
	Pagination Pagination    `json:"pagination"`
}

//
// Helpers
//

// parseListingSort maps the sort query param ("price", "-year", "mileage")
// onto a whitelisted sort. Unknown values fall back to newest-first.
func parseListingSort(raw string) repo.ListingSort {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	col := strings.TrimPrefix(raw, "-")
	switch col {
	case repo.SortPrice, repo.SortYear, repo.SortMileage:
		return repo.ListingSort{Column: col, Desc: desc}
	default:
		return repo.ListingSort{}
	}
}

func listingFilterFromQuery(c *gin.Context) repo.ListingFilter {
	f := repo.ListingFilter{
		BrandName:    strings.TrimSpace(c.Query("brand")),
		ModelName:    strings.TrimSpace(c.Query("model")),
		Year:         utils.AtoiDefault(c.Query("year"), 0),
		FuelType:     strings.TrimSpace(c.Query("fuel_type")),
		Transmission: strings.TrimSpace(c.Query("transmission")),
		PriceMin:     utils.AtoiDefault(c.Query("price_min"), 0),
		PriceMax:     utils.AtoiDefault(c.Query("price_max"), 0),
		SellerID:     strings.TrimSpace(c.Query("seller_id")),
		ActiveOnly:   true,
	}
	// Sold inventory is visible only to a seller browsing their own
	// listings; anyone else keeps the active-only view.
	if strings.EqualFold(c.Query("include_sold"), "true") {
		if uid := userID(c); uid != "" && (f.SellerID == "" || f.SellerID == uid) {
			f.SellerID = uid
			f.ActiveOnly = false
		}
	}
	return f
}

//
// Handlers
//

// CreateListing inserts a listing owned by the current user.
func (h *Handlers) CreateListing(c *gin.Context) {
	var req ListingRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	l, err := h.listings.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		failService(c, err)
		return
	}
	middleware.ObserveListingEvent("created")
	ok(c, http.StatusCreated, NewListingView(*l))
}

// ListListings returns a filtered, sorted page of active listings. Public.
// Supports weak ETag via If-None-Match and may return 304.
func (h *Handlers) ListListings(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := h.clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.ListingsStats(ctx, h.db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"listings:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.listings.SearchPage(ctx,
		listingFilterFromQuery(c), parseListingSort(c.Query("sort")), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListListingsResponse{
		Listings:   NewListingViews(items),
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetListing returns one listing and bumps its view counter. Public.
func (h *Handlers) GetListing(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	l, err := h.listings.Get(c.Request.Context(), id, true)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewListingView(*l))
}

// UpdateListing replaces the mutable fields of a listing owned by the caller.
func (h *Handlers) UpdateListing(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	var req ListingRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	l, err := h.listings.Update(c.Request.Context(), id, userID(c), req.input())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewListingView(*l))
}

// DeleteListing removes a listing owned by the caller.
func (h *Handlers) DeleteListing(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	if err := h.listings.Delete(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// MarkSold flips a listing to sold, optionally recording the buyer.
//
// Idempotency: if the client supplies an Idempotency-Key header and a
// previous successful call stored a record for (user, route, key), the
// stored listing is returned with `Idempotency-Replayed: true` instead of
// re-running the transition.
func (h *Handlers) MarkSold(c *gin.Context) {
	ctx := c.Request.Context()
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}

	// Body is optional; an empty request marks the listing sold without a buyer.
	var req MarkSoldRequest
	if c.Request.ContentLength > 0 {
		if err := bindStrict(c, &req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	uid := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		scope := middleware.IdempotencyScope(c)
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, scope, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := h.listings.Get(ctx, rec.ResourceID, false); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, NewListingView(*prev))
				return
			}
		}
	}

	l, err := h.listings.MarkSold(ctx, id, uid, strings.TrimSpace(req.BuyerID))
	if err != nil {
		failService(c, err)
		return
	}
	middleware.ObserveListingEvent("sold")

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, middleware.IdempotencyScope(c),
			idemKey, l.ID, http.StatusOK, h.opts.IdempotencyTTL)
	}

	ok(c, http.StatusOK, NewListingView(*l))
}

//
// Images
//

// AddListingImage attaches an image URL to a listing owned by the caller.
func (h *Handlers) AddListingImage(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	var req AddImageRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "url required")
		return
	}
	img, err := h.listings.AddImage(c.Request.Context(), id, userID(c), req.URL)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, img)
}

// ListListingImages returns the images attached to a listing. Public.
func (h *Handlers) ListListingImages(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	imgs, err := h.listings.ListImages(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"images": imgs})
}

// RemoveListingImage deletes an image from a listing owned by the caller.
func (h *Handlers) RemoveListingImage(c *gin.Context) {
	id, okID := pathUUID(c, "image")
	if !okID {
		return
	}
	if err := h.listings.RemoveImage(c.Request.Context(), id, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

//
// Features
//

func pathFeatureID(c *gin.Context) (string, bool) {
	id := c.Param("featureID")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "feature id must be a UUID")
		return "", false
	}
	return id, true
}

// AttachListingFeature links a catalog feature to a listing owned by the
// caller. Attaching twice is a conflict.
func (h *Handlers) AttachListingFeature(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	fid, okFID := pathFeatureID(c)
	if !okFID {
		return
	}
	if _, err := h.listings.AttachFeature(c.Request.Context(), id, fid, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// DetachListingFeature unlinks a feature from a listing owned by the caller.
func (h *Handlers) DetachListingFeature(c *gin.Context) {
	id, okID := pathUUID(c, "listing")
	if !okID {
		return
	}
	fid, okFID := pathFeatureID(c)
	if !okFID {
		return
	}
	if err := h.listings.DetachFeature(c.Request.Context(), id, fid, userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
