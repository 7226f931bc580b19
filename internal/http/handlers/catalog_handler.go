// Catalog HTTP handlers.
//
// This file exposes REST endpoints for the brand/model/feature reference
// data. Reads are public; every mutation requires the admin role, enforced
// inside the catalog service.
//
//   - POST/GET           /brands            GET/PUT/DELETE /brands/{id}
//   - POST/GET           /models            GET/PUT/DELETE /models/{id}
//   - POST/GET           /features
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NameRequest is the JSON payload for creating or renaming a named catalog
// entry (brand, feature).
type NameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateModelRequest is the JSON payload for creating a model.
type CreateModelRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
	Name    string `json:"name" binding:"required,min=1,max=100"`
}

func pathUUID(c *gin.Context, what string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" id must be a UUID")
		return "", false
	}
	return id, true
}

//
// Brands
//

// CreateBrand inserts a brand. Admin only.
func (h *Handlers) CreateBrand(c *gin.Context) {
	var req NameRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	b, err := h.catalog.CreateBrand(c.Request.Context(), userRole(c), req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

// ListBrands returns all brands ordered by name.
func (h *Handlers) ListBrands(c *gin.Context) {
	bs, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"brands": bs})
}

// GetBrand returns one brand.
func (h *Handlers) GetBrand(c *gin.Context) {
	id, okID := pathUUID(c, "brand")
	if !okID {
		return
	}
	b, err := h.catalog.GetBrand(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// UpdateBrand renames a brand. Admin only.
func (h *Handlers) UpdateBrand(c *gin.Context) {
	id, okID := pathUUID(c, "brand")
	if !okID {
		return
	}
	var req NameRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	b, err := h.catalog.UpdateBrand(c.Request.Context(), userRole(c), id, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// DeleteBrand removes a brand and its dependent models/listings. Admin only.
func (h *Handlers) DeleteBrand(c *gin.Context) {
	id, okID := pathUUID(c, "brand")
	if !okID {
		return
	}
	if err := h.catalog.DeleteBrand(c.Request.Context(), userRole(c), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

//
// Models
//

// CreateModel inserts a model under an existing brand. Admin only.
func (h *Handlers) CreateModel(c *gin.Context) {
	var req CreateModelRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.catalog.CreateModel(c.Request.Context(), userRole(c), req.BrandID, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListModels returns models, optionally filtered by ?brand_id=.
func (h *Handlers) ListModels(c *gin.Context) {
	ms, err := h.catalog.ListModels(c.Request.Context(), c.Query("brand_id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"models": ms})
}

// GetModel returns one model with its brand.
func (h *Handlers) GetModel(c *gin.Context) {
	id, okID := pathUUID(c, "model")
	if !okID {
		return
	}
	m, err := h.catalog.GetModel(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// UpdateModel renames a model. Admin only.
func (h *Handlers) UpdateModel(c *gin.Context) {
	id, okID := pathUUID(c, "model")
	if !okID {
		return
	}
	var req NameRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.catalog.UpdateModel(c.Request.Context(), userRole(c), id, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// DeleteModel removes a model and its dependent listings. Admin only.
func (h *Handlers) DeleteModel(c *gin.Context) {
	id, okID := pathUUID(c, "model")
	if !okID {
		return
	}
	if err := h.catalog.DeleteModel(c.Request.Context(), userRole(c), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

//
// Features
//

// CreateFeature inserts a feature. Admin only.
func (h *Handlers) CreateFeature(c *gin.Context) {
	var req NameRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	f, err := h.catalog.CreateFeature(c.Request.Context(), userRole(c), req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

// ListFeatures returns all features ordered by name.
func (h *Handlers) ListFeatures(c *gin.Context) {
	fs, err := h.catalog.ListFeatures(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"features": fs})
}
