// Package services – CatalogService
//
// This file implements the CatalogService, which manages the brand, model,
// and feature reference data. Reads are public; every mutation requires the
// caller to hold the admin role; any other authenticated actor is rejected
// with ErrNotAdmin. Names are normalized (trimmed, whitespace collapsed,
// title-cased) before persistence so "  toyota " and "Toyota" are the same
// brand.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// CatalogService provides reference-data operations for brands, models,
// and features.
type CatalogService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	titler cases.Caser
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db, titler: cases.Title(language.English)}
}

// catalogSpaceRE collapses consecutive whitespace to a single space.
var catalogSpaceRE = regexp.MustCompile(`\s+`)

// normalizeName trims, collapses whitespace, and title-cases a reference
// name. Acronym-style names (BMW, SUV) survive because cases.Title leaves
// all-caps words intact only when they are a single rune run; we uppercase
// short all-consonant names by keeping the original when it is already
// fully upper.
func (s *CatalogService) normalizeName(name string) string {
	name = catalogSpaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	if name == strings.ToUpper(name) && len(name) <= 4 {
		return name
	}
	return s.titler.String(name)
}

// requireAdmin gates catalog mutations on the caller's role.
func requireAdmin(role string) error {
	if role != domain.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

//
// Brands
//

// CreateBrand inserts a brand. Admin only; duplicate names are rejected
// with the field named.
func (s *CatalogService) CreateBrand(ctx context.Context, callerRole, name string) (*domain.Brand, error) {
	if err := requireAdmin(callerRole); err != nil {
		return nil, err
	}
	name = s.normalizeName(name)
	if name == "" {
		return nil, NewValidationError("name", "required")
	}
	b, err := repo.CreateBrand(ctx, s.DB, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, NewValidationError("name", "brand already exists")
	}
	return b, err
}

// GetBrand returns one brand.
func (s *CatalogService) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	b, err := repo.GetBrand(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBrandNotFound
	}
	return b, err
}

// ListBrands returns all brands ordered by name.
func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return repo.ListBrands(ctx, s.DB)
}

// UpdateBrand renames a brand. Admin only.
func (s *CatalogService) UpdateBrand(ctx context.Context, callerRole, id, name string) (*domain.Brand, error) {
	if err := requireAdmin(callerRole); err != nil {
		return nil, err
	}
	name = s.normalizeName(name)
	if name == "" {
		return nil, NewValidationError("name", "required")
	}
	if err := repo.UpdateBrandName(ctx, s.DB, id, name); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, NewValidationError("name", "brand already exists")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrBrandNotFound
		default:
			return nil, err
		}
	}
	return s.GetBrand(ctx, id)
}

// DeleteBrand removes a brand and, through the schema, its models and their
// listings. Admin only.
func (s *CatalogService) DeleteBrand(ctx context.Context, callerRole, id string) error {
	if err := requireAdmin(callerRole); err != nil {
		return err
	}
	if err := repo.DeleteBrand(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}
	return nil
}

//
// Models
//

// CreateModel inserts a model under an existing brand. Admin only.
func (s *CatalogService) CreateModel(ctx context.Context, callerRole, brandID, name string) (*domain.Model, error) {
	if err := requireAdmin(callerRole); err != nil {
		return nil, err
	}
	name = s.normalizeName(name)
	if name == "" {
		return nil, NewValidationError("name", "required")
	}
	if _, err := repo.GetBrand(ctx, s.DB, brandID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	m, err := repo.CreateModel(ctx, s.DB, brandID, name)
	if err != nil {
		return nil, err
	}
	return repo.GetModel(ctx, s.DB, m.ID)
}

// GetModel returns one model with its brand.
func (s *CatalogService) GetModel(ctx context.Context, id string) (*domain.Model, error) {
	m, err := repo.GetModel(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModelNotFound
	}
	return m, err
}

// ListModels returns models, optionally narrowed to one brand.
func (s *CatalogService) ListModels(ctx context.Context, brandID string) ([]domain.Model, error) {
	return repo.ListModels(ctx, s.DB, brandID)
}

// UpdateModel renames a model. Admin only.
func (s *CatalogService) UpdateModel(ctx context.Context, callerRole, id, name string) (*domain.Model, error) {
	if err := requireAdmin(callerRole); err != nil {
		return nil, err
	}
	name = s.normalizeName(name)
	if name == "" {
		return nil, NewValidationError("name", "required")
	}
	if err := repo.UpdateModelName(ctx, s.DB, id, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return s.GetModel(ctx, id)
}

// DeleteModel removes a model and, through the schema, its listings. Admin
// only.
func (s *CatalogService) DeleteModel(ctx context.Context, callerRole, id string) error {
	if err := requireAdmin(callerRole); err != nil {
		return err
	}
	if err := repo.DeleteModel(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrModelNotFound
		}
		return err
	}
	return nil
}

//
// Features
//

// CreateFeature inserts a feature. Admin only.
func (s *CatalogService) CreateFeature(ctx context.Context, callerRole, name string) (*domain.Feature, error) {
	if err := requireAdmin(callerRole); err != nil {
		return nil, err
	}
	name = s.normalizeName(name)
	if name == "" {
		return nil, NewValidationError("name", "required")
	}
	f, err := repo.CreateFeature(ctx, s.DB, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, NewValidationError("name", "feature already exists")
	}
	return f, err
}

// ListFeatures returns all features ordered by name.
func (s *CatalogService) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	return repo.ListFeatures(ctx, s.DB)
}
