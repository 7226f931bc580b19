// Package services – ListingService
// This file implements ListingService, the application-level component that
// owns the vehicle listing lifecycle. It stamps the seller from the
// authenticated caller (a caller-supplied seller field is never accepted),
// validates category fields against the accepted vocabularies, runs the
// filtered/sorted/paginated public search, and guards the irreversible
// active → sold transition so only the seller can invoke it.
// Selling and price drops fan out notifications to every account that
// favorited the listing, inside the same transaction as the state change.
// Observability: the hot paths (search, mark-sold) are OpenTelemetry
// instrumented; spans carry listing/user identifiers and page parameters.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ListingService coordinates listing persistence, search, and the sold
// transition.
type ListingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxDescriptionRunes caps stored descriptions; 0 disables the guard.
	MaxDescriptionRunes int

	// FanoutObserver, when set, receives the recipient count of each
	// notification fanout burst (sold, price drop).
	FanoutObserver func(n int)

	// EventObserver, when set, receives lifecycle event kinds that are
	// detected inside the service rather than at the transport edge.
	EventObserver func(kind string)
}

// NewListingService constructs a ListingService with default guards.
func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{DB: db, MaxDescriptionRunes: 8000}
}

// ListingInput carries the flat listing payload. Nested image or feature
// collections are rejected at bind time; attachments go through their own
// endpoints.
type ListingInput struct {
	ModelID      string
	BodyType     string
	Transmission string
	FuelType     string
	Condition    string
	Mileage      int
	Price        int
	Year         int
	Color        string
	VIN          string
	Cylinders    int
	EngineSize   int
	Doors        int
	Description  string
	Location     string
	History      string
}

var (
	bodyTypes     = []string{domain.BodySedan, domain.BodySUV, domain.BodyTruck, domain.BodyHatchback, domain.BodyCoupe}
	transmissions = []string{domain.TransmissionAutomatic, domain.TransmissionManual}
	fuelTypes     = []string{domain.FuelPetrol, domain.FuelDiesel, domain.FuelElectric}
	conditions    = []string{domain.ConditionNew, domain.ConditionUsed}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// validate checks the category vocabularies and scalar ranges, naming the
// first offending field.
func (s *ListingService) validate(in ListingInput) error {
	switch {
	case in.ModelID == "":
		return NewValidationError("model_id", "required")
	case !oneOf(in.BodyType, bodyTypes):
		return NewValidationError("body_type", "must be one of "+strings.Join(bodyTypes, ", "))
	case !oneOf(in.Transmission, transmissions):
		return NewValidationError("transmission", "must be one of "+strings.Join(transmissions, ", "))
	case !oneOf(in.FuelType, fuelTypes):
		return NewValidationError("fuel_type", "must be one of "+strings.Join(fuelTypes, ", "))
	case !oneOf(in.Condition, conditions):
		return NewValidationError("condition", "must be New or Used")
	case in.Mileage < 0:
		return NewValidationError("mileage", "must not be negative")
	case in.Price <= 0:
		return NewValidationError("price", "must be positive")
	case in.Year < 1900 || in.Year > 2100:
		return NewValidationError("year", "out of range")
	case strings.TrimSpace(in.VIN) == "":
		return NewValidationError("vin", "required")
	}
	if s.MaxDescriptionRunes > 0 && len([]rune(in.Description)) > s.MaxDescriptionRunes {
		return NewValidationError("description", "too long")
	}
	return nil
}

// Create persists a new listing for sellerID. The seller field always comes
// from the authenticated caller; VIN collisions are rejected with the field
// named and leave the store unchanged.
func (s *ListingService) Create(ctx context.Context, sellerID string, in ListingInput) (*domain.Listing, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if _, err := repo.GetModel(ctx, s.DB, in.ModelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	l := &domain.Listing{
		SellerID:     sellerID,
		ModelID:      in.ModelID,
		BodyType:     in.BodyType,
		Transmission: in.Transmission,
		FuelType:     in.FuelType,
		Condition:    in.Condition,
		Mileage:      in.Mileage,
		Price:        in.Price,
		Year:         in.Year,
		Color:        strings.TrimSpace(in.Color),
		VIN:          strings.ToUpper(strings.TrimSpace(in.VIN)),
		Cylinders:    in.Cylinders,
		EngineSize:   in.EngineSize,
		Doors:        in.Doors,
		Description:  in.Description,
		Location:     strings.TrimSpace(in.Location),
		History:      in.History,
		IsActive:     true,
	}
	if err := repo.CreateListing(ctx, s.DB, l); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewValidationError("vin", "already registered")
		}
		return nil, err
	}
	return repo.GetListing(ctx, s.DB, l.ID)
}

// Get returns one listing. Sold listings stay retrievable by id for
// everyone; only the default list view hides them. Public retrievals bump
// the view counter.
func (s *ListingService) Get(ctx context.Context, id string, countView bool) (*domain.Listing, error) {
	l, err := repo.GetListing(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if countView {
		_ = repo.IncrementListingViews(ctx, s.DB, id)
	}
	return l, nil
}

// SearchPage runs the filtered, sorted, paginated listing query and returns
// the page plus the total match count.
func (s *ListingService) SearchPage(ctx context.Context, f repo.ListingFilter, sort repo.ListingSort, page, pageSize int) ([]domain.Listing, int64, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "SearchPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
			attribute.String("sort", sort.Column),
		),
	)
	defer span.End()

	total, err := repo.CountListings(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Listing{}, 0, nil
	}
	items, err := repo.FindListings(ctx, s.DB, f, sort, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Update applies changes to a listing owned by sellerID. A price reduction
// fans out price_drop notifications to accounts that favorited the listing.
// The seller field is never updatable.
func (s *ListingService) Update(ctx context.Context, id, sellerID string, in ListingInput) (*domain.Listing, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	prev, err := repo.GetListing(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if prev.SellerID != sellerID {
		// Listings are public; ownership failures are distinguishable here.
		return nil, ErrNotSeller
	}

	updates := map[string]any{
		"model_id":     in.ModelID,
		"body_type":    in.BodyType,
		"transmission": in.Transmission,
		"fuel_type":    in.FuelType,
		"condition":    in.Condition,
		"mileage":      in.Mileage,
		"price":        in.Price,
		"year":         in.Year,
		"color":        strings.TrimSpace(in.Color),
		"vin":          strings.ToUpper(strings.TrimSpace(in.VIN)),
		"cylinders":    in.Cylinders,
		"engine_size":  in.EngineSize,
		"doors":        in.Doors,
		"description":  in.Description,
		"location":     strings.TrimSpace(in.Location),
		"history":      in.History,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateListing(ctx, tx, id, sellerID, updates); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewValidationError("vin", "already registered")
			}
			return err
		}
		if in.Price < prev.Price {
			if s.EventObserver != nil {
				s.EventObserver("price_drop")
			}
			return s.notifyFavoriters(ctx, tx, prev, domain.NotificationPriceDrop,
				fmt.Sprintf("Price drop: %s %s is now %d", prev.Model.Brand.Name, prev.Model.Name, in.Price))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.GetListing(ctx, s.DB, id)
}

// Delete removes a listing owned by sellerID; images, feature mappings,
// chats, and reviews cascade with it.
func (s *ListingService) Delete(ctx context.Context, id, sellerID string) error {
	l, err := repo.GetListing(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if l.SellerID != sellerID {
		return ErrNotSeller
	}
	return repo.DeleteListing(ctx, s.DB, id, sellerID)
}

// MarkSold flips an active listing to sold, optionally recording the buyer.
// Only the seller may invoke it, the transition is irreversible in this API,
// and accounts that favorited the listing are notified in the same
// transaction.
func (s *ListingService) MarkSold(ctx context.Context, id, callerID, buyerID string) (*domain.Listing, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "MarkSold",
		trace.WithAttributes(
			attribute.String("listing.id", id),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	l, err := repo.GetListing(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if l.SellerID != callerID {
		return nil, ErrNotSeller
	}
	if !l.IsActive {
		return nil, ErrAlreadySold
	}
	if buyerID != "" {
		if buyerID == callerID {
			return nil, NewValidationError("buyer_id", "seller cannot be the buyer")
		}
		if _, err := repo.GetUser(ctx, s.DB, buyerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.MarkListingSold(ctx, tx, id, callerID, buyerID)
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost a race with another mark-sold call.
			return ErrAlreadySold
		}
		return s.notifyFavoriters(ctx, tx, l, domain.NotificationSold,
			fmt.Sprintf("%s %s (%d) has been sold", l.Model.Brand.Name, l.Model.Name, l.Year))
	})
	if err != nil {
		return nil, err
	}
	return repo.GetListing(ctx, s.DB, id)
}

// notifyFavoriters writes one notification per account that favorited the
// listing, excluding the seller.
func (s *ListingService) notifyFavoriters(ctx context.Context, tx *gorm.DB, l *domain.Listing, typ, body string) error {
	owners, err := repo.ListFavoriteOwners(ctx, tx, l.ID)
	if err != nil {
		return err
	}
	sent := 0
	for _, uid := range owners {
		if uid == l.SellerID {
			continue
		}
		if _, err := repo.CreateNotification(ctx, tx, uid, typ, body); err != nil {
			return err
		}
		sent++
	}
	if s.FanoutObserver != nil {
		s.FanoutObserver(sent)
	}
	return nil
}

// Images

// AddImage attaches an image URL to a listing owned by sellerID.
func (s *ListingService) AddImage(ctx context.Context, listingID, sellerID, url string) (*domain.ListingImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, NewValidationError("url", "required")
	}
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, ErrNotSeller
	}
	return repo.AddListingImage(ctx, s.DB, listingID, url)
}

// ListImages returns the images attached to a listing. Public.
func (s *ListingService) ListImages(ctx context.Context, listingID string) ([]domain.ListingImage, error) {
	if _, err := repo.GetListing(ctx, s.DB, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return repo.ListListingImages(ctx, s.DB, listingID)
}

// RemoveImage detaches an image from a listing owned by sellerID.
func (s *ListingService) RemoveImage(ctx context.Context, imageID, sellerID string) error {
	img, err := repo.GetListingImage(ctx, s.DB, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	l, err := repo.GetListing(ctx, s.DB, img.ListingID)
	if err != nil {
		return err
	}
	if l.SellerID != sellerID {
		return ErrNotSeller
	}
	return repo.DeleteListingImage(ctx, s.DB, imageID)
}

// Features

// AttachFeature maps a feature to a listing owned by sellerID. A pair may
// exist at most once.
func (s *ListingService) AttachFeature(ctx context.Context, listingID, featureID, sellerID string) (*domain.ListingFeature, error) {
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, ErrNotSeller
	}
	if _, err := repo.GetFeature(ctx, s.DB, featureID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}
		return nil, err
	}
	lf, err := repo.AttachFeature(ctx, s.DB, listingID, featureID)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateFeature
	}
	return lf, err
}

// DetachFeature removes a feature mapping from a listing owned by sellerID.
func (s *ListingService) DetachFeature(ctx context.Context, listingID, featureID, sellerID string) error {
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if l.SellerID != sellerID {
		return ErrNotSeller
	}
	if err := repo.DetachFeature(ctx, s.DB, listingID, featureID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeatureNotFound
		}
		return err
	}
	return nil
}
