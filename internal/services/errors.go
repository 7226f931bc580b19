// Package services defines the business logic for accounts, the vehicle
// catalog, listings, and the interaction records (favorites, chats,
// messages, reviews, notifications). This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrUserNotFound indicates that the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned by Login when the username or
	// password does not match a stored account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserIsBuyer is returned when deleting an account that is still
	// referenced as the buyer of a listing. Deletion is rejected, not
	// cascaded.
	ErrUserIsBuyer = errors.New("account is referenced as a buyer")
)

// ValidationError reports one or more rejected fields by name. It is
// returned by create/update operations so handlers can identify the
// offending fields to the caller.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	for f, msg := range e.Fields {
		return f + ": " + msg
	}
	return "validation failed"
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Catalog-related errors.
var (
	// ErrBrandNotFound indicates a missing brand.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrModelNotFound indicates a missing model.
	ErrModelNotFound = errors.New("model not found")

	// ErrFeatureNotFound indicates a missing feature.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrNotAdmin is returned when a non-admin caller attempts to mutate
	// catalog reference data.
	ErrNotAdmin = errors.New("admin role required")
)

// Listing-related errors.
var (
	// ErrListingNotFound indicates that the listing does not exist or is
	// not visible to the caller.
	ErrListingNotFound = errors.New("listing not found")

	// ErrNotSeller is returned when a caller who does not own a listing
	// attempts an owner-only operation on it.
	ErrNotSeller = errors.New("caller is not the seller")

	// ErrAlreadySold is returned by MarkSold on an inactive listing; the
	// transition is irreversible and cannot be repeated.
	ErrAlreadySold = errors.New("listing already sold")

	// ErrDuplicateVIN is returned when a listing's VIN collides with an
	// existing one.
	ErrDuplicateVIN = errors.New("vin already registered")

	// ErrDuplicateFeature is returned when attaching a feature already
	// mapped to the listing.
	ErrDuplicateFeature = errors.New("feature already attached")

	// ErrImageNotFound indicates a missing listing image.
	ErrImageNotFound = errors.New("image not found")
)

// Interaction-related errors.
var (
	// ErrDuplicateFavorite is returned when favoriting an already
	// favorited listing.
	ErrDuplicateFavorite = errors.New("favorite already exists")

	// ErrFavoriteNotFound indicates the favorite does not exist or belongs
	// to another account.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrChatNotFound indicates the chat does not exist or the caller is
	// not a participant.
	ErrChatNotFound = errors.New("chat not found")

	// ErrChatWithSelf is returned when a seller opens a chat on their own
	// listing.
	ErrChatWithSelf = errors.New("cannot open a chat on your own listing")

	// ErrMessageNotFound indicates the message does not exist or was not
	// sent by the caller.
	ErrMessageNotFound = errors.New("message not found")

	// ErrEmptyMessage is returned when a message body is blank.
	ErrEmptyMessage = errors.New("message body is empty")

	// ErrReviewNotFound indicates the review does not exist or was not
	// authored by the caller.
	ErrReviewNotFound = errors.New("review not found")

	// ErrInvalidRating is returned when a rating falls outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrReviewCycle is returned when attaching a parent review would
	// close a cycle in the reply tree.
	ErrReviewCycle = errors.New("reply would create a cycle")

	// ErrReviewTooDeep is returned when a reply would exceed the maximum
	// thread depth.
	ErrReviewTooDeep = errors.New("reply thread too deep")

	// ErrParentMismatch is returned when a reply references a parent on a
	// different listing.
	ErrParentMismatch = errors.New("parent review belongs to another listing")
)
