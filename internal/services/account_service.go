// Package services – AccountService
//
// This file implements the AccountService, which owns the account
// lifecycle: registration with credential hashing and field-level
// validation, login and refresh-token rotation, the "current caller"
// lookup, profile updates, and the protected delete (an account still
// referenced as a listing buyer cannot be removed).
//
// Service-level errors (e.g. ErrInvalidCredentials, ErrUserIsBuyer, and
// *ValidationError) are returned for predictable cases so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// MinPasswordLen is the minimum accepted credential length.
const MinPasswordLen = 8

// emailRE is deliberately loose: it checks shape, not deliverability.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AccountService provides registration, authentication, and account
// management operations.
type AccountService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens issues and validates the JWT pair handed to clients.
	Tokens *auth.TokenIssuer
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB, tokens *auth.TokenIssuer) *AccountService {
	return &AccountService{DB: db, Tokens: tokens}
}

// RegisterInput carries the flat registration payload. The credential is
// write-only: it is hashed before persistence and never echoed back.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// Register validates the payload, hashes the credential, and persists a new
// account. Duplicate username/email/phone and short credentials are
// rejected with the offending field named; no record is created on
// failure.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Username == "" {
		return nil, NewValidationError("username", "required")
	}
	if !emailRE.MatchString(in.Email) {
		return nil, NewValidationError("email", "invalid address")
	}
	if len(in.Password) < MinPasswordLen {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if in.Phone != "" {
		u.Phone = &in.Phone
	}

	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, s.duplicateField(ctx, in)
		}
		return nil, err
	}
	return u, nil
}

// duplicateField pins a uniqueness violation to the colliding field so the
// validation error can name it.
func (s *AccountService) duplicateField(ctx context.Context, in RegisterInput) error {
	if _, err := repo.GetUserByUsername(ctx, s.DB, in.Username); err == nil {
		return NewValidationError("username", "already taken")
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&u).Error; err == nil {
		return NewValidationError("email", "already registered")
	}
	return NewValidationError("phone", "already registered")
}

// Login verifies a username/password pair and issues a token pair. The
// failure mode is a single ErrInvalidCredentials regardless of which part
// was wrong.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, *auth.TokenPair, error) {
	u, err := repo.GetUserByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, nil, err
	}
	_ = repo.TouchLastSeen(ctx, s.DB, u.ID, time.Now().UTC())
	return u, pair, nil
}

// Refresh validates a refresh token and rotates the access token for the
// account it names.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := repo.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.Tokens.Issue(u.ID, u.Role)
}

// Me returns the caller's own record.
func (s *AccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Get returns any account by id (contact card for public profiles).
func (s *AccountService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListPage returns a page of accounts and the total count.
func (s *AccountService) ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	total, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}
	items, err := repo.ListUsersPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// UpdateInput carries the updatable profile fields. Nil pointers are left
// untouched.
type UpdateInput struct {
	Email *string
	Phone *string
}

// Update applies profile changes to the caller's own record.
func (s *AccountService) Update(ctx context.Context, userID string, in UpdateInput) (*domain.User, error) {
	updates := map[string]any{}
	if in.Email != nil {
		e := strings.TrimSpace(strings.ToLower(*in.Email))
		if !emailRE.MatchString(e) {
			return nil, NewValidationError("email", "invalid address")
		}
		updates["email"] = e
	}
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		if p == "" {
			updates["phone"] = nil
		} else {
			updates["phone"] = p
		}
	}
	if len(updates) > 0 {
		if err := repo.UpdateUser(ctx, s.DB, userID, updates); err != nil {
			switch {
			case errors.Is(err, repo.ErrDuplicate):
				return nil, NewValidationError("email", "already registered")
			case errors.Is(err, gorm.ErrRecordNotFound):
				return nil, ErrUserNotFound
			default:
				return nil, err
			}
		}
	}
	return s.Me(ctx, userID)
}

// Delete removes the caller's account. An account referenced as the buyer
// of any listing cannot be deleted; the check runs in the same transaction
// as the delete so the restriction cannot race with a sale.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountListingsWithBuyer(ctx, tx, userID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrUserIsBuyer
		}
		if err := repo.DeleteUser(ctx, tx, userID); err != nil {
			switch {
			case errors.Is(err, repo.ErrRestricted):
				return ErrUserIsBuyer
			case errors.Is(err, gorm.ErrRecordNotFound):
				return ErrUserNotFound
			default:
				return err
			}
		}
		return nil
	})
}

// TouchLastSeen refreshes the caller's presence timestamp. Best effort.
func (s *AccountService) TouchLastSeen(ctx context.Context, userID string) {
	_ = repo.TouchLastSeen(ctx, s.DB, userID, time.Now().UTC())
}
