// Authentication HTTP handlers.
//
// This file exposes the credential endpoints:
//   - POST /auth/register  (create an account)
//   - POST /auth/login     (exchange credentials for a token pair)
//   - POST /auth/refresh   (rotate an access token with a refresh token)
//
// Registration and login are the only unauthenticated mutations in the API.
// The password never appears in any response and the stored form is a bcrypt
// digest.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/services"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=150"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the JSON payload for exchanging credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse bundles the account and its freshly issued tokens.
type LoginResponse struct {
	User   *domain.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

//
// Handlers
//

// Register creates a new account and returns it with 201.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login verifies credentials and returns the account plus a token pair.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, pair, err := h.accounts.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, LoginResponse{User: u, Tokens: pair})
}

// Refresh rotates the token pair for a valid refresh token.
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := bindStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"tokens": pair})
}
