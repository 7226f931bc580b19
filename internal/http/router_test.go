package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
	"github.com/motorhub/go-marketplace-backend/internal/config"
	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// --- test rig: real sqlite + full middleware chain + all routes ---

func newEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		APIBasePath:         "/api/v1",
		PageSizeDefault:     10,
		PageSizeMax:         50,
		MaxDescriptionRunes: 2000,
		MaxMessageRunes:     4000,
		RateRPS:             1000,
		RateBurst:           1000,
		IdempotencyTTL:      time.Hour,
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret",
			Issuer:     "router-test",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
	}
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	r := gin.New()
	RegisterRoutes(r, db, issuer, cfg)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

// registerAndLogin creates an account through the API and returns its id and
// access token.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) (string, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "a-long-password",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s -> %d body=%s", username, w.Code, w.Body.String())
	}
	var u domain.User
	decode(t, w, &u)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "a-long-password",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s -> %d body=%s", username, w.Code, w.Body.String())
	}
	var out struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	decode(t, w, &out)
	return u.ID, out.Tokens.AccessToken
}

// loginToken logs an existing account in and returns a fresh access token;
// needed after promoteAdmin because the role travels in the JWT claims.
func loginToken(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "a-long-password",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s -> %d body=%s", username, w.Code, w.Body.String())
	}
	var out struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	decode(t, w, &out)
	return out.Tokens.AccessToken
}

// promoteAdmin flips an account's role directly in the store; there is no
// admin-creation endpoint on purpose.
func promoteAdmin(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	if err := db.Model(&domain.User{}).Where("id = ?", userID).
		Update("role", domain.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}

func seedCatalogAPI(t *testing.T, r *gin.Engine, adminToken string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/brands", adminToken, gin.H{"name": "Toyota"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create brand -> %d body=%s", w.Code, w.Body.String())
	}
	var b domain.Brand
	decode(t, w, &b)

	w = doJSON(t, r, http.MethodPost, "/api/v1/models", adminToken, gin.H{"brand_id": b.ID, "name": "Corolla"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create model -> %d body=%s", w.Code, w.Body.String())
	}
	var m domain.Model
	decode(t, w, &m)
	return m.ID
}

func listingBody(modelID, vin string) gin.H {
	return gin.H{
		"model_id":     modelID,
		"body_type":    "Sedan",
		"transmission": "Manual",
		"fuel_type":    "Petrol",
		"condition":    "Used",
		"mileage":      42000,
		"price":        15000,
		"year":         2020,
		"vin":          vin,
	}
}

// --- tests ---

func TestHealthAndMetricsWired(t *testing.T) {
	r, _ := newEnv(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS, got %q", got)
	}

	w = doJSON(t, r, http.MethodGet, "/metrics", "", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = doJSON(t, r, http.MethodGet, "/nope", "", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d", w.Code)
	}
}

func TestAuthGateAndProfile(t *testing.T) {
	r, _ := newEnv(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/me", "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /me = %d", w.Code)
	}

	uid, token := registerAndLogin(t, r, "alice")
	w = doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /me = %d body=%s", w.Code, w.Body.String())
	}
	var me domain.User
	decode(t, w, &me)
	if me.ID != uid || me.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	// Password hash must never serialize.
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("profile leaks password material: %s", w.Body.String())
	}

	// Profile reads require a token; email and phone are not public.
	w = doJSON(t, r, http.MethodGet, "/api/v1/users/"+uid, "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated profile read = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/users/"+uid, token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated profile read = %d", w.Code)
	}
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	r, db := newEnv(t)

	adminID, _ := registerAndLogin(t, r, "admin")
	promoteAdmin(t, db, adminID)
	adminToken := loginToken(t, r, "admin")
	modelID := seedCatalogAPI(t, r, adminToken)

	_, seller := registerAndLogin(t, r, "seller")
	_, buyerTok := registerAndLogin(t, r, "buyer")
	buyerID, _ := registerAndLogin(t, r, "buyer2")

	// Non-admins cannot touch the catalog.
	w := doJSON(t, r, http.MethodPost, "/api/v1/brands", seller, gin.H{"name": "Honda"}, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin brand create = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/listings", seller, listingBody(modelID, "vin-router-1"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create listing = %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	// Vocabulary failures come back as a 422 with the field named.
	bad := listingBody(modelID, "vin-router-2")
	bad["fuel_type"] = "Coal"
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings", seller, bad, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad vocab = %d body=%s", w.Code, w.Body.String())
	}
	var envlp struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &envlp)
	if envlp.Code != "validation_failed" || envlp.Fields["fuel_type"] == "" {
		t.Fatalf("unexpected envelope: %+v", envlp)
	}

	// Inline attachment lists are rejected, never silently dropped; images
	// and features have their own endpoints.
	inline := listingBody(modelID, "vin-router-3")
	inline["images"] = []string{"http://cdn.example.com/a.jpg"}
	inline["features"] = []string{"Sunroof"}
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings", seller, inline, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inline attachments = %d body=%s", w.Code, w.Body.String())
	}

	// Public detail and search.
	w = doJSON(t, r, http.MethodGet, "/api/v1/listings/"+created.ID, "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public get = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/listings?brand=Toyota", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("search response missing ETag")
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/listings?brand=Toyota", "", nil,
		map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional search = %d", w.Code)
	}

	// Strangers cannot mark it sold.
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings/"+created.ID+"/mark_sold", buyerTok, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign mark-sold = %d", w.Code)
	}

	// Mark sold with a key, then replay the exact request.
	hdr := map[string]string{"Idempotency-Key": "sale-0001"}
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings/"+created.ID+"/mark_sold", seller,
		gin.H{"buyer_id": buyerID}, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("mark sold = %d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings/"+created.ID+"/mark_sold", seller,
		gin.H{"buyer_id": buyerID}, hdr)
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay = %d replayed=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}

	// Without the key the second transition is a plain conflict.
	w = doJSON(t, r, http.MethodPost, "/api/v1/listings/"+created.ID+"/mark_sold", seller, nil, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-sell without key = %d", w.Code)
	}

	// Sold inventory stays hidden from the public search even when asked
	// for; only the seller browsing their own listings gets it back.
	var page struct {
		Listings []struct {
			ID string `json:"id"`
		} `json:"listings"`
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/listings?include_sold=true", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public include_sold = %d", w.Code)
	}
	decode(t, w, &page)
	for _, l := range page.Listings {
		if l.ID == created.ID {
			t.Fatal("sold listing leaked into the public search")
		}
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/listings?include_sold=true", seller, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("seller include_sold = %d", w.Code)
	}
	page.Listings = nil
	decode(t, w, &page)
	found := false
	for _, l := range page.Listings {
		if l.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("seller cannot see their own sold listing")
	}
}

func TestChatAndNotificationFlowOverHTTP(t *testing.T) {
	r, db := newEnv(t)

	adminID, _ := registerAndLogin(t, r, "admin")
	promoteAdmin(t, db, adminID)
	adminToken := loginToken(t, r, "admin")
	modelID := seedCatalogAPI(t, r, adminToken)

	_, sellerTok := registerAndLogin(t, r, "seller")
	_, buyerTok := registerAndLogin(t, r, "buyer")

	w := doJSON(t, r, http.MethodPost, "/api/v1/listings", sellerTok, listingBody(modelID, "vin-chat-1"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create listing = %d", w.Code)
	}
	var l struct {
		ID string `json:"id"`
	}
	decode(t, w, &l)

	// Seller cannot open a chat on their own listing.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats", sellerTok, gin.H{"listing_id": l.ID}, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("self chat = %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/chats", buyerTok, gin.H{"listing_id": l.ID}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create chat = %d body=%s", w.Code, w.Body.String())
	}
	var chat struct {
		ID string `json:"id"`
	}
	decode(t, w, &chat)

	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", buyerTok,
		gin.H{"content": "is it still available?\r\n\n\n\nthanks"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("send message = %d body=%s", w.Code, w.Body.String())
	}

	// Counterpart sees the transcript and got a notification.
	w = doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/messages", sellerTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transcript = %d", w.Code)
	}
	var tr struct {
		Messages []domain.Message `json:"messages"`
	}
	decode(t, w, &tr)
	if len(tr.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(tr.Messages))
	}
	if tr.Messages[0].Content != "is it still available?\n\nthanks" {
		t.Fatalf("content not normalized: %q", tr.Messages[0].Content)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/notifications", sellerTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("notifications = %d", w.Code)
	}
	if etag := w.Header().Get("ETag"); etag == "" {
		t.Fatal("notifications response missing ETag")
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/notifications/read", sellerTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read = %d", w.Code)
	}
	var marked struct {
		MarkedRead int64 `json:"marked_read"`
	}
	decode(t, w, &marked)
	if marked.MarkedRead != 1 {
		t.Fatalf("marked_read = %d", marked.MarkedRead)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	r, _ := newEnv(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/listings", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /listings = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff, headers=%v", w.Header())
	}
}

func TestIdempotencyKeyRejectedWhenMalformed(t *testing.T) {
	r, _ := newEnv(t)

	_, token := registerAndLogin(t, r, "poster")
	longKey := make([]byte, 201)
	for i := range longKey {
		longKey[i] = 'k'
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/chats", token, gin.H{"listing_id": "x"},
		map[string]string{"Idempotency-Key": string(longKey)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized Idempotency-Key = %d body=%s", w.Code, w.Body.String())
	}
}
