// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
	"github.com/motorhub/go-marketplace-backend/internal/config"
	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/http/handlers"
	"github.com/motorhub/go-marketplace-backend/internal/http/middleware"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
	"github.com/motorhub/go-marketplace-backend/internal/services"
)

// chatRepoShim adapts the repository free functions to the services.ChatRepo
// interface expected by the ChatService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type chatRepoShim struct{}

// CreateChat proxies repo.CreateChat.
func (chatRepoShim) CreateChat(ctx context.Context, db *gorm.DB, buyerID, sellerID, listingID string) (*domain.Chat, error) {
	return repo.CreateChat(ctx, db, buyerID, sellerID, listingID)
}

// GetChat proxies repo.GetChat.
func (chatRepoShim) GetChat(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Chat, error) {
	return repo.GetChat(ctx, db, id, userID)
}

// CountChats proxies repo.CountChats (pagination support).
func (chatRepoShim) CountChats(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountChats(ctx, db, userID)
}

// ListChatsPage proxies repo.ListChatsPage (pagination support).
func (chatRepoShim) ListChatsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Chat, error) {
	return repo.ListChatsPage(ctx, db, userID, offset, limit)
}

// DeleteChat proxies repo.DeleteChat.
func (chatRepoShim) DeleteChat(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteChat(ctx, db, id, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Response compression
//  7. Metrics
//  8. Optional identity resolution (feeds idempotency and rate keys)
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP, bypass on replay)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, issuer *auth.TokenIssuer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression (skip the Prometheus scrape endpoint)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Resolve the caller when a token is present, so the idempotency
	// scope and the rate-limit key are per-user instead of per-IP. The
	// private group still enforces RequireAuth.
	r.Use(middleware.OptionalAuth(issuer))

	// 9) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 10) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 11) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/issuer
	accountSvc := services.NewAccountService(db, issuer)
	catalogSvc := services.NewCatalogService(db)
	listingSvc := services.NewListingService(db)
	listingSvc.MaxDescriptionRunes = cfg.MaxDescriptionRunes
	listingSvc.FanoutObserver = middleware.ObserveNotificationFanout
	listingSvc.EventObserver = middleware.ObserveListingEvent
	favoriteSvc := &services.FavoriteService{DB: db}
	chatSvc := services.NewChatService(db, chatRepoShim{})
	messageSvc := services.NewMessageService(db)
	messageSvc.MaxContentRunes = cfg.MaxMessageRunes
	reviewSvc := &services.ReviewService{DB: db}
	notificationSvc := &services.NotificationService{DB: db}

	h := handlers.New(db, accountSvc, catalogSvc, listingSvc, favoriteSvc,
		chatSvc, messageSvc, reviewSvc, notificationSvc, handlers.Options{
			PageSizeDefault: cfg.PageSizeDefault,
			PageSizeMax:     cfg.PageSizeMax,
			IdempotencyTTL:  cfg.IdempotencyTTL,
		})

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Public surface: token endpoints plus read-only catalog and listings.
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/refresh", h.Refresh)

		api.GET("/brands", h.ListBrands)
		api.GET("/brands/:id", h.GetBrand)
		api.GET("/models", h.ListModels)
		api.GET("/models/:id", h.GetModel)
		api.GET("/features", h.ListFeatures)

		api.GET("/listings", h.ListListings)
		api.GET("/listings/:id", h.GetListing)
		api.GET("/listings/:id/images", h.ListListingImages)

		api.GET("/reviews/:id", h.GetReview)
	}

	// Authenticated surface.
	priv := api.Group("", middleware.RequireAuth(issuer))
	{
		// Own account
		priv.GET("/me", h.Me)
		priv.PUT("/me", h.UpdateMe)
		priv.DELETE("/me", h.DeleteMe)
		priv.GET("/users", h.ListUsers)
		priv.GET("/users/:id", h.GetUser)

		// Catalog administration (role enforced in the service)
		priv.POST("/brands", h.CreateBrand)
		priv.PUT("/brands/:id", h.UpdateBrand)
		priv.DELETE("/brands/:id", h.DeleteBrand)
		priv.POST("/models", h.CreateModel)
		priv.PUT("/models/:id", h.UpdateModel)
		priv.DELETE("/models/:id", h.DeleteModel)
		priv.POST("/features", h.CreateFeature)

		// Listings
		priv.POST("/listings", h.CreateListing)
		priv.PUT("/listings/:id", h.UpdateListing)
		priv.DELETE("/listings/:id", h.DeleteListing)
		priv.POST("/listings/:id/mark_sold", h.MarkSold)
		priv.POST("/listings/:id/images", h.AddListingImage)
		priv.DELETE("/images/:id", h.RemoveListingImage)
		priv.PUT("/listings/:id/features/:featureID", h.AttachListingFeature)
		priv.DELETE("/listings/:id/features/:featureID", h.DetachListingFeature)

		// Favorites
		priv.POST("/favorites", h.AddFavorite)
		priv.GET("/favorites", h.ListFavorites)
		priv.GET("/favorites/:id", h.GetFavorite)
		priv.DELETE("/favorites/:id", h.RemoveFavorite)

		// Chats and messages
		priv.POST("/chats", h.CreateChat)
		priv.GET("/chats", h.ListChats)
		priv.GET("/chats/:id", h.GetChat)
		priv.DELETE("/chats/:id", h.DeleteChat)
		priv.GET("/chats/:id/messages", h.GetTranscript)
		priv.POST("/chats/:id/messages", h.SendMessage)
		priv.GET("/messages", h.ListMyMessages)
		priv.GET("/messages/:id", h.GetMessage)
		priv.DELETE("/messages/:id", h.DeleteMessage)

		// Reviews
		priv.POST("/reviews", h.CreateReview)
		priv.GET("/reviews", h.ListMyReviews)
		priv.PUT("/reviews/:id", h.UpdateReview)
		priv.DELETE("/reviews/:id", h.DeleteReview)

		// Notifications
		priv.GET("/notifications", h.ListNotifications)
		priv.POST("/notifications/read", h.MarkNotificationsRead)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
