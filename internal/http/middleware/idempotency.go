// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file handles the Idempotency-Key header on unsafe methods. The
// middleware validates and stashes the key and, given a lookup, flags
// requests that would replay an already-completed operation. Persistence
// stays with the caller: handlers decide how to serve a replay, the
// middleware only annotates the context.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients repeat across retries
// of the same semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys for idempotency state, read through the accessors below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// defaultKeyPattern accepts RFC 7230 token characters plus a few safe
// extras, matching what UUIDs and ULIDs serialize to.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator, and whether one is present. Handlers read the key
// through this accessor, never from the header.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup matched a previously completed
// request for this (user, scope, key).
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyScope is the deduplication scope: method plus route template.
// Scoping by template keeps path parameters out, so one client key can be
// reused across different endpoints without colliding.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.FullPath()
}

// IdempotencyOptions tunes header validation. TTL is not enforced here;
// the lookup owns the freshness window.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; values <= 0 default to 200.
	MaxLen int
	// Pattern restricts the accepted characters; nil uses the default
	// token pattern.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a stored, still-valid result exists
// for (userID, scope, key) at now. Lookup failures must not block the
// request; return an error only for diagnostics.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present
// and stashes it for handlers. A malformed key is rejected with 400 before
// any handler runs; an absent header makes the middleware a no-op. When
// the lookup recognizes a replay, the replay and rate-bypass flags are set
// so the handler can short-circuit and the rate limiter lets the retry
// through.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			exists, _ := lookup(c.Request.Context(), userIDFromCtx(c), IdempotencyScope(c), key, time.Now().UTC())
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx reads the authenticated user set by the auth middleware.
// Anonymous requests share one scope.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anonymous"
}
