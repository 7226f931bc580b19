package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/listings", nil)
	c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	if key := KeyByUserOrIP()(c); key != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", key)
	}

	c.Set(CtxKeyUserID, "u123")
	if key := KeyByUserOrIP()(c); key != "user:u123" {
		t.Fatalf("authenticated key = %q", key)
	}
}

func TestRateLimiter_BucketReuseAndBurstCoercion(t *testing.T) {
	rl := NewRateLimiter(2.0, 0, KeyByUserOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst not coerced, got %d", rl.burst)
	}

	lim := rl.take("k1")
	if lim == nil {
		t.Fatal("expected a limiter")
	}
	if rl.take("k1") != lim {
		t.Fatal("same key must reuse the same bucket")
	}
	if rl.take("k2") == lim {
		t.Fatal("distinct keys must not share a bucket")
	}
}

func TestRateLimiter_IdleEviction(t *testing.T) {
	rl := NewRateLimiter(1.0, 1, KeyByUserOrIP())

	rl.mu.Lock()
	rl.buckets["stale"] = &bucket{
		limiter:  rate.NewLimiter(1, 1),
		lastSeen: time.Now().Add(-2 * bucketTTL),
	}
	rl.lookups = gcEvery - 1 // next take() crosses the GC threshold
	rl.mu.Unlock()

	_ = rl.take("fresh")

	rl.mu.Lock()
	_, stale := rl.buckets["stale"]
	_, fresh := rl.buckets["fresh"]
	rl.mu.Unlock()

	if stale {
		t.Fatal("idle bucket survived eviction")
	}
	if !fresh {
		t.Fatal("requested bucket was not created")
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if IsRateBypass(c) {
		t.Fatal("bypass must default to false")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatal("bypass flag not honored")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatal("non-bool value must read as false")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// burst 1, slow refill: the second immediate request must be rejected.
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header(requestIDHeader, "rid-1"); c.Next() })
	r.Use(rl.Handler())
	r.GET("/listings", func(c *gin.Context) { c.String(http.StatusOK, "[]") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After = %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "too_many_requests" || body["request_id"] != "rid-1" {
		t.Fatalf("unexpected envelope: %v", body)
	}

	// Idempotent replays skip the limiter entirely.
	replay := gin.New()
	replay.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() })
	replay.Use(rl.Handler())
	replay.GET("/listings", func(c *gin.Context) { c.String(http.StatusOK, "[]") })

	w = httptest.NewRecorder()
	replay.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("bypassed replay: %d", w.Code)
	}
}
