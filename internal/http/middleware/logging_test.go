package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/listings", func(c *gin.Context) {
		if v, ok := c.Get(requestIDKey); !ok || v == "" {
			t.Fatal("requestID missing from context")
		}
		c.String(http.StatusOK, "[]")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated %s header", requestIDHeader)
	}

	// Client-supplied IDs survive, whatever the header casing.
	for _, hdr := range []string{requestIDHeader, strings.ToLower(requestIDHeader)} {
		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set(hdr, "trace-42")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "trace-42" {
			t.Fatalf("header %q: propagated id = %q", hdr, got)
		}
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }

func TestLogger_LevelsAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.GET("/listings/:id", func(c *gin.Context) { c.String(http.StatusOK, "{}") })
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errSentinel{})
		c.Status(http.StatusBadRequest)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/listings/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	logs := buf.String()
	// 200 logs info with the route template, not the raw path.
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/listings/:id"`) {
		t.Fatalf("expected info log with route template:\n%s", logs)
	}
	// 404 logs warn with the raw path fallback.
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/missing"`) {
		t.Fatalf("expected warn log with raw path:\n%s", logs)
	}
	// Collected gin errors force error level even for a 4xx.
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "boom") {
		t.Fatalf("expected error log carrying the gin error:\n%s", logs)
	}
}

func TestRecovery_PanicToJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Recovery -> %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log:\n%s", buf.String())
	}
}

func TestRecovery_PanicAfterWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	// The body was already flushed; no JSON envelope may be appended.
	if strings.Contains(w.Body.String(), "internal error") {
		t.Fatalf("error body written after flush: %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log:\n%s", buf.String())
	}
}

func TestLoggerFrom_RequestScopedAndFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Without Logger() the fallback has no request fields.
	buf := captureLogger(t)
	r := gin.New()
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("bare")
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))
	if out := buf.String(); !strings.Contains(out, `"message":"bare"`) || strings.Contains(out, `"request_id"`) {
		t.Fatalf("fallback logger wrong:\n%s", out)
	}

	// With Logger() installed the request id rides along.
	buf = captureLogger(t)
	r = gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scoped")
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))
	if out := buf.String(); !strings.Contains(out, `"message":"scoped"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("request-scoped logger wrong:\n%s", out)
	}
}

func Test_asString_and_truncate(t *testing.T) {
	if asString("x") != "x" || asString(123) != "" {
		t.Fatal("asString failed")
	}
	if truncate("hello", 10) != "hello" {
		t.Fatal("truncate no-op failed")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate = %q", got)
	}
	if truncate("abc", 0) != "abc" {
		t.Fatal("max<=0 must disable truncation")
	}
}
