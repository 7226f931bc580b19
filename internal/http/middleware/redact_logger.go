// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds RedactingLogger, an access logger that scrubs personal
// data from query strings and header values before the line is written.
// Bodies are never logged. Marketplace traffic routinely carries emails,
// phone numbers, VINs and entity UUIDs in URLs, so the scrubbing runs on
// every request.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	redactUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// 17 characters, alphabet without I, O and Q.
	redactVIN = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	// Digits-only, so it cannot chew on the hex runs of a UUID. The +
	// sits outside the boundary: \b never matches between whitespace and
	// "+", both non-word, so a leading \b would strand the prefix.
	redactPhone = regexp.MustCompile(`\+?\b(?:\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrub replaces recognizable identifiers with typed placeholders. UUIDs
// and VINs go first; the phone pattern is the loosest and must run last.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = redactUUID.ReplaceAllString(s, "[REDACTED:id]")
	s = redactVIN.ReplaceAllString(s, "[REDACTED:vin]")
	s = redactEmail.ReplaceAllString(s, "[REDACTED:email]")
	s = redactPhone.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactOptions extends the built-in masked header set (Authorization,
// Cookie, Set-Cookie). Names are matched case-insensitively and their
// values replaced wholesale with "[REDACTED]".
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger logs one structured line per request: method, route,
// scrubbed query, scrubbed headers, status, size and latency. Level
// follows the status (warn for 4xx, error for 5xx). The request ID is
// taken from the response header, falling back to the request header.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := scrub(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		rid := c.Writer.Header().Get(requestIDHeader)
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
