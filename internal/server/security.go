package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/logger"
)

// isPublicPath reports whether path is served without an API key
func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthMiddleware requires the X-API-Key header on every non-public path
func AuthMiddleware(apiKey string, trustedProxies []string, detector *ActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				detector.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ActivityDetector counts requests and failed logins per client IP over a fixed window
type ActivityDetector struct {
	window          time.Duration
	failedAuthAlert int
	maxRequests     int

	mu          sync.Mutex
	failedAuth  map[string]int
	requests    map[string]int
	windowStart time.Time
}

// NewActivityDetector creates a detector with the default window and limits
func NewActivityDetector() *ActivityDetector {
	return &ActivityDetector{
		window:          DefaultDetectorWindow,
		failedAuthAlert: DefaultFailedAuthAlert,
		maxRequests:     DefaultMaxRequests,
		failedAuth:      make(map[string]int),
		requests:        make(map[string]int),
		windowStart:     time.Now(),
	}
}

// RecordFailedAuth counts a failed authentication and alerts past the threshold
func (d *ActivityDetector) RecordFailedAuth(ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rollWindow()
	d.failedAuth[ip]++
	if n := d.failedAuth[ip]; n >= d.failedAuthAlert {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", n)
	}
}

// Allow counts a request and reports whether ip is still under the limit
func (d *ActivityDetector) Allow(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rollWindow()
	d.requests[ip]++
	n := d.requests[ip]
	if n <= d.maxRequests {
		return true
	}
	if n%highRateLogEvery == 0 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "count", n, "window", d.window)
	}
	return false
}

// rollWindow starts a new window once the current one has passed. Callers hold mu.
func (d *ActivityDetector) rollWindow() {
	if time.Since(d.windowStart) <= d.window {
		return
	}
	d.requests = make(map[string]int)
	d.failedAuth = make(map[string]int)
	d.windowStart = time.Now()
}

// RateLimitMiddleware rejects clients above the detector's request limit
func RateLimitMiddleware(trustedProxies []string, detector *ActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !detector.Allow(extractIP(r, trustedProxies)) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIP returns the client address. X-Forwarded-For is only honored
// when the direct peer is a trusted proxy; its rightmost entry is used.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	for _, proxy := range trustedProxies {
		if proxy != remoteIP {
			continue
		}
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			return strings.TrimSpace(hops[len(hops)-1])
		}
		break
	}
	return remoteIP
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set(HeaderContentType, HeaderValueNoSniff)
			h.Set(HeaderFrameOptions, HeaderValueDeny)
			h.Set(HeaderReferrerPolicy, HeaderValueNoReferrer)
			next.ServeHTTP(w, r)
		})
	}
}
