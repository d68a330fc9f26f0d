package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/httputil"
)

// RateLimiter hands out one token bucket per client IP. Buckets of clients
// idle for longer than the idle TTL are evicted.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *ttlcache.Cache[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second per IP
// with the given burst. Call Stop to end the eviction loop.
func NewRateLimiter(rps float64, burst int, idle time.Duration, logger *slog.Logger) *RateLimiter {
	if idle <= 0 {
		idle = 3 * time.Minute
	}
	rl := &RateLimiter{
		visitors: ttlcache.New[string, *rate.Limiter](ttlcache.WithTTL[string, *rate.Limiter](idle)),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
	go rl.visitors.Start()
	return rl
}

// Stop ends the background eviction loop.
func (rl *RateLimiter) Stop() {
	rl.visitors.Stop()
}

// limiter returns the bucket for ip, creating it on first sight. Get touches
// the entry so active clients are never evicted.
func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if item := rl.visitors.Get(ip); item != nil {
		return item.Value()
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors.Set(ip, l, ttlcache.DefaultTTL)
	return l
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	return rl.visitors.Len()
}

// Handler rejects requests over the limit with 429.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.limiter(ip).Allow() {
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{Data: httputil.ErrorData{
				Message: "Too many requests.",
				Code:    "RATE_LIMITED",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first valid address in X-Forwarded-For, then
// X-Real-IP, then RemoteAddr without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
