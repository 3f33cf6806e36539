package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

type RateLimitConfig struct {
	Burst         int
	RefillPerMin  int
	MaxEntries    int           // sweep early once this many keys are tracked
	SweepInterval time.Duration // default 1m
	IdleTTL       time.Duration // default 15m
	TrustProxy    bool          // resolve IP from proxy headers when true

	// KeyFunc picks the bucket of a request, defaults to the client IP
	KeyFunc func(*http.Request) string
}

// OwnerOrIP keys buckets by the resolved owner, falling back to the client
// IP. Use it behind RequireOwner.
func OwnerOrIP(trustProxy bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if owner := identity.OwnerFrom(r.Context()); owner != "" {
			return "owner:" + owner
		}
		return "ip:" + utils.ClientIP(r, trustProxy)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiter keeps one token bucket per key.
type limiter struct {
	cfg   RateLimitConfig
	limit rate.Limit

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerMin = max(cfg.RefillPerMin, 1)
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.KeyFunc == nil {
		trustProxy := cfg.TrustProxy
		cfg.KeyFunc = func(r *http.Request) string { return utils.ClientIP(r, trustProxy) }
	}
	return &limiter{
		cfg:       cfg,
		limit:     rate.Limit(float64(cfg.RefillPerMin) / 60.0),
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// allow spends one token of key at now. When refused, retryAfter is the
// number of whole seconds until a token is available.
func (l *limiter) allow(key string, now time.Time) (ok bool, remaining int, retryAfter int) {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.visitors) >= l.cfg.MaxEntries) {
		l.sweepLocked(now)
	}
	v, found := l.visitors[key]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	if v.limiter.AllowN(now, 1) {
		return true, int(math.Max(0, math.Floor(v.limiter.TokensAt(now)))), 0
	}

	missing := 1 - v.limiter.TokensAt(now)
	retryAfter = int(math.Ceil(missing / float64(l.limit)))
	return false, 0, max(retryAfter, 1)
}

func (l *limiter) sweepLocked(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.IdleTTL {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

// RateLimit applies a token bucket per key. Rejected requests get 429 with
// Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.allow(l.cfg.KeyFunc(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "rate_limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
