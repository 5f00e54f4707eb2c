package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a request cannot obtain a token before its
// context is done.
var ErrRateLimited = errors.New("httpx: rate limit wait cancelled")

// RateLimitConfig defines the client-side rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Enabled reports whether the config describes an actual limit.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// KeyExtractor groups outgoing requests for rate limiting purposes.
type KeyExtractor func(*http.Request) string

// HostKeyExtractor limits per destination host.
func HostKeyExtractor(r *http.Request) string {
	return r.URL.Host
}

// rateLimiter manages rate limiters for different keys
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// getLimiter retrieves or creates a rate limiter for the given key
func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	// Fast path: limiter already exists
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	// Slow path: create new limiter
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)
	return actual.(*rate.Limiter)
}

// RateLimit delays outgoing requests so that no key exceeds the configured
// rate. Requests wait for a token rather than failing; if the request context
// ends first the round trip fails with ErrRateLimited. A disabled config
// returns a pass-through middleware.
func RateLimit(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	if !config.Enabled() {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}

	ratePerSecond := float64(config.RequestsPerWindow) / config.Window.Seconds()
	burst := max(config.Burst, 1)

	rl := &rateLimiter{
		rate:  rate.Limit(ratePerSecond),
		burst: burst,
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			limiter := rl.getLimiter(keyExtractor(r))

			if !limiter.Allow() {
				log := slogx.FromContext(r.Context())
				log.Debug("rate limit: waiting for token", "host", r.URL.Host)

				if err := limiter.Wait(r.Context()); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
				}
			}

			return next.RoundTrip(r)
		})
	}
}
