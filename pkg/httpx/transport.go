// Package httpx provides client-side http.RoundTripper middleware: request
// IDs, structured request logging and rate limiting.
package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with mws. The first middleware is the outermost, so it sees
// the request first and the response last. A nil base means
// http.DefaultTransport.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// Logging logs every outgoing request once it completes. The logger is taken
// from the request context when one is attached (see RequestID), otherwise
// base is used.
func Logging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			logger := base
			if l, ok := slogx.Lookup(r.Context()); ok {
				logger = l
			}
			logger = logger.With(
				"method", r.Method,
				"host", r.URL.Host,
				"path", r.URL.Path,
			)

			resp, err := next.RoundTrip(r)
			duration := time.Since(start).Milliseconds()
			if err != nil {
				logger.Warn("http_request_failed",
					"duration_ms", duration,
					"error", err,
				)
				return nil, err
			}

			logger.Debug("http_request",
				"status", resp.StatusCode,
				"duration_ms", duration,
			)
			return resp, nil
		})
	}
}
