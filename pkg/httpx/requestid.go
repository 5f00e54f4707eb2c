package httpx

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/oklog/ulid/v2"
)

const HeaderRequestID = "X-Request-ID"

// generator safely generates ULIDs concurrently using a monotonic source.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var (
	globalOnce sync.Once
	global     *generator
)

// NewRequestID returns a lexicographically sortable ULID string using the
// current time in UTC.
func NewRequestID() string {
	globalOnce.Do(func() {
		global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
	})

	global.mu.Lock()
	defer global.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), global.entropy).String()
}

// RequestID stamps each request with an X-Request-ID header (keeping one the
// caller already set) and attaches a logger carrying it to the request
// context for the middleware further down the chain.
func RequestID(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			reqID := r.Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = NewRequestID()
			}

			ctx := slogx.WithContext(r.Context(), base.With("req_id", reqID))

			// RoundTrippers must not modify the caller's request
			r = r.Clone(ctx)
			r.Header.Set(HeaderRequestID, reqID)

			return next.RoundTrip(r)
		})
	}
}
