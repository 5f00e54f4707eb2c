package storefrontsdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/memory"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// DefaultTimeout bounds every HTTP call made by the SDK unless WithTimeout or
// WithHTTPClient says otherwise.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the storefront API.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Store persists the session between runs. Every Session created by this
	// client reads and writes the same store.
	Store store.Store
}

// Option configures an SDKClient.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	store      store.Store
	timeout    time.Duration
	rateLimit  httpx.RateLimitConfig
	transport  http.RoundTripper
}

// WithHTTPClient uses client as is. The SDK transport middleware is not
// installed on a caller supplied client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithTransport sets the base RoundTripper the SDK middleware wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithStore(st store.Store) Option {
	return func(o *options) { o.store = st }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit throttles outgoing requests per host.
func WithRateLimit(cfg httpx.RateLimitConfig) Option {
	return func(o *options) { o.rateLimit = cfg }
}

// NewSDKClient creates a new storefront API client. Without WithStore the
// session lives in memory only.
func NewSDKClient(baseURL string, opts ...Option) *SDKClient {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slogx.Discard()
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: httpx.Chain(o.transport,
				httpx.RequestID(o.logger),
				httpx.Logging(o.logger),
				httpx.RateLimit(o.rateLimit, httpx.HostKeyExtractor),
			),
		}
	}

	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: httpClient,
		Logger:     o.logger,
		Store:      o.store,
	}
}
