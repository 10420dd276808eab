package nicehash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lestrrat-go/option"

	"nhgate/internal/cache"
	"nhgate/internal/clock"
	"nhgate/internal/metrics"
)

type Option = option.Interface

type identHTTPClient struct{}
type identCache struct{}
type identClock struct{}
type identNonceSource struct{}
type identMetrics struct{}
type identLogger struct{}
type identTimeout struct{}

// WithHTTPClient replaces the client's connection pool.
func WithHTTPClient(cli *http.Client) Option {
	return option.New(identHTTPClient{}, cli)
}

// WithCache sets the response cache used by cacheable operations.
func WithCache(c *cache.Cache[RawMessage]) Option {
	return option.New(identCache{}, c)
}

// WithClock sets the clock used for signing timestamps and default
// timestamp parameters.
func WithClock(c clock.Clock) Option {
	return option.New(identClock{}, c)
}

func WithNonceSource(n NonceSource) Option {
	return option.New(identNonceSource{}, n)
}

func WithMetrics(m *metrics.Collector) Option {
	return option.New(identMetrics{}, m)
}

func WithLogger(l *slog.Logger) Option {
	return option.New(identLogger{}, l)
}

// WithTimeout bounds every request. Ignored when WithHTTPClient is given.
func WithTimeout(d time.Duration) Option {
	return option.New(identTimeout{}, d)
}

type settings struct {
	cli     *http.Client
	cache   *cache.Cache[RawMessage]
	clock   clock.Clock
	nonces  NonceSource
	metrics *metrics.Collector
	logger  *slog.Logger
}

const DefaultTimeout = 30 * time.Second

func newSettings(options []Option) settings {
	s := settings{
		clock:  clock.System{},
		nonces: UUIDSource{},
		logger: slog.Default(),
	}
	timeout := DefaultTimeout

	for _, o := range options {
		switch o.Ident() {
		case identHTTPClient{}:
			s.cli = o.Value().(*http.Client)
		case identCache{}:
			s.cache = o.Value().(*cache.Cache[RawMessage])
		case identClock{}:
			s.clock = o.Value().(clock.Clock)
		case identNonceSource{}:
			s.nonces = o.Value().(NonceSource)
		case identMetrics{}:
			s.metrics = o.Value().(*metrics.Collector)
		case identLogger{}:
			s.logger = o.Value().(*slog.Logger)
		case identTimeout{}:
			timeout = o.Value().(time.Duration)
		}
	}

	if s.cli == nil {
		s.cli = &http.Client{Timeout: timeout}
	}
	if s.cache == nil {
		s.cache = cache.New[RawMessage](cache.DefaultTTL, s.clock)
	}

	return s
}
