package stream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lestrrat-go/option"
	"github.com/pkg/errors"

	"nhgate/internal/clock"
	"nhgate/internal/metrics"
	"nhgate/internal/repository/api/nicehash"
)

const (
	DefaultBuffer    = 64
	DefaultWriteWait = 10 * time.Second
)

type Option = option.Interface

type identDialer struct{}
type identLogger struct{}
type identMetrics struct{}
type identClock struct{}
type identBuffer struct{}

func WithDialer(d *websocket.Dialer) Option {
	return option.New(identDialer{}, d)
}

func WithLogger(l *slog.Logger) Option {
	return option.New(identLogger{}, l)
}

func WithMetrics(m *metrics.Collector) Option {
	return option.New(identMetrics{}, m)
}

// WithClock stamps received frames. Signing uses the signer's own clock.
func WithClock(c clock.Clock) Option {
	return option.New(identClock{}, c)
}

// WithBuffer sets how many frames may wait for the consumer before the
// receive loop blocks.
func WithBuffer(n int) Option {
	return option.New(identBuffer{}, n)
}

// Client opens signed streaming connections.
type Client struct {
	url     string
	signer  *nicehash.Signer
	dialer  *websocket.Dialer
	logger  *slog.Logger
	metrics *metrics.Collector
	clock   clock.Clock
	buffer  int
}

func New(url string, signer *nicehash.Signer, options ...Option) *Client {
	c := &Client{
		url:    url,
		signer: signer,
		dialer: websocket.DefaultDialer,
		logger: slog.Default(),
		clock:  clock.System{},
		buffer: DefaultBuffer,
	}

	for _, o := range options {
		switch o.Ident() {
		case identDialer{}:
			c.dialer = o.Value().(*websocket.Dialer)
		case identLogger{}:
			c.logger = o.Value().(*slog.Logger)
		case identMetrics{}:
			c.metrics = o.Value().(*metrics.Collector)
		case identClock{}:
			c.clock = o.Value().(clock.Clock)
		case identBuffer{}:
			c.buffer = o.Value().(int)
		}
	}

	return c
}

// Connect signs the handshake once and starts the receive loop.
func (c *Client) Connect(ctx context.Context) (*Conn, error) {
	if c.url == "" {
		return nil, &nicehash.ConfigError{Field: "stream-url", Reason: "is required"}
	}

	env, err := c.signer.SignChannel()
	if err != nil {
		return nil, err
	}

	ws, resp, err := c.dialer.DialContext(ctx, c.url, env.Header())
	if err != nil {
		if resp != nil {
			return nil, handshakeError(resp)
		}
		return nil, &nicehash.TransportError{Method: nicehash.ChannelMethod, URL: c.url, Err: errors.Wrap(err, "dial")}
	}

	c.logger.InfoContext(ctx, "stream connected", "url", c.url, "requestId", env.RequestID)

	conn := newConn(ws, c.buffer, c.clock, c.logger, c.metrics)
	go conn.readLoop()

	return conn, nil
}

// handshakeError reports a rejected upgrade the way REST responses are
// classified.
func handshakeError(resp *http.Response) *nicehash.APIError {
	var body []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		body, _ = io.ReadAll(resp.Body)
	}
	return nicehash.ResponseError(resp.StatusCode, resp.Status, body)
}
