package nicehash

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"nhgate/internal/cache"
	"nhgate/internal/clock"
	"nhgate/internal/metrics"
)

const DefaultHost = "https://api2.nicehash.com"

// Request describes one call before it is signed and sent.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   any
}

// URL joins host and path, adding the query only when there is one.
func (r Request) URL(host string) string {
	u := host + r.Path
	if r.Query != "" {
		u += "?" + r.Query
	}
	return u
}

// PublicClient issues unauthenticated requests. It is safe for concurrent
// use; each call blocks until the response is classified.
type PublicClient struct {
	host    string
	cli     *http.Client
	cache   *cache.Cache[RawMessage]
	clock   clock.Clock
	nonces  NonceSource
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewPublic(host string, options ...Option) *PublicClient {
	s := newSettings(options)
	return newPublic(host, s)
}

func newPublic(host string, s settings) *PublicClient {
	if host == "" {
		host = DefaultHost
	}

	return &PublicClient{
		host:    strings.TrimSuffix(host, "/"),
		cli:     s.cli,
		cache:   s.cache,
		clock:   s.clock,
		nonces:  s.nonces,
		metrics: s.metrics,
		logger:  s.logger,
	}
}

func (c *PublicClient) Host() string {
	return c.host
}

// Do sends req without authentication and decodes a successful response into
// out. out may be nil or a *RawMessage.
func (c *PublicClient) Do(ctx context.Context, req Request, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}

	header := make(http.Header)
	header.Set(HeaderContentType, ContentTypeJSON)

	raw, err := c.send(ctx, req, body, header)
	if err != nil {
		return err
	}

	return decodeInto(raw, out)
}

// send dispatches one request and classifies the response.
func (c *PublicClient) send(ctx context.Context, req Request, body []byte, header http.Header) (RawMessage, error) {
	url := req.URL(c.host)

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, rdr)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: url, Err: err}
	}
	httpReq.Header = header

	c.logger.DebugContext(ctx, "dispatching request", "method", req.Method, "url", url)

	start := time.Now()
	resp, err := c.cli.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(req.Method, req.Path, 0, time.Since(start))
		return nil, &TransportError{Method: req.Method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(req.Method, req.Path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: url, Err: errors.Wrap(err, "read body")}
	}

	return classify(resp.StatusCode, resp.Status, data)
}

// classify maps a status and body to a value or an *APIError.
func classify(status int, statusLine string, body []byte) (RawMessage, error) {
	if status != http.StatusOK {
		return nil, ResponseError(status, statusLine, body)
	}

	if !json.Valid(body) {
		return nil, &APIError{Status: status, Reason: "invalid JSON response", Body: body}
	}

	return RawMessage(body), nil
}

// ResponseError builds the error for a non-200 response. statusLine is
// http.Response.Status.
func ResponseError(status int, statusLine string, body []byte) *APIError {
	reason := reasonPhrase(status, statusLine)
	if len(body) > 0 {
		return &APIError{Status: status, Reason: reason, Body: body}
	}
	return &APIError{Status: status, Reason: reason}
}

// reasonPhrase extracts "Not Found" from "404 Not Found".
func reasonPhrase(status int, statusLine string) string {
	if r := strings.TrimPrefix(statusLine, strconv.Itoa(status)+" "); r != "" && r != statusLine {
		return r
	}
	return http.StatusText(status)
}

// cached serves key from the response cache, dispatching req on a miss.
func (c *PublicClient) cached(ctx context.Context, key string, req Request) (RawMessage, error) {
	raw, hit, err := c.cache.GetOrFetch(key, func() (RawMessage, error) {
		var out RawMessage
		if err := c.Do(ctx, req, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.RecordCache(key, hit)

	return raw, nil
}

func (c *PublicClient) call(ctx context.Context, method, path string, params, body any) (RawMessage, error) {
	req, err := c.newRequest(method, path, params, body)
	if err != nil {
		return nil, err
	}

	var out RawMessage
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}

	return out, nil
}
