package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"nhgate/internal/clock"
	"nhgate/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrClosed is returned by writes on a closed connection.
var ErrClosed = errors.New("stream: connection closed")

// Conn is one signed streaming channel. Frames arrive on Frames in the order
// they were received. Writes may come from any goroutine.
type Conn struct {
	ws      *websocket.Conn
	router  *Router
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Collector

	frames chan Frame
	done   chan struct{}

	wmu       sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once

	emu sync.Mutex
	err error
}

func newConn(ws *websocket.Conn, buffer int, c clock.Clock, logger *slog.Logger, m *metrics.Collector) *Conn {
	return &Conn{
		ws:      ws,
		router:  NewRouter(),
		clock:   c,
		logger:  logger,
		metrics: m,
		frames:  make(chan Frame, buffer),
		done:    make(chan struct{}),
	}
}

// Frames is closed when the connection ends. Heartbeats never appear on it.
func (c *Conn) Frames() <-chan Frame {
	return c.frames
}

// Err returns why the frame channel ended, or nil when Close ended it.
func (c *Conn) Err() error {
	c.emu.Lock()
	defer c.emu.Unlock()
	return c.err
}

func (c *Conn) Router() *Router {
	return c.router
}

// Close tears the channel down without waiting for unsubscribe
// acknowledgements.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		close(c.done)

		c.wmu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wmu.Unlock()

		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.frames)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closing.Load() {
				c.emu.Lock()
				c.err = errors.Wrap(err, "read frame")
				c.emu.Unlock()
			}
			return
		}

		f := ParseFrame(data, c.clock.Now())
		if f.Heartbeat() {
			c.metrics.RecordHeartbeat()
			continue
		}

		if err := c.router.Observe(f); err != nil {
			c.logger.Warn("unexpected stream frame", "tag", f.Tag, "error", err)
		}
		c.metrics.RecordFrame(f.Tag)

		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) send(msg any) error {
	if c.closing.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal control message")
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(DefaultWriteWait)); err != nil {
		return errors.Wrap(err, "set write deadline")
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "write control message")
	}

	return nil
}

type control struct {
	M string `json:"m"`
	R int    `json:"r,omitempty"`
}

// Subscribe starts s. Candlesticks need a resolution and go through
// SubscribeCandlesticks.
func (c *Conn) Subscribe(s Stream) error {
	if !s.Valid() {
		return errors.Errorf("stream: unknown stream %q", s)
	}
	if s == Candlesticks {
		return errors.New("stream: candlesticks need a resolution")
	}

	// the snapshot may arrive before send returns
	c.router.Subscribed(s)
	if err := c.send(control{M: s.subscribeTag()}); err != nil {
		c.router.Unsubscribed(s)
		return err
	}

	return nil
}

// SubscribeCandlesticks accepts resolutions of 1, 60 and 1440 minutes. Only
// one candlestick subscription is active at a time.
func (c *Conn) SubscribeCandlesticks(resolution int) error {
	switch resolution {
	case 1, 60, 1440:
	default:
		return errors.Errorf("stream: unsupported candlestick resolution %d", resolution)
	}

	c.router.Subscribed(Candlesticks)
	if err := c.send(control{M: Candlesticks.subscribeTag(), R: resolution}); err != nil {
		c.router.Unsubscribed(Candlesticks)
		return err
	}

	return nil
}

// Unsubscribe is best effort: frames already in flight may still arrive.
func (c *Conn) Unsubscribe(s Stream) error {
	if !s.Valid() {
		return errors.Errorf("stream: unknown stream %q", s)
	}

	c.router.Unsubscribed(s)
	return c.send(control{M: s.unsubscribeTag()})
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

type orderCommand struct {
	M              string `json:"m"`
	I              string `json:"i"`
	Side           string `json:"sd"`
	Type           string `json:"tp"`
	Quantity       string `json:"qt,omitempty"`
	Price          string `json:"pr,omitempty"`
	SecQuantity    string `json:"sqt,omitempty"`
	MinQuantity    string `json:"mqt,omitempty"`
	MinSecQuantity string `json:"msqt,omitempty"`
}

// CreateLimitOrder sends o.cr. id comes back on the reply frame.
func (c *Conn) CreateLimitOrder(id, side string, quantity, price decimal.Decimal) error {
	return c.send(orderCommand{
		M:        "o.cr",
		I:        id,
		Side:     side,
		Type:     "LIMIT",
		Quantity: quantity.String(),
		Price:    price.String(),
	})
}

// CreateMarketBuy spends quote of the secondary currency. minBase may be nil.
func (c *Conn) CreateMarketBuy(id string, quote decimal.Decimal, minBase *decimal.Decimal) error {
	cmd := orderCommand{
		M:           "o.cr",
		I:           id,
		Side:        SideBuy,
		Type:        "MARKET",
		SecQuantity: quote.String(),
	}
	if minBase != nil {
		cmd.MinQuantity = minBase.String()
	}
	return c.send(cmd)
}

func (c *Conn) CreateMarketSell(id string, quantity decimal.Decimal, minQuote *decimal.Decimal) error {
	cmd := orderCommand{
		M:        "o.cr",
		I:        id,
		Side:     SideSell,
		Type:     "MARKET",
		Quantity: quantity.String(),
	}
	if minQuote != nil {
		cmd.MinSecQuantity = minQuote.String()
	}
	return c.send(cmd)
}

func (c *Conn) CancelOrder(id, orderID string) error {
	return c.send(struct {
		M   string `json:"m"`
		I   string `json:"i"`
		OID string `json:"oid"`
	}{"o.ca", id, orderID})
}

// CancelAll cancels every order, or only one side when side is set.
func (c *Conn) CancelAll(id, side string) error {
	return c.send(struct {
		M string `json:"m"`
		I string `json:"i"`
		S string `json:"s,omitempty"`
	}{"o.ca.all", id, side})
}

// Run hands frames to handle one at a time until the connection ends, ctx is
// done or handle fails. The connection is closed on return.
func (c *Conn) Run(ctx context.Context, handle func(context.Context, Frame) error) error {
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()
	defer c.Close()

	for f := range c.frames {
		if err := handle(ctx, f); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Err()
}
