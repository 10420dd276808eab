package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"nhgate/internal/clock"
	"nhgate/internal/repository/api/nicehash"
)

var testCreds = nicehash.Credentials{
	Key:            "4ebd366d-76f4-4400-a3b6-e51515d054d6",
	Secret:         "fd8a1652-728b-42fe-82b8-f623e56da8850750f5bf-ce66-4ca7-8b84-93651abc723b",
	OrganizationID: "da41b3bc-3d0b-4226-b7ea-aee73f94a518",
}

func TestParseFrame(t *testing.T) {
	now := time.Unix(100, 0)
	tests := []struct {
		raw    string
		tag    string
		stream Stream
		kind   Kind
	}{
		{`{"m":"o.s","o":[]}`, "o.s", Orders, KindSnapshot},
		{`{"m":"ob.u","b":[]}`, "ob.u", OrderBook, KindUpdate},
		{`{"m":"c.s"}`, "c.s", Candlesticks, KindSnapshot},
		{`{"m":"mt.u"}`, "mt.u", MyTrades, KindUpdate},
		{`{"m":"m.s"}`, "m.s", Trades, KindSnapshot},
		{`{"m":"o.u","i":"x","o":[1]}`, "o.u", Orders, KindUpdate},
		{`{"m":"heartbeat"}`, "heartbeat", "", KindHeartbeat},
		{`{"type":"heartbeat","time":1}`, "", "", KindHeartbeat},
		{`{"m":"o.cr","i":"42"}`, "o.cr", "", KindReply},
		{`{"m":"o.ca.all","i":"43"}`, "o.ca.all", "", KindReply},
		{`{"m":"something.else"}`, "something.else", "", KindUnknown},
		{`not json`, "", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := ParseFrame([]byte(tt.raw), now)
			assert.Equal(t, tt.tag, f.Tag)
			assert.Equal(t, tt.stream, f.Stream)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.raw, string(f.Raw))
			assert.Equal(t, now, f.Received)
		})
	}
}

func TestStreamTags(t *testing.T) {
	for _, s := range Streams() {
		assert.True(t, s.Valid())
		assert.NotEqual(t, s.SnapshotTag(), s.UpdateTag())
	}
	assert.False(t, Stream("nope").Valid())
}

func TestRouterOrdering(t *testing.T) {
	r := NewRouter()
	snap := Frame{Stream: Orders, Kind: KindSnapshot}
	upd := Frame{Stream: Orders, Kind: KindUpdate}

	require.ErrorIs(t, r.Observe(upd), ErrOutOfOrder)
	require.ErrorIs(t, r.Observe(snap), ErrOutOfOrder)

	r.Subscribed(Orders)
	require.ErrorIs(t, r.Observe(upd), ErrOutOfOrder, "update before snapshot")

	require.NoError(t, r.Observe(snap))
	assert.True(t, r.Live(Orders))
	require.NoError(t, r.Observe(upd))
	require.NoError(t, r.Observe(upd))

	// other streams keep their own sequence
	require.ErrorIs(t, r.Observe(Frame{Stream: Trades, Kind: KindUpdate}), ErrOutOfOrder)

	r.Unsubscribed(Orders)
	assert.False(t, r.Live(Orders))

	require.NoError(t, r.Observe(Frame{Tag: "x"}))
}

type wsServer struct {
	*httptest.Server
	received chan []byte
}

// newWSServer verifies the channel signature, then runs script against the
// accepted connection.
func newWSServer(t *testing.T, script func(ws *websocket.Conn)) *wsServer {
	s := &wsServer{received: make(chan []byte, 16)}
	upgrader := websocket.Upgrader{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts, _ := strconv.ParseInt(r.Header.Get(nicehash.HeaderTime), 10, 64)
		msg := nicehash.CanonicalMessage(testCreds, ts, r.Header.Get(nicehash.HeaderNonce), nicehash.ChannelMethod, nicehash.ChannelPath, "", nil)
		if r.Header.Get(nicehash.HeaderAuth) != testCreds.Key+":"+nicehash.Digest(testCreds.Secret, msg) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_id":"auth"}`))
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer ws.Close()

		script(ws)
	}))

	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func newTestClient(t *testing.T, url string, creds nicehash.Credentials) *Client {
	signer, err := nicehash.NewSigner(creds, clock.System{}, nil)
	require.NoError(t, err)
	return New(url, signer)
}

func TestSubscribeSnapshotUpdates(t *testing.T) {
	var srv *wsServer
	srv = newWSServer(t, func(ws *websocket.Conn) {
		_, sub, err := ws.ReadMessage()
		if err != nil {
			return
		}
		srv.received <- sub

		for _, f := range []string{
			`{"m":"heartbeat"}`,
			`{"m":"o.s","o":[1]}`,
			`{"type":"heartbeat"}`,
			`{"m":"o.u","o":[2]}`,
			`{"m":"o.u","i":"7","o":[3]}`,
		} {
			_ = ws.WriteMessage(websocket.TextMessage, []byte(f))
		}

		_, _, _ = ws.ReadMessage()
	})
	defer srv.Close()

	conn, err := newTestClient(t, srv.url(), testCreds).Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, conn.Subscribe(Orders))
	assert.JSONEq(t, `{"m":"subscribe.orders"}`, string(<-srv.received))

	var got []Frame
	for f := range conn.Frames() {
		got = append(got, f)
		if len(got) == 3 {
			require.NoError(t, conn.Close())
		}
	}

	require.Len(t, got, 3)
	assert.Equal(t, "o.s", got[0].Tag)
	assert.Equal(t, "o.u", got[1].Tag)
	assert.Equal(t, "o.u", got[2].Tag)
	assert.Equal(t, int64(3), gjson.GetBytes(got[2].Raw, "o.0").Int())
	for _, f := range got {
		assert.Equal(t, Orders, f.Stream)
	}
	assert.True(t, conn.Router().Live(Orders))
	assert.NoError(t, conn.Err(), "closed by caller")
}

func TestControlMessages(t *testing.T) {
	var srv *wsServer
	srv = newWSServer(t, func(ws *websocket.Conn) {
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			srv.received <- msg
		}
	})
	defer srv.Close()

	conn, err := newTestClient(t, srv.url(), testCreds).Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	minBase := decimal.RequireFromString("0.5")

	require.NoError(t, conn.SubscribeCandlesticks(60))
	require.NoError(t, conn.Unsubscribe(MyTrades))
	require.NoError(t, conn.CreateLimitOrder("7", SideBuy, decimal.RequireFromString("1.25"), decimal.RequireFromString("0.001")))
	require.NoError(t, conn.CreateMarketBuy("8", decimal.RequireFromString("10"), &minBase))
	require.NoError(t, conn.CancelOrder("9", "oid-1"))
	require.NoError(t, conn.CancelAll("10", ""))

	want := []string{
		`{"m":"subscribe.candlesticks","r":60}`,
		`{"m":"unsubscribe.mytrades"}`,
		`{"m":"o.cr","i":"7","sd":"BUY","tp":"LIMIT","qt":"1.25","pr":"0.001"}`,
		`{"m":"o.cr","i":"8","sd":"BUY","tp":"MARKET","sqt":"10","mqt":"0.5"}`,
		`{"m":"o.ca","i":"9","oid":"oid-1"}`,
		`{"m":"o.ca.all","i":"10"}`,
	}
	for _, w := range want {
		select {
		case got := <-srv.received:
			assert.JSONEq(t, w, string(got))
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", w)
		}
	}
}

func TestSubscribeValidation(t *testing.T) {
	srv := newWSServer(t, func(ws *websocket.Conn) {
		_, _, _ = ws.ReadMessage()
	})
	defer srv.Close()

	conn, err := newTestClient(t, srv.url(), testCreds).Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	assert.Error(t, conn.Subscribe(Candlesticks))
	assert.Error(t, conn.Subscribe("nope"))
	assert.Error(t, conn.SubscribeCandlesticks(5))
}

func TestRemoteCloseSurfacesError(t *testing.T) {
	srv := newWSServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"m":"heartbeat"}`))
	})
	defer srv.Close()

	conn, err := newTestClient(t, srv.url(), testCreds).Connect(context.Background())
	require.NoError(t, err)

	err = conn.Run(context.Background(), func(context.Context, Frame) error {
		t.Error("heartbeat forwarded")
		return nil
	})
	require.Error(t, err)
	assert.Error(t, conn.Err())
	assert.ErrorIs(t, conn.Subscribe(Orders), ErrClosed)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := newWSServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"m":"ob.s"}`))
		_, _, _ = ws.ReadMessage()
	})
	defer srv.Close()

	conn, err := newTestClient(t, srv.url(), testCreds).Connect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	err = conn.Run(ctx, func(_ context.Context, f Frame) error {
		assert.Equal(t, "ob.s", f.Tag)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConnectRejectedSignature(t *testing.T) {
	srv := newWSServer(t, func(*websocket.Conn) {})
	defer srv.Close()

	wrong := testCreds
	wrong.Secret = "wrong"

	_, err := newTestClient(t, srv.url(), wrong).Connect(context.Background())

	var apiErr *nicehash.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, "Unauthorized", apiErr.Reason)
	assert.JSONEq(t, `{"error_id":"auth"}`, string(apiErr.Body))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := newTestClient(t, "", testCreds).Connect(context.Background())

	var cfgErr *nicehash.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
