package stream

import (
	"time"

	"github.com/tidwall/gjson"
)

// Stream names a logical subscription on the channel.
type Stream string

const (
	Candlesticks Stream = "candlesticks"
	Orders       Stream = "orders"
	MyTrades     Stream = "mytrades"
	OrderBook    Stream = "orderbook"
	Trades       Stream = "trades"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindSnapshot
	KindUpdate
	KindReply
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindUpdate:
		return "update"
	case KindReply:
		return "reply"
	case KindHeartbeat:
		return "heartbeat"
	}
	return "unknown"
}

type tagPair struct {
	snapshot string
	update   string
}

var streamTags = map[Stream]tagPair{
	Candlesticks: {"c.s", "c.u"},
	Orders:       {"o.s", "o.u"},
	MyTrades:     {"mt.s", "mt.u"},
	OrderBook:    {"ob.s", "ob.u"},
	Trades:       {"m.s", "m.u"},
}

type route struct {
	stream Stream
	kind   Kind
}

var tagIndex = func() map[string]route {
	idx := make(map[string]route, len(streamTags)*2)
	for s, p := range streamTags {
		idx[p.snapshot] = route{s, KindSnapshot}
		idx[p.update] = route{s, KindUpdate}
	}
	return idx
}()

var heartbeatTags = map[string]bool{
	"heartbeat": true,
	"ping":      true,
}

// Streams lists every stream the channel supports.
func Streams() []Stream {
	return []Stream{Candlesticks, Orders, MyTrades, OrderBook, Trades}
}

func (s Stream) Valid() bool {
	_, ok := streamTags[s]
	return ok
}

// SnapshotTag is the tag of the first frame after subscribing.
func (s Stream) SnapshotTag() string {
	return streamTags[s].snapshot
}

func (s Stream) UpdateTag() string {
	return streamTags[s].update
}

func (s Stream) subscribeTag() string {
	return "subscribe." + string(s)
}

func (s Stream) unsubscribeTag() string {
	return "unsubscribe." + string(s)
}

// Frame is one inbound message. Raw holds the frame exactly as received.
type Frame struct {
	Tag      string
	Stream   Stream
	Kind     Kind
	ID       string
	Raw      []byte
	Received time.Time
}

// ParseFrame classifies raw by its "m" tag. Frames whose tag is not a stream
// tag but carry a correlation id are replies to order commands. Heartbeats
// arrive either as an "m" tag or as {"type":"heartbeat"}.
func ParseFrame(raw []byte, received time.Time) Frame {
	f := Frame{Raw: raw, Received: received}
	if !gjson.ValidBytes(raw) {
		return f
	}

	res := gjson.GetManyBytes(raw, "m", "i", "type")
	f.Tag = res[0].String()
	f.ID = res[1].String()

	if e, ok := tagIndex[f.Tag]; ok {
		f.Stream = e.stream
		f.Kind = e.kind
		return f
	}

	switch {
	case heartbeatTags[f.Tag], heartbeatTags[res[2].String()]:
		f.Kind = KindHeartbeat
	case f.ID != "":
		f.Kind = KindReply
	}

	return f
}

func (f Frame) Heartbeat() bool {
	return f.Kind == KindHeartbeat
}
