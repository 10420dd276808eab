package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"nhgate/internal/metrics"
	"nhgate/internal/repository/api/nicehash"
	nhstream "nhgate/internal/repository/api/nicehash/stream"
	"nhgate/internal/repository/storage/frames"
)

// Session is one open streaming channel.
type Session interface {
	Frames() <-chan nhstream.Frame
	Err() error
	Close() error
	Subscribe(s nhstream.Stream) error
	SubscribeCandlesticks(resolution int) error
}

type Dialer interface {
	Connect(ctx context.Context) (Session, error)
}

type DialerFunc func(ctx context.Context) (Session, error)

func (f DialerFunc) Connect(ctx context.Context) (Session, error) {
	return f(ctx)
}

// FromClient adapts a streaming client to a Dialer.
func FromClient(c *nhstream.Client) Dialer {
	return DialerFunc(func(ctx context.Context) (Session, error) {
		conn, err := c.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

var errSessionEnded = errors.New("stream session ended")

// Recorder keeps a channel open, subscribed to a fixed set of streams, and
// stores every frame it receives. Dropped channels are reopened with
// exponential backoff.
type Recorder struct {
	dial       Dialer
	repo       frames.Repository
	streams    []nhstream.Stream
	resolution int
	backoff    *backoff.Backoff
	metrics    *metrics.Collector
	logger     *slog.Logger
}

type Config struct {
	Streams    []nhstream.Stream
	Resolution int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewRecorder(dial Dialer, repo frames.Repository, cfg Config, m *metrics.Collector, logger *slog.Logger) *Recorder {
	if cfg.MinBackoff == 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		dial:       dial,
		repo:       repo,
		streams:    cfg.Streams,
		resolution: cfg.Resolution,
		backoff: &backoff.Backoff{
			Min:    cfg.MinBackoff,
			Max:    cfg.MaxBackoff,
			Factor: 2,
			Jitter: true,
		},
		metrics: m,
		logger:  logger,
	}
}

// Run records until ctx is done or the platform rejects the credentials.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		err := r.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if fatal(err) {
			return err
		}

		wait := r.backoff.Duration()
		r.metrics.RecordReconnect()
		r.logger.WarnContext(ctx, "stream dropped, reconnecting", "error", err, "wait", wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func fatal(err error) bool {
	var cfgErr *nicehash.ConfigError
	if errors.As(err, &cfgErr) {
		return true
	}
	var apiErr *nicehash.APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

func (r *Recorder) session(ctx context.Context) error {
	s, err := r.dial.Connect(ctx)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer s.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-stop:
		}
	}()

	for _, st := range r.streams {
		if st == nhstream.Candlesticks {
			err = s.SubscribeCandlesticks(r.resolution)
		} else {
			err = s.Subscribe(st)
		}
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", st)
		}
	}
	r.backoff.Reset()

	for f := range s.Frames() {
		rec := frames.Record{
			Stream:   string(f.Stream),
			Tag:      f.Tag,
			Kind:     f.Kind.String(),
			Payload:  f.Raw,
			Received: f.Received,
		}
		if err := r.repo.Save(ctx, rec); err != nil {
			r.logger.ErrorContext(ctx, "store frame", "tag", f.Tag, "error", err)
		}
	}

	if err := s.Err(); err != nil {
		return err
	}
	return errSessionEnded
}

// ParseStreams maps configured names to streams.
func ParseStreams(names []string) ([]nhstream.Stream, error) {
	out := make([]nhstream.Stream, 0, len(names))
	for _, n := range names {
		s := nhstream.Stream(n)
		if !s.Valid() {
			return nil, &nicehash.ConfigError{Field: "streams.names", Reason: "unknown stream " + n}
		}
		out = append(out, s)
	}
	return out, nil
}
