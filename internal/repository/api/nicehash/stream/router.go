package stream

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrOutOfOrder marks a frame that arrived before its stream was ready for
// it, such as an update with no preceding snapshot.
var ErrOutOfOrder = errors.New("stream: frame out of order")

type phase int

const (
	idle phase = iota
	subscribed
	live
)

// Router tracks each stream through subscribe, snapshot and updates.
// Ordering is only checked within a stream.
type Router struct {
	mu     sync.Mutex
	phases map[Stream]phase
}

func NewRouter() *Router {
	return &Router{phases: make(map[Stream]phase)}
}

func (r *Router) Subscribed(s Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases[s] = subscribed
}

// Unsubscribed forgets s. Frames still in flight for it are not errors.
func (r *Router) Unsubscribed(s Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.phases, s)
}

// Observe advances the stream of f and reports frames that break the
// subscribe, snapshot, update sequence. Frames without a stream pass.
func (r *Router) Observe(f Frame) error {
	if f.Stream == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, known := r.phases[f.Stream]
	switch f.Kind {
	case KindSnapshot:
		if !known {
			return errors.Wrapf(ErrOutOfOrder, "%s snapshot without subscription", f.Stream)
		}
		r.phases[f.Stream] = live
	case KindUpdate:
		if !known {
			return errors.Wrapf(ErrOutOfOrder, "%s update without subscription", f.Stream)
		}
		if p != live {
			return errors.Wrapf(ErrOutOfOrder, "%s update before snapshot", f.Stream)
		}
	}

	return nil
}

func (r *Router) Live(s Stream) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phases[s] == live
}
