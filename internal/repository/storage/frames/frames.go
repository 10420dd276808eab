package frames

import (
	"context"
	"time"
)

// Record is one stored stream frame.
type Record struct {
	Stream   string
	Tag      string
	Kind     string
	Payload  []byte
	Received time.Time
}

type Repository interface {
	Save(ctx context.Context, r Record) error
	Close() error
}
