package logsink

import (
	"context"
	"log/slog"

	"nhgate/internal/repository/storage/frames"
)

// Repository logs frames instead of storing them. Used when no database is
// configured.
type Repository struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{logger: logger}
}

func (r *Repository) Save(ctx context.Context, rec frames.Record) error {
	r.logger.InfoContext(ctx, "stream frame",
		"stream", rec.Stream,
		"tag", rec.Tag,
		"kind", rec.Kind,
		"received", rec.Received,
		"payload", string(rec.Payload),
	)
	return nil
}

func (r *Repository) Close() error {
	return nil
}
