package app

import (
	"context"

	"nhgate/internal/clock"
	"nhgate/internal/repository/api/nicehash"
	nhstream "nhgate/internal/repository/api/nicehash/stream"
	"nhgate/internal/repository/storage/frames"
	"nhgate/internal/repository/storage/frames/logsink"
	"nhgate/internal/repository/storage/frames/postgres"
	"nhgate/internal/service/stream"
)

func (a *App) frameRepository(ctx context.Context) (frames.Repository, error) {
	if !a.cfg.DBConn.Enabled() {
		a.logger.Warn("no database configured, frames are only logged")
		return logsink.New(a.logger), nil
	}

	repo, err := postgres.New(a.cfg.DBConn)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// Record runs the stream recorder until SIGTERM or SIGINT.
func (a *App) Record(ctx context.Context) error {
	streams, err := stream.ParseStreams(a.cfg.Streams.Names)
	if err != nil {
		return err
	}

	signer, err := nicehash.NewSigner(a.cfg.NiceHash.Credentials(), clock.System{}, nicehash.UUIDSource{})
	if err != nil {
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	repo, err := a.frameRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	client := nhstream.New(a.cfg.NiceHash.StreamURL, signer,
		nhstream.WithLogger(a.logger),
		nhstream.WithMetrics(a.metrics),
	)

	rec := stream.NewRecorder(stream.FromClient(client), repo, stream.Config{
		Streams:    streams,
		Resolution: a.cfg.Streams.Resolution,
	}, a.metrics, a.logger)

	a.logger.Info("recording streams", "streams", a.cfg.Streams.Names)
	return rec.Run(ctx)
}
