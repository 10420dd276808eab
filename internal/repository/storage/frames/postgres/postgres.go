package postgres

import (
	"context"

	"github.com/jackc/pgx"
	"github.com/pkg/errors"

	"nhgate/internal/config"
	"nhgate/internal/repository/storage/frames"
)

const schema = `CREATE TABLE IF NOT EXISTS stream_frame (
	id BIGSERIAL PRIMARY KEY,
	stream TEXT NOT NULL,
	tag TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL
);`

const insertFrame = "INSERT INTO stream_frame (stream, tag, kind, payload, received_at) VALUES ($1, $2, $3, $4, $5);"

type Repository struct {
	Conn *pgx.ConnPool
}

func New(cfg config.DBConnConfig) (*Repository, error) {
	conn, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig: pgx.ConnConfig{
			Host:     cfg.Host,
			Port:     uint16(cfg.Port),
			User:     cfg.Username,
			Password: cfg.Password,
			Database: cfg.Database,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect frames db")
	}
	return &Repository{Conn: conn}, nil
}

// Migrate creates the frame table when it is missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.Conn.ExecEx(ctx, schema, nil); err != nil {
		return errors.Wrap(err, "migrate frames")
	}
	return nil
}

func (r *Repository) Save(ctx context.Context, rec frames.Record) error {
	_, err := r.Conn.ExecEx(ctx, insertFrame, nil, rec.Stream, rec.Tag, rec.Kind, string(rec.Payload), rec.Received)
	if err != nil {
		return errors.Wrap(err, "insert frame")
	}
	return nil
}

func (r *Repository) Close() error {
	r.Conn.Close()
	return nil
}
