// Package postgres is the PostgreSQL primary store, built on pgx.
package postgres

import (
	"alcyxob/coachtrack/internal/repository"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	role             TEXT NOT NULL,
	join_date        TIMESTAMPTZ NOT NULL,
	password_hash    TEXT NOT NULL,
	password_changed BOOLEAN NOT NULL DEFAULT FALSE,
	stats            JSONB NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS invitations (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Adapter struct {
	pool *pgxpool.Pool
}

var (
	_ repository.ClientStore     = (*clientStore)(nil)
	_ repository.InvitationStore = (*invitationStore)(nil)
	_ repository.CollectionStore = (*Adapter)(nil)
)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Connect opens a pool and verifies the server answers.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func (a *Adapter) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, schema)
	return err
}

// Stores exposes the adapter through the repository.Stores bundle.
func (a *Adapter) Stores() repository.Stores {
	return repository.Stores{
		Clients:     &clientStore{a},
		Invitations: &invitationStore{a},
		Collections: a,
	}
}

func (a *Adapter) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := a.pool.QueryRow(ctx, `SELECT data FROM collections WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (a *Adapter) Save(ctx context.Context, key string, data []byte) error {
	q := `INSERT INTO collections (key, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	_, err := a.pool.Exec(ctx, q, key, string(data))
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
