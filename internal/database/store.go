package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence surface used by the sync engine and the API.
// ExecTx runs fn inside a single transaction; fn's error rolls everything back.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// PgStore is the Postgres-backed Store.
type PgStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		Queries: New(pool),
		pool:    pool,
	}
}

func (s *PgStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op once committed

	if err := fn(s.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ Store = (*PgStore)(nil)
