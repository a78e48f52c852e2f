package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool Pool
	opts pgx.TxOptions
}

// NewTransactor creates a Transactor running read-committed transactions;
// balance rows are serialised with SELECT ... FOR UPDATE.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, t.opts)
	if err != nil {
		return nil, classify("begin transaction", err)
	}
	return tx, nil
}
