// Package memory is a process-local storage backend implementing the
// repository ports. Writes inside a transaction hold the store-wide write
// lock until Commit or Rollback, so concurrent transfers are serialised
// the same way row locks serialise them in PostgreSQL.
package memory

import (
	"context"
	"errors"
	"sync"

	"p2p-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds all wallet state in memory.
type Store struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
	txns   map[uuid.UUID]*domain.Transaction
	audit  []domain.AuditLog
	seq    int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
		txns:   make(map[uuid.UUID]*domain.Transaction),
	}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Transactions returns the transaction repository backed by this store.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Audit returns the audit repository backed by this store.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Begin implements ports.DBTransactor. The returned transaction owns the
// write lock; callers must not use non-transactional reads before ending it.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memTx{store: s}, nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// txFor checks that tx is a live transaction of this store.
func (s *Store) txFor(tx pgx.Tx) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok || mt.store != s {
		return nil, errForeignTx
	}
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}

// memTx is a pgx.Tx whose writes are undone on Rollback.
type memTx struct {
	store *Store
	undo  []func()
	done  bool
}

func (t *memTx) onRollback(fn func()) { t.undo = append(t.undo, fn) }

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

var errUnsupported = errors.New("memory: operation not supported")

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errUnsupported }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errUnsupported
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errUnsupported
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), errUnsupported
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errUnsupported
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                             { return nil }
