package ports

import (
	"context"
	"errors"
	"time"

	"p2p-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Store-level failures that services translate into API errors.
var (
	// ErrStoreUnavailable wraps timeouts and connection failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInsufficientBalance is returned when a debit would make a balance negative.
	ErrInsufficientBalance = errors.New("balance would become negative")
	// ErrStaleState is returned when a guarded status transition matched no row.
	ErrStaleState = errors.New("record no longer in expected state")
)

// UserRepository defines persistence operations for users.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	// AdjustBalance adds delta (negative for a debit) and returns the new balance.
	AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	Search(ctx context.Context, params UserSearchParams) ([]domain.User, error)
}

// UserSearchParams narrows a directory lookup.
type UserSearchParams struct {
	Term      string
	ExcludeID uuid.UUID
	Limit     int
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// UpdateStatus moves a transaction from one status to another and fails
	// with ErrStaleState if it is no longer in the from status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, at time.Time) error
	ListForUser(ctx context.Context, params TransactionListParams) ([]TransactionRow, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*TransactionSummary, error)
}

// TransactionListParams holds the filter for listing a user's transactions.
type TransactionListParams struct {
	UserID uuid.UUID
	Type   *domain.TransactionType
	Status *domain.TransactionStatus
}

// TransactionRow is a transaction joined with both parties.
type TransactionRow struct {
	Transaction domain.Transaction
	Sender      domain.Party
	Receiver    domain.Party
}

// TransactionSummary holds aggregated statistics for one user.
type TransactionSummary struct {
	Total            int64
	Pending          int64
	Completed        int64
	Rejected         int64
	Failed           int64
	TotalSent        decimal.Decimal // completed outflow
	TotalReceived    decimal.Decimal // completed inflow
	IncomingRequests int64           // pending requests the user must answer
	OutgoingRequests int64           // pending requests the user issued
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
