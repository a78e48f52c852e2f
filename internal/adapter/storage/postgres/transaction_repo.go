package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, sender_id, receiver_id, amount::text, type, status, description, created_at, updated_at, seq`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction and
// records the assigned sequence number on t.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, sender_id, receiver_id, amount, type, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
		RETURNING seq`

	err := tx.QueryRow(ctx, query,
		t.ID, t.SenderID, t.ReceiverID, t.Amount.StringFixed(domain.AmountScale),
		t.Type, t.Status, t.Description, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return classify("insert transaction", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id), "get transaction by id")
}

// GetByIDForUpdate fetches a transaction and locks its row until tx ends.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(tx.QueryRow(ctx, query, id), "get transaction for update")
}

// UpdateStatus performs a guarded status transition within a database transaction.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, at time.Time) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, to, at, id, from)
	if err != nil {
		return classify("update transaction status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not %s: %w", id, from, ports.ErrStaleState)
	}
	return nil
}

// ListForUser returns every transaction the user is a party to, newest first,
// joined with both parties' public identity.
func (r *TransactionRepo) ListForUser(ctx context.Context, params ports.TransactionListParams) ([]ports.TransactionRow, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("(t.sender_id = $%d OR t.receiver_id = $%d)", argIdx, argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *params.Status)
	}

	query := fmt.Sprintf(`SELECT t.id, t.sender_id, t.receiver_id, t.amount::text, t.type, t.status,
		t.description, t.created_at, t.updated_at, t.seq,
		s.first_name, s.last_name, s.email,
		rc.first_name, rc.last_name, rc.email
		FROM transactions t
		JOIN users s ON s.id = t.sender_id
		JOIN users rc ON rc.id = t.receiver_id
		WHERE %s
		ORDER BY t.created_at DESC, t.seq DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	defer rows.Close()

	result := []ports.TransactionRow{}
	for rows.Next() {
		var row ports.TransactionRow
		var amount string
		t := &row.Transaction
		err := rows.Scan(
			&t.ID, &t.SenderID, &t.ReceiverID, &amount, &t.Type, &t.Status,
			&t.Description, &t.CreatedAt, &t.UpdatedAt, &t.Seq,
			&row.Sender.FirstName, &row.Sender.LastName, &row.Sender.Email,
			&row.Receiver.FirstName, &row.Receiver.LastName, &row.Receiver.Email,
		)
		if err != nil {
			return nil, classify("scan transaction row", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		row.Sender.ID = t.SenderID
		row.Receiver.ID = t.ReceiverID
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate transaction rows", err)
	}
	return result, nil
}

// GetSummary aggregates the user's transaction counts and completed volume.
func (r *TransactionRepo) GetSummary(ctx context.Context, userID uuid.UUID) (*ports.TransactionSummary, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
		COUNT(*) FILTER (WHERE status = 'FAILED') AS failed,
		COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED' AND sender_id = $1), 0)::text AS sent,
		COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED' AND receiver_id = $1), 0)::text AS received,
		COUNT(*) FILTER (WHERE type = 'REQUEST' AND status = 'PENDING' AND sender_id = $1) AS incoming,
		COUNT(*) FILTER (WHERE type = 'REQUEST' AND status = 'PENDING' AND receiver_id = $1) AS outgoing
		FROM transactions WHERE sender_id = $1 OR receiver_id = $1`

	stats := &ports.TransactionSummary{}
	var sent, received string
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.Total, &stats.Pending, &stats.Completed, &stats.Rejected, &stats.Failed,
		&sent, &received, &stats.IncomingRequests, &stats.OutgoingRequests,
	)
	if err != nil {
		return nil, classify("get transaction summary", err)
	}
	if stats.TotalSent, err = decimal.NewFromString(sent); err != nil {
		return nil, fmt.Errorf("parse sent total: %w", err)
	}
	if stats.TotalReceived, err = decimal.NewFromString(received); err != nil {
		return nil, fmt.Errorf("parse received total: %w", err)
	}
	return stats, nil
}

// scanTransaction scans one row; pgx.ErrNoRows maps to (nil, nil).
func scanTransaction(row pgx.Row, op string) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var amount string
	err := row.Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &amount, &t.Type, &t.Status,
		&t.Description, &t.CreatedAt, &t.UpdatedAt, &t.Seq,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("%s: parse amount: %w", op, err)
	}
	return t, nil
}
