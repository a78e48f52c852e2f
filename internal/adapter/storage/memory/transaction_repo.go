package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	s *Store
}

// Create stores t inside tx and assigns its sequence number.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	if _, exists := r.s.txns[t.ID]; exists {
		return fmt.Errorf("insert transaction %s: %w", t.ID, ports.ErrDuplicate)
	}

	r.s.seq++
	t.Seq = r.s.seq
	cp := *t
	r.s.txns[t.ID] = &cp
	mt.onRollback(func() { delete(r.s.txns, t.ID) })
	return nil
}

// GetByID returns (nil, nil) when the transaction does not exist.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.transaction(id), nil
}

// GetByIDForUpdate reads a transaction inside tx.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	if _, err := r.s.txFor(tx); err != nil {
		return nil, err
	}
	return r.s.transaction(id), nil
}

// UpdateStatus moves the transaction from one status to another.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, at time.Time) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}

	t, ok := r.s.txns[id]
	if !ok || t.Status != from {
		return fmt.Errorf("transaction %s not %s: %w", id, from, ports.ErrStaleState)
	}

	prevStatus, prevUpdated := t.Status, t.UpdatedAt
	mt.onRollback(func() {
		t.Status = prevStatus
		t.UpdatedAt = prevUpdated
	})
	t.Status = to
	t.UpdatedAt = at
	return nil
}

// ListForUser returns the user's transactions, newest first.
func (r *TransactionRepo) ListForUser(ctx context.Context, params ports.TransactionListParams) ([]ports.TransactionRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := []ports.TransactionRow{}
	for _, t := range r.s.txns {
		if !t.Involves(params.UserID) {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		rows = append(rows, ports.TransactionRow{
			Transaction: *t,
			Sender:      r.s.party(t.SenderID),
			Receiver:    r.s.party(t.ReceiverID),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Transaction, rows[j].Transaction
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq > b.Seq
	})
	return rows, nil
}

// GetSummary aggregates the user's transactions.
func (r *TransactionRepo) GetSummary(ctx context.Context, userID uuid.UUID) (*ports.TransactionSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &ports.TransactionSummary{TotalSent: decimal.Zero, TotalReceived: decimal.Zero}
	for _, t := range r.s.txns {
		if !t.Involves(userID) {
			continue
		}
		stats.Total++
		switch t.Status {
		case domain.TransactionStatusPending:
			stats.Pending++
			if t.Type == domain.TransactionTypeRequest {
				if t.SenderID == userID {
					stats.IncomingRequests++
				} else {
					stats.OutgoingRequests++
				}
			}
		case domain.TransactionStatusCompleted:
			stats.Completed++
			if t.SenderID == userID {
				stats.TotalSent = stats.TotalSent.Add(t.Amount)
			} else {
				stats.TotalReceived = stats.TotalReceived.Add(t.Amount)
			}
		case domain.TransactionStatusRejected:
			stats.Rejected++
		case domain.TransactionStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func (s *Store) transaction(id uuid.UUID) *domain.Transaction {
	t, ok := s.txns[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}
