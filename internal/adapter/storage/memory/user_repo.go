package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	s *Store
}

// Create stores a copy of u. Emails are unique ignoring case.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := domain.NormalizeEmail(u.Email)
	if _, exists := r.s.emails[key]; exists {
		return fmt.Errorf("insert user %s: %w", key, ports.ErrDuplicate)
	}
	if _, exists := r.s.users[u.ID]; exists {
		return fmt.Errorf("insert user %s: %w", u.ID, ports.ErrDuplicate)
	}

	cp := *u
	r.s.users[u.ID] = &cp
	r.s.emails[key] = u.ID
	return nil
}

// GetByID returns (nil, nil) when the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.user(id), nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return r.s.user(id), nil
}

// GetByIDForUpdate reads a user inside tx; the store lock is already held.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	if _, err := r.s.txFor(tx); err != nil {
		return nil, err
	}
	return r.s.user(id), nil
}

// AdjustBalance adds delta to the balance, refusing to go below zero.
func (r *UserRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return decimal.Zero, err
	}

	u, ok := r.s.users[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("adjust balance of %s: user not found", id)
	}
	next := u.WalletBalance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("adjust balance of %s: %w", id, ports.ErrInsufficientBalance)
	}

	prevBalance, prevUpdated := u.WalletBalance, u.UpdatedAt
	mt.onRollback(func() {
		u.WalletBalance = prevBalance
		u.UpdatedAt = prevUpdated
	})
	u.WalletBalance = next
	u.UpdatedAt = time.Now().UTC()
	return next, nil
}

// Search matches the term as a case-insensitive substring of first name,
// last name or email.
func (r *UserRepo) Search(ctx context.Context, params ports.UserSearchParams) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := strings.ToLower(params.Term)
	matches := make([]domain.User, 0)
	for _, u := range r.s.users {
		if u.ID == params.ExcludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.FirstName), term) ||
			strings.Contains(strings.ToLower(u.LastName), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			matches = append(matches, *u)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID.String() < b.ID.String()
	})

	if params.Limit > 0 && len(matches) > params.Limit {
		matches = matches[:params.Limit]
	}
	return matches, nil
}

// user returns a copy of the stored user; the caller holds the lock.
func (s *Store) user(id uuid.UUID) *domain.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// party returns the public identity of a stored user; the caller holds the lock.
func (s *Store) party(id uuid.UUID) domain.Party {
	if u, ok := s.users[id]; ok {
		return u.Party()
	}
	return domain.Party{ID: id}
}
