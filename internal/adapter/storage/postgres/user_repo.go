package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, first_name, last_name, email, password_hash, wallet_balance::text, created_at, updated_at`

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user. A clash on the email index yields ports.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, first_name, last_name, email, password_hash, wallet_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
		u.WalletBalance.StringFixed(domain.AmountScale), u.CreatedAt, u.UpdatedAt,
	)
	return classify("insert user", err)
}

// GetByID fetches a user by UUID (without locking).
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id), "get user by id")
}

// GetByEmail fetches a user by email, ignoring case.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email), "get user by email")
}

// GetByIDForUpdate fetches a user and locks the row until tx ends.
// This MUST be called within a transaction.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRow(ctx, query, id), "get user for update")
}

// AdjustBalance applies delta to a locked user row. The update refuses to
// take the balance below zero, reported as ports.ErrInsufficientBalance.
func (r *UserRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE users SET wallet_balance = wallet_balance + $1::numeric, updated_at = NOW()
		WHERE id = $2 AND wallet_balance + $1::numeric >= 0
		RETURNING wallet_balance::text`

	var raw string
	err := tx.QueryRow(ctx, query, delta.String(), id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("adjust balance of %s: %w", id, ports.ErrInsufficientBalance)
		}
		return decimal.Zero, classify("adjust balance", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}
	return balance, nil
}

// Search returns users whose first name, last name or email contains the
// term, case-insensitively, excluding one user.
func (r *UserRepo) Search(ctx context.Context, params ports.UserSearchParams) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE id <> $1
		  AND (first_name ILIKE $2 ESCAPE '\' OR last_name ILIKE $2 ESCAPE '\' OR email ILIKE $2 ESCAPE '\')
		ORDER BY first_name, last_name, id
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, params.ExcludeID, "%"+escapeLike(params.Term)+"%", params.Limit)
	if err != nil {
		return nil, classify("search users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, params.Limit)
	for rows.Next() {
		u, err := scanUser(rows, "scan user row")
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate user rows", err)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanUser scans one row; pgx.ErrNoRows maps to (nil, nil).
func scanUser(row pgx.Row, op string) (*domain.User, error) {
	u := &domain.User{}
	var balance string
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&balance, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}

	u.WalletBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("%s: parse balance: %w", op, err)
	}
	return u, nil
}
