package postgres

import (
	"context"
	"errors"
	"fmt"

	"p2p-wallet/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories react to.
const (
	codeUniqueViolation    = "23505"
	codeCheckViolation     = "23514"
	codeQueryCanceled      = "57014"
	codeLockNotAvailable   = "55P03"
	codeAdminShutdown      = "57P01"
	codeCannotConnectNow   = "57P03"
	balanceCheckConstraint = "users_wallet_balance_check"
)

// classify wraps err with op and, where it recognises the failure, one of
// the ports sentinel errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ports.ErrDuplicate, err)
		case codeCheckViolation:
			if pgErr.ConstraintName == balanceCheckConstraint {
				return fmt.Errorf("%s: %w: %w", op, ports.ErrInsufficientBalance, err)
			}
		case codeQueryCanceled, codeLockNotAvailable, codeAdminShutdown, codeCannotConnectNow:
			return fmt.Errorf("%s: %w: %w", op, ports.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ports.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
