package service

import (
	"context"
	"fmt"
	"strings"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// queryService implements ports.QueryService.
type queryService struct {
	txRepo ports.TransactionRepository
	log    zerolog.Logger
}

// NewQueryService creates a new transaction query service.
func NewQueryService(txRepo ports.TransactionRepository, log zerolog.Logger) ports.QueryService {
	return &queryService{txRepo: txRepo, log: log}
}

// ListTransactions returns every transaction the viewer is party to, newest
// first, each classified from the viewer's point of view.
func (s *queryService) ListTransactions(ctx context.Context, viewerID uuid.UUID, filter ports.TransactionFilter) ([]domain.TransactionView, error) {
	params := ports.TransactionListParams{UserID: viewerID}
	var fields []apperror.FieldError

	if strings.TrimSpace(filter.Type) != "" {
		typ, err := domain.ParseTransactionType(filter.Type)
		if err != nil {
			fields = append(fields, apperror.FieldError{Path: "type", Message: "Type must be SEND or REQUEST"})
		} else {
			params.Type = &typ
		}
	}
	if strings.TrimSpace(filter.Status) != "" {
		status, err := domain.ParseTransactionStatus(filter.Status)
		if err != nil {
			fields = append(fields, apperror.FieldError{Path: "status", Message: "Status must be PENDING, COMPLETED, REJECTED or FAILED"})
		} else {
			params.Status = &status
		}
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields("Validation failed", fields)
	}

	rows, err := s.txRepo.ListForUser(ctx, params)
	if err != nil {
		return nil, storeError("list transactions", err)
	}

	views := make([]domain.TransactionView, 0, len(rows))
	for _, row := range rows {
		view, err := domain.NewTransactionView(row.Transaction, row.Sender, row.Receiver, viewerID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("transaction %s: %w", row.Transaction.ID, err))
		}
		views = append(views, view)
	}
	return views, nil
}

// GetSummary returns aggregated counts and volumes for the user.
func (s *queryService) GetSummary(ctx context.Context, userID uuid.UUID) (*ports.TransactionSummary, error) {
	stats, err := s.txRepo.GetSummary(ctx, userID)
	if err != nil {
		return nil, storeError("transaction summary", err)
	}
	return stats, nil
}
