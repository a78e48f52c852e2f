package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransferServiceImpl implements ports.TransferService with pessimistic
// row locking: every balance change runs inside one store transaction that
// holds both user rows.
type TransferServiceImpl struct {
	userRepo   ports.UserRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		userRepo:   userRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// SendMoney moves amount from the sender to the receiver immediately.
func (s *TransferServiceImpl) SendMoney(ctx context.Context, req ports.SendMoneyRequest) (*ports.TransferResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, invalidAmount(err)
	}
	if req.SenderID == req.ReceiverID {
		return nil, apperror.ErrSelfTransfer()
	}
	description, err := normalizeDescription(req.Description, domain.DefaultSendDescription)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, receiver, err := s.lockPair(ctx, dbTx, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, apperror.ErrNotFound("Receiver")
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("Sender")
	}

	// Business rule: sufficient funds
	if !sender.CanAfford(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	senderBalance, err := s.move(ctx, dbTx, sender.ID, receiver.ID, req.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeSend,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeError("create transaction", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeError("commit tx", err)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("sender_id", sender.ID.String()).
		Str("receiver_id", receiver.ID.String()).
		Str("amount", txn.Amount.StringFixed(domain.AmountScale)).
		Msg("money sent")

	return &ports.TransferResult{Transaction: txn, PayerBalance: &senderBalance}, nil
}

// RequestMoney records a pending request for the payer to pay the requester.
// No balance changes until the payer accepts.
func (s *TransferServiceImpl) RequestMoney(ctx context.Context, req ports.RequestMoneyRequest) (*ports.TransferResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, invalidAmount(err)
	}
	if req.RequesterID == req.PayerID {
		return nil, apperror.ErrSelfTransfer()
	}
	description, err := normalizeDescription(req.Description, domain.DefaultRequestDescription)
	if err != nil {
		return nil, err
	}

	payer, err := s.userRepo.GetByID(ctx, req.PayerID)
	if err != nil {
		return nil, storeError("find payer", err)
	}
	if payer == nil {
		return nil, apperror.ErrNotFound("Payer")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    payer.ID,
		ReceiverID:  req.RequesterID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeRequest,
		Status:      domain.TransactionStatusPending,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeError("create request", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeError("commit tx", err)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("requester_id", req.RequesterID.String()).
		Str("payer_id", payer.ID.String()).
		Str("amount", txn.Amount.StringFixed(domain.AmountScale)).
		Msg("money requested")

	return &ports.TransferResult{Transaction: txn}, nil
}

// RespondToRequest lets the payer of a pending request accept (pay) or
// reject it. A failed ACCEPT leaves the request pending.
func (s *TransferServiceImpl) RespondToRequest(ctx context.Context, req ports.RespondRequest) (*ports.TransferResult, error) {
	action, err := domain.ParseRespondAction(req.Action)
	if err != nil {
		return nil, apperror.Validation("Invalid action. Use ACCEPT or REJECT")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, req.TransactionID)
	if err != nil {
		return nil, storeError("lock transaction", err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if txn.SenderID != req.ActorID {
		return nil, apperror.ErrForbidden("You are not authorized to respond to this request")
	}
	if !txn.IsPendingRequest() {
		return nil, apperror.ErrInvalidState("This transaction cannot be responded to")
	}

	now := time.Now().UTC()
	result := &ports.TransferResult{Transaction: txn}

	switch action {
	case domain.RespondActionAccept:
		payer, payee, err := s.lockPair(ctx, dbTx, txn.SenderID, txn.ReceiverID)
		if err != nil {
			return nil, err
		}
		if payer == nil {
			return nil, apperror.ErrNotFound("Payer")
		}
		if payee == nil {
			return nil, apperror.ErrNotFound("Requester")
		}
		if !payer.CanAfford(txn.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}

		payerBalance, err := s.move(ctx, dbTx, payer.ID, payee.ID, txn.Amount)
		if err != nil {
			return nil, err
		}
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusPending, domain.TransactionStatusCompleted, now); err != nil {
			return nil, storeError("complete request", err)
		}
		txn.Status = domain.TransactionStatusCompleted
		result.PayerBalance = &payerBalance

	case domain.RespondActionReject:
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusPending, domain.TransactionStatusRejected, now); err != nil {
			return nil, storeError("reject request", err)
		}
		txn.Status = domain.TransactionStatusRejected
	}
	txn.UpdatedAt = now

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeError("commit tx", err)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("action", string(action)).
		Str("status", string(txn.Status)).
		Msg("request answered")

	return result, nil
}

// lockPair locks users a and b in ascending id order so that concurrent
// transfers between the same two users cannot deadlock. Missing users are
// returned as nil.
func (s *TransferServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, a, b uuid.UUID) (*domain.User, *domain.User, error) {
	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}

	u1, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, nil, storeError("lock user", err)
	}
	u2, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, nil, storeError("lock user", err)
	}

	if first == a {
		return u1, u2, nil
	}
	return u2, u1, nil
}

// move debits payer and credits payee, returning the payer's new balance.
func (s *TransferServiceImpl) move(ctx context.Context, dbTx pgx.Tx, payerID, payeeID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	payerBalance, err := s.userRepo.AdjustBalance(ctx, dbTx, payerID, amount.Neg())
	if err != nil {
		return decimal.Zero, storeError("debit payer", err)
	}
	if _, err := s.userRepo.AdjustBalance(ctx, dbTx, payeeID, amount); err != nil {
		return decimal.Zero, storeError("credit payee", err)
	}
	return payerBalance, nil
}

// normalizeDescription trims the description and applies the default.
func normalizeDescription(description, fallback string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return fallback, nil
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLen {
		return "", apperror.ValidationFields("Validation failed", []apperror.FieldError{
			{Path: "description", Message: fmt.Sprintf("Description must not exceed %d characters", domain.MaxDescriptionLen)},
		})
	}
	return description, nil
}

func invalidAmount(err error) *apperror.AppError {
	switch {
	case errors.Is(err, domain.ErrAmountNotPositive):
		return apperror.ErrInvalidAmount("Amount must be positive")
	case errors.Is(err, domain.ErrAmountTooSmall):
		return apperror.ErrInvalidAmount("Amount must be at least 0.01")
	case errors.Is(err, domain.ErrAmountPrecision):
		return apperror.ErrInvalidAmount("Amount must have at most 2 decimal places")
	case errors.Is(err, domain.ErrAmountTooLarge):
		return apperror.ErrInvalidAmount("Amount exceeds the maximum of " + domain.MaxAmount.StringFixed(domain.AmountScale))
	}
	return apperror.ErrInvalidAmount(err.Error())
}

// storeError translates repository failures into API errors.
func storeError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ports.ErrInsufficientBalance):
		return apperror.ErrInsufficientBalance()
	case errors.Is(err, ports.ErrStaleState):
		return apperror.ErrInvalidState("This transaction cannot be responded to")
	case errors.Is(err, ports.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return apperror.ErrStoreUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}
