package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(senderID, receiverID uuid.UUID) *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      decimal.RequireFromString("200.00"),
		Type:        domain.TransactionTypeSend,
		Status:      domain.TransactionStatusCompleted,
		Description: "lunch",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func txColumns() []string {
	return []string{"id", "sender_id", "receiver_id", "amount", "type", "status",
		"description", "created_at", "updated_at", "seq"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumns()).AddRow(
		t.ID, t.SenderID, t.ReceiverID, t.Amount.StringFixed(2), t.Type, t.Status,
		t.Description, t.CreatedAt, t.UpdatedAt, t.Seq,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transactions .+ RETURNING seq").
		WithArgs(
			txn.ID, txn.SenderID, txn.ReceiverID, "200.00",
			txn.Type, txn.Status, txn.Description, txn.CreatedAt, txn.UpdatedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(txRow(txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.Equal(t, domain.TransactionTypeSend, result.Type)
	assert.True(t, txn.Amount.Equal(result.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestTransactionRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())
	txn.Type = domain.TransactionTypeRequest
	txn.Status = domain.TransactionStatusPending

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id .+ FOR UPDATE").
		WithArgs(txn.ID).
		WillReturnRows(txRow(txn))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), dbTx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsPendingRequest())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusCompleted, at, id, domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), dbTx, id, domain.TransactionStatusPending, domain.TransactionStatusCompleted, at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_Stale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusRejected, at, id, domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), dbTx, id, domain.TransactionStatusPending, domain.TransactionStatusRejected, at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrStaleState))
}

func TestTransactionRepo_ListForUser_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	viewer := uuid.New()
	other := uuid.New()
	txn := newTestTransaction(viewer, other)
	txn.Seq = 7

	typ := domain.TransactionTypeSend
	status := domain.TransactionStatusCompleted

	cols := append(txColumns(), "s_first", "s_last", "s_email", "r_first", "r_last", "r_email")
	mock.ExpectQuery(`SELECT .+ FROM transactions t .+ t.type = \$2 AND t.status = \$3 ORDER BY t.created_at DESC, t.seq DESC`).
		WithArgs(viewer, typ, status).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			txn.ID, txn.SenderID, txn.ReceiverID, "200.00", txn.Type, txn.Status,
			txn.Description, txn.CreatedAt, txn.UpdatedAt, txn.Seq,
			"Ada", "Lovelace", "ada@example.com",
			"Alan", "Turing", "alan@example.com",
		))

	rows, err := repo.ListForUser(context.Background(), ports.TransactionListParams{
		UserID: viewer,
		Type:   &typ,
		Status: &status,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, viewer, rows[0].Sender.ID)
	assert.Equal(t, other, rows[0].Receiver.ID)
	assert.Equal(t, "Alan", rows[0].Receiver.FirstName)
	assert.Equal(t, int64(7), rows[0].Transaction.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListForUser_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	viewer := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM transactions t .+ WHERE \(t.sender_id = \$1 OR t.receiver_id = \$1\)`).
		WithArgs(viewer).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	rows, err := repo.ListForUser(context.Background(), ports.TransactionListParams{UserID: viewer})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestTransactionRepo_GetSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FILTER .+ FROM transactions WHERE sender_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"total", "pending", "completed", "rejected", "failed", "sent", "received", "incoming", "outgoing",
		}).AddRow(int64(5), int64(1), int64(3), int64(1), int64(0), "250.00", "50.00", int64(1), int64(0)))

	stats, err := repo.GetSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, "250.00", stats.TotalSent.StringFixed(2))
	assert.Equal(t, "50.00", stats.TotalReceived.StringFixed(2))
	assert.Equal(t, int64(1), stats.IncomingRequests)
	assert.NoError(t, mock.ExpectationsWereMet())
}
