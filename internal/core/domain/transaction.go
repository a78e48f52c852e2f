package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes a direct transfer from a money request.
type TransactionType string

const (
	TransactionTypeSend    TransactionType = "SEND"
	TransactionTypeRequest TransactionType = "REQUEST"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
	// TransactionStatusFailed is accepted by storage and filters but never assigned.
	TransactionStatusFailed TransactionStatus = "FAILED"
)

// RespondAction is the payer's answer to a pending request.
type RespondAction string

const (
	RespondActionAccept RespondAction = "ACCEPT"
	RespondActionReject RespondAction = "REJECT"
)

// Default descriptions applied when the caller leaves it empty.
const (
	DefaultSendDescription    = "Money Transfer"
	DefaultRequestDescription = "Money Request"
)

// MaxDescriptionLen bounds Transaction.Description.
const MaxDescriptionLen = 200

// Transaction is a money movement between two users. SenderID is always
// the payer and ReceiverID the payee, for both SEND and REQUEST.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	SenderID    uuid.UUID         `json:"sender_id"`
	ReceiverID  uuid.UUID         `json:"receiver_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Seq         int64             `json:"-"` // insertion order, breaks created_at ties
}

// IsTerminal returns true if no further status transition is allowed.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusRejected ||
		t.Status == TransactionStatusFailed
}

// IsPendingRequest reports whether the transaction still awaits a response.
func (t *Transaction) IsPendingRequest() bool {
	return t.Type == TransactionTypeRequest && t.Status == TransactionStatusPending
}

// Involves reports whether userID is either party.
func (t *Transaction) Involves(userID uuid.UUID) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}

// ParseTransactionType accepts any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch v := TransactionType(strings.ToUpper(strings.TrimSpace(s))); v {
	case TransactionTypeSend, TransactionTypeRequest:
		return v, nil
	}
	return "", fmt.Errorf("invalid transaction type %q", s)
}

// ParseTransactionStatus accepts any letter case.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch v := TransactionStatus(strings.ToUpper(strings.TrimSpace(s))); v {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusRejected, TransactionStatusFailed:
		return v, nil
	}
	return "", fmt.Errorf("invalid transaction status %q", s)
}

// ParseRespondAction accepts any letter case.
func ParseRespondAction(s string) (RespondAction, error) {
	switch v := RespondAction(strings.ToUpper(strings.TrimSpace(s))); v {
	case RespondActionAccept, RespondActionReject:
		return v, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// TransactionView is a transaction as seen by one of its parties.
type TransactionView struct {
	Transaction
	Sender   Party   `json:"sender"`
	Receiver Party   `json:"receiver"`
	Display  Display `json:"display"`
}

// NewTransactionView joins a transaction with both parties for viewerID.
func NewTransactionView(t Transaction, sender, receiver Party, viewerID uuid.UUID) (TransactionView, error) {
	d, err := ClassifyDisplay(t.Type, t.Status, t.SenderID == viewerID)
	if err != nil {
		return TransactionView{}, err
	}
	return TransactionView{Transaction: t, Sender: sender, Receiver: receiver, Display: d}, nil
}

// Counterpart returns the party that is not the viewer.
func (v TransactionView) Counterpart() Party {
	if v.Display.ViewerIsSender {
		return v.Receiver
	}
	return v.Sender
}
