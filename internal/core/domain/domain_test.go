package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"completed", TransactionStatusCompleted, true},
		{"rejected", TransactionStatusRejected, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestTransaction_IsPendingRequest(t *testing.T) {
	assert.True(t, (&Transaction{Type: TransactionTypeRequest, Status: TransactionStatusPending}).IsPendingRequest())
	assert.False(t, (&Transaction{Type: TransactionTypeRequest, Status: TransactionStatusCompleted}).IsPendingRequest())
	assert.False(t, (&Transaction{Type: TransactionTypeSend, Status: TransactionStatusPending}).IsPendingRequest())
}

func TestTransaction_Involves(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	tx := &Transaction{SenderID: a, ReceiverID: b}
	assert.True(t, tx.Involves(a))
	assert.True(t, tx.Involves(b))
	assert.False(t, tx.Involves(uuid.New()))
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   error
	}{
		{"200", nil},
		{"0.01", nil},
		{"12.50", nil},
		{"0", ErrAmountNotPositive},
		{"-5", ErrAmountNotPositive},
		{"0.001", ErrAmountTooSmall},
		{"1.005", ErrAmountPrecision},
		{"9999999999999999.99", nil},
		{"10000000000000000", ErrAmountTooLarge},
		{"1e17", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestUser_CanAfford(t *testing.T) {
	u := &User{WalletBalance: decimal.NewFromInt(10)}
	assert.True(t, u.CanAfford(decimal.NewFromInt(10)))
	assert.False(t, u.CanAfford(decimal.RequireFromString("10.01")))
}

func TestParseEnums(t *testing.T) {
	typ, err := ParseTransactionType("send")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeSend, typ)

	_, err = ParseTransactionType("TOPUP")
	assert.Error(t, err)

	status, err := ParseTransactionStatus(" Pending ")
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusPending, status)

	status, err = ParseTransactionStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusFailed, status)

	_, err = ParseTransactionStatus("SUCCESS")
	assert.Error(t, err)

	action, err := ParseRespondAction("reject")
	require.NoError(t, err)
	assert.Equal(t, RespondActionReject, action)

	_, err = ParseRespondAction("MAYBE")
	assert.Error(t, err)
}

func TestClassifyDisplay(t *testing.T) {
	tests := []struct {
		name           string
		typ            TransactionType
		status         TransactionStatus
		viewerIsSender bool
		kind           DisplayKind
		sign           Sign
		canRespond     bool
	}{
		{"send as payer", TransactionTypeSend, TransactionStatusCompleted, true, DisplaySent, SignDebit, false},
		{"send as payee", TransactionTypeSend, TransactionStatusCompleted, false, DisplayReceived, SignCredit, false},
		{"pending request as payer", TransactionTypeRequest, TransactionStatusPending, true, DisplayRequestReceived, SignNone, true},
		{"pending request as requester", TransactionTypeRequest, TransactionStatusPending, false, DisplayRequestSent, SignNone, false},
		{"paid request as payer", TransactionTypeRequest, TransactionStatusCompleted, true, DisplayRequestPaid, SignDebit, false},
		{"paid request as requester", TransactionTypeRequest, TransactionStatusCompleted, false, DisplayRequestFulfilled, SignCredit, false},
		{"rejected request as payer", TransactionTypeRequest, TransactionStatusRejected, true, DisplayRequestDeclined, SignNone, false},
		{"rejected request as requester", TransactionTypeRequest, TransactionStatusRejected, false, DisplayRequestRejected, SignNone, false},
		{"failed request as payer", TransactionTypeRequest, TransactionStatusFailed, true, DisplayFailedOutgoing, SignNone, false},
		{"failed send as payee", TransactionTypeSend, TransactionStatusFailed, false, DisplayFailedIncoming, SignNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ClassifyDisplay(tt.typ, tt.status, tt.viewerIsSender)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.sign, d.Sign)
			assert.Equal(t, tt.canRespond, d.CanRespond)
			assert.Equal(t, tt.viewerIsSender, d.ViewerIsSender)
		})
	}
}

func TestClassifyDisplay_Impossible(t *testing.T) {
	_, err := ClassifyDisplay(TransactionTypeSend, TransactionStatusPending, true)
	assert.Error(t, err)

	_, err = ClassifyDisplay(TransactionType("TOPUP"), TransactionStatusCompleted, true)
	assert.Error(t, err)

	_, err = ClassifyDisplay(TransactionTypeRequest, TransactionStatus("SUCCESS"), false)
	assert.Error(t, err)
}

func TestTransactionView_Counterpart(t *testing.T) {
	alice := Party{ID: uuid.New(), FirstName: "Alice"}
	bob := Party{ID: uuid.New(), FirstName: "Bob"}
	tx := Transaction{SenderID: alice.ID, ReceiverID: bob.ID, Type: TransactionTypeSend, Status: TransactionStatusCompleted}

	asAlice, err := NewTransactionView(tx, alice, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", asAlice.Counterpart().FirstName)
	assert.Equal(t, DisplaySent, asAlice.Display.Kind)

	asBob, err := NewTransactionView(tx, alice, bob, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", asBob.Counterpart().FirstName)
	assert.Equal(t, DisplayReceived, asBob.Display.Kind)
}
