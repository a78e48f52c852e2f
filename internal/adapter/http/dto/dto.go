package dto

import (
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/shopspring/decimal"
)

// ---- Request DTOs ----

// RegisterRequest is the body for POST /api/users/register.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=50,no_html" sanitize:"trim"`
	LastName  string `json:"lastName" binding:"required,min=1,max=50,no_html" sanitize:"trim"`
	Email     string `json:"email" binding:"required,email,max=255" sanitize:"trim"`
	Password  string `json:"password" binding:"required,min=6,max=100" sanitize:"-"`
}

// LoginRequest is the body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" sanitize:"trim"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// SendMoneyRequest is the body for POST /api/transactions/send.
type SendMoneyRequest struct {
	ReceiverID  string          `json:"receiverId" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money"`
	Description string          `json:"description" binding:"max=200" sanitize:"trim"`
}

// RequestMoneyRequest is the body for POST /api/transactions/request.
type RequestMoneyRequest struct {
	PayerID     string          `json:"payerId" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money"`
	Description string          `json:"description" binding:"max=200" sanitize:"trim"`
}

// RespondRequest is the body for PUT /api/transactions/:id/respond.
type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=ACCEPT REJECT"`
}

// ListTransactionsQuery holds the optional list filters.
type ListTransactionsQuery struct {
	Type   string `form:"type"`
	Status string `form:"status"`
}

// SearchUsersQuery holds the directory search term.
type SearchUsersQuery struct {
	Search string `form:"search"`
}

// ---- Response DTOs ----

// Money renders a decimal as a JSON number with exactly two decimals.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// Decimal returns the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

// UserResponse is the owner's view of their account.
type UserResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	WalletBalance Money     `json:"walletBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PartyResponse is the public identity of another user.
type PartyResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
}

// ProfileResponse wraps the current user.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// TransactionResponse is a stored transaction.
type TransactionResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	ReceiverID  string    `json:"receiverId"`
	Amount      Money     `json:"amount"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TransferResponse is returned by send, request and respond. SenderBalance
// is present only when money moved.
type TransferResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	SenderBalance *Money              `json:"senderBalance,omitempty"`
}

// DisplayResponse is the viewer-relative presentation of a transaction.
type DisplayResponse struct {
	Kind           string `json:"kind"`
	Sign           string `json:"sign"`
	ViewerIsSender bool   `json:"viewerIsSender"`
	CanRespond     bool   `json:"canRespond"`
}

// TransactionViewResponse is one history entry.
type TransactionViewResponse struct {
	TransactionResponse
	Sender      PartyResponse   `json:"sender"`
	Receiver    PartyResponse   `json:"receiver"`
	Counterpart PartyResponse   `json:"counterpart"`
	Display     DisplayResponse `json:"display"`
}

// TransactionListResponse wraps the history.
type TransactionListResponse struct {
	Transactions []TransactionViewResponse `json:"transactions"`
}

// UserListResponse wraps directory results.
type UserListResponse struct {
	Users []PartyResponse `json:"users"`
}

// SummaryResponse holds aggregated statistics for the current user.
type SummaryResponse struct {
	Total            int64 `json:"total"`
	Pending          int64 `json:"pending"`
	Completed        int64 `json:"completed"`
	Rejected         int64 `json:"rejected"`
	Failed           int64 `json:"failed"`
	TotalSent        Money `json:"totalSent"`
	TotalReceived    Money `json:"totalReceived"`
	IncomingRequests int64 `json:"incomingRequests"`
	OutgoingRequests int64 `json:"outgoingRequests"`
}

// ---- Mappers ----

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		WalletBalance: Money(u.WalletBalance),
		CreatedAt:     u.CreatedAt,
	}
}

func NewPartyResponse(p domain.Party) PartyResponse {
	return PartyResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

func NewAuthResponse(r *ports.AuthResult) AuthResponse {
	return AuthResponse{
		User:      NewUserResponse(r.User),
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.Unix(),
	}
}

func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		SenderID:    t.SenderID.String(),
		ReceiverID:  t.ReceiverID.String(),
		Amount:      Money(t.Amount),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTransferResponse(r *ports.TransferResult) TransferResponse {
	resp := TransferResponse{Transaction: NewTransactionResponse(r.Transaction)}
	if r.PayerBalance != nil {
		bal := Money(*r.PayerBalance)
		resp.SenderBalance = &bal
	}
	return resp
}

func NewTransactionListResponse(views []domain.TransactionView) TransactionListResponse {
	out := make([]TransactionViewResponse, 0, len(views))
	for i := range views {
		v := views[i]
		out = append(out, TransactionViewResponse{
			TransactionResponse: NewTransactionResponse(&v.Transaction),
			Sender:              NewPartyResponse(v.Sender),
			Receiver:            NewPartyResponse(v.Receiver),
			Counterpart:         NewPartyResponse(v.Counterpart()),
			Display: DisplayResponse{
				Kind:           string(v.Display.Kind),
				Sign:           string(v.Display.Sign),
				ViewerIsSender: v.Display.ViewerIsSender,
				CanRespond:     v.Display.CanRespond,
			},
		})
	}
	return TransactionListResponse{Transactions: out}
}

func NewUserListResponse(users []domain.User) UserListResponse {
	out := make([]PartyResponse, 0, len(users))
	for i := range users {
		out = append(out, NewPartyResponse(users[i].Party()))
	}
	return UserListResponse{Users: out}
}

func NewSummaryResponse(s *ports.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		Total:            s.Total,
		Pending:          s.Pending,
		Completed:        s.Completed,
		Rejected:         s.Rejected,
		Failed:           s.Failed,
		TotalSent:        Money(s.TotalSent),
		TotalReceived:    Money(s.TotalReceived),
		IncomingRequests: s.IncomingRequests,
		OutgoingRequests: s.OutgoingRequests,
	}
}
