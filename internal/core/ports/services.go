package ports

import (
	"context"
	"time"

	"p2p-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// --- Service Ports (Business Logic) ---

// TransferService moves money between users.
type TransferService interface {
	SendMoney(ctx context.Context, req SendMoneyRequest) (*TransferResult, error)
	RequestMoney(ctx context.Context, req RequestMoneyRequest) (*TransferResult, error)
	RespondToRequest(ctx context.Context, req RespondRequest) (*TransferResult, error)
}

// SendMoneyRequest holds validated input for a direct transfer.
type SendMoneyRequest struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// RequestMoneyRequest holds validated input for asking another user to pay.
type RequestMoneyRequest struct {
	RequesterID uuid.UUID
	PayerID     uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// RespondRequest is the payer's answer to a pending request.
type RespondRequest struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
	Action        string
}

// TransferResult carries the affected transaction and, when money moved,
// the payer's balance after commit.
type TransferResult struct {
	Transaction  *domain.Transaction
	PayerBalance *decimal.Decimal
}

// QueryService reads transaction history.
type QueryService interface {
	ListTransactions(ctx context.Context, viewerID uuid.UUID, filter TransactionFilter) ([]domain.TransactionView, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*TransactionSummary, error)
}

// TransactionFilter is the raw, case-insensitive list filter.
type TransactionFilter struct {
	Type   string
	Status string
}

// UserService reads user profiles and the directory.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUsers(ctx context.Context, excludeID uuid.UUID, term string) ([]domain.User, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthResult is returned by both register and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuditService records audit entries without blocking the request.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
