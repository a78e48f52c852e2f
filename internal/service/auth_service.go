package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo        ports.UserRepository
	hashSvc         ports.HashService
	tokenSvc        ports.TokenService
	startingBalance decimal.Decimal
	log             zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl. New users are credited
// startingBalance.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	startingBalance decimal.Decimal,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:        userRepo,
		hashSvc:         hashSvc,
		tokenSvc:        tokenSvc,
		startingBalance: startingBalance,
		log:             log,
	}
}

// Register creates a new user account and signs them in.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(req.Email)

	// Check email uniqueness
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError("check email", err)
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	// Hash password with Argon2id
	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New(),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         email,
		PasswordHash:  passwordHash,
		WalletBalance: s.startingBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrEmailExists()
		}
		return nil, storeError("create user", err)
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")

	return &ports.AuthResult{User: user, Token: token, ExpiresAt: expiry}, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, storeError("find user", err)
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	// Verify password
	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthResult{User: user, Token: token, ExpiresAt: expiry}, nil
}
