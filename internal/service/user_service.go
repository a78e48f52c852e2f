package service

import (
	"context"
	"strings"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"

	"github.com/google/uuid"
)

// SearchLimit caps the number of users FindUsers returns.
const SearchLimit = 10

type userService struct {
	userRepo ports.UserRepository
}

// NewUserService creates a new user directory service.
func NewUserService(userRepo ports.UserRepository) ports.UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

// FindUsers searches the directory. A blank term matches nobody.
func (s *userService) FindUsers(ctx context.Context, excludeID uuid.UUID, term string) ([]domain.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.User{}, nil
	}

	users, err := s.userRepo.Search(ctx, ports.UserSearchParams{
		Term:      term,
		ExcludeID: excludeID,
		Limit:     SearchLimit,
	})
	if err != nil {
		return nil, storeError("search users", err)
	}
	return users, nil
}
