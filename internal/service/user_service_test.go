package service

import (
	"context"
	"testing"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserService_GetProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(userRepo)

	user := testUser("1000")
	userRepo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

	got, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(userRepo)

	userRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.GetProfile(context.Background(), uuid.New())
	requireAppError(t, err, "RES_001")
}

func TestUserService_FindUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(userRepo)

	me := uuid.New()
	found := []domain.User{*testUser("0")}
	userRepo.EXPECT().Search(gomock.Any(), ports.UserSearchParams{Term: "ali", ExcludeID: me, Limit: SearchLimit}).Return(found, nil)

	users, err := svc.FindUsers(context.Background(), me, "  ali ")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_FindUsers_BlankTerm(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewUserService(mocks.NewMockUserRepository(ctrl))

	for _, term := range []string{"", "   "} {
		users, err := svc.FindUsers(context.Background(), uuid.New(), term)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	}
}
