package handler

import (
	"p2p-wallet/internal/adapter/http/dto"
	"p2p-wallet/internal/adapter/http/middleware"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"
	"p2p-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler serves the caller's profile and the user directory.
type UserHandler struct {
	userSvc ports.UserService
}

func NewUserHandler(userSvc ports.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Profile handles GET /api/users/profile.
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User profile retrieved successfully", dto.ProfileResponse{User: dto.NewUserResponse(user)})
}

// Search handles GET /api/transactions/users?search=.
func (h *UserHandler) Search(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.SearchUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	users, err := h.userSvc.FindUsers(c.Request.Context(), userID, q.Search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Users retrieved successfully", dto.NewUserListResponse(users))
}

// currentUser reads the id set by JWTAuth and answers 401 when it is absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}
